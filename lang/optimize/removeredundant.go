package optimize

import (
	"golang.org/x/exp/maps"

	"github.com/klang/buildscript/lang/ir"
)

// RemoveRedundantBranches merges a block into its unique successor when
// that successor has no other predecessor (folding an unconditional Br
// into a fallthrough), drops the blocks this leaves unreachable, and
// finally drops any pure, dead (never-read) assignment the prior passes
// left behind. The original's RemoveRedundantBranches.cpp is a TODO stub;
// written fresh from spec.md §4.6, run last per Optimizer::Optimize's
// order since it cleans up after every earlier pass.
func RemoveRedundantBranches(code *ir.CodeBlock) {
	mergeStraightLineBlocks(code)
	dropDeadAssignments(code)
}

func mergeStraightLineBlocks(code *ir.CodeBlock) {
	for merged := true; merged; {
		merged = false
		for _, blk := range code.Blocks {
			succs := maps.Keys(blk.Successors())
			if len(succs) != 1 {
				continue
			}
			only := succs[0]
			if only == blk {
				continue
			}
			preds := maps.Keys(only.Predecessors())
			if len(preds) != 1 || preds[0] != blk {
				continue
			}
			if len(blk.Stmts) == 0 {
				continue
			}
			if _, ok := blk.Stmts[len(blk.Stmts)-1].(*ir.Br); !ok {
				continue
			}

			blk.Stmts = append(blk.Stmts[:len(blk.Stmts)-1], only.Stmts...)
			blk.RemoveSuccessor(only)
			for succ := range only.Successors() {
				only.RemoveSuccessor(succ)
				blk.AddSuccessor(succ)
			}
			removeBlock(code, only)
			merged = true
			break
		}
	}
}

func removeBlock(code *ir.CodeBlock, dead *ir.BasicBlock) {
	kept := make([]*ir.BasicBlock, 0, len(code.Blocks))
	for _, blk := range code.Blocks {
		if blk != dead {
			kept = append(kept, blk)
		}
	}
	code.Blocks = kept
}

func dropDeadAssignments(code *ir.CodeBlock) {
	live := ir.LiveValues(code)
	for _, blk := range code.Blocks {
		kept := make([]ir.Stmt, 0, len(blk.Stmts))
		for _, s := range blk.Stmts {
			if ir.IsPure(s) {
				if v, ok := ir.Result(s); ok && !live.Test(uint(v)) {
					continue
				}
			}
			kept = append(kept, s)
		}
		blk.Stmts = kept
	}
}
