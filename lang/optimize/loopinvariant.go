package optimize

import "github.com/klang/buildscript/lang/ir"

// LoopInvariantMove hoists Binary/Unary statements whose operands are all
// defined outside a loop up into the loop header, just before its
// terminator. The header is the target of the loop's back edge, so a moved
// statement still runs once per iteration; no block ahead of the loop
// receives it. Loops
// are detected as contiguous block-index ranges [header, latch] wherever a
// back edge (some block at index latch has a successor at an index
// header <= latch) exists in the builder's own block order — a
// simplification of full dominance-based loop detection, adequate since
// the builder (lang/ir) always emits a for/while body as a contiguous run
// of blocks (spec.md §4.5). The original's LoopInvariantMove.cpp is a TODO
// stub; this is written fresh from spec.md §4.6's description.
func LoopInvariantMove(code *ir.CodeBlock) {
	index := make(map[*ir.BasicBlock]int, len(code.Blocks))
	for i, blk := range code.Blocks {
		index[blk] = i
	}

	for latchIdx, latch := range code.Blocks {
		for succ := range latch.Successors() {
			headerIdx, ok := index[succ]
			if !ok || headerIdx > latchIdx {
				continue
			}
			hoistLoop(code, headerIdx, latchIdx)
		}
	}
}

func hoistLoop(code *ir.CodeBlock, headerIdx, latchIdx int) {
	header := code.Blocks[headerIdx]

	definedInLoop := make(map[ir.Value]bool)
	for i := headerIdx; i <= latchIdx; i++ {
		for _, s := range code.Blocks[i].Stmts {
			if v, ok := ir.Result(s); ok {
				definedInLoop[v] = true
			}
		}
	}

	for i := headerIdx + 1; i <= latchIdx; i++ {
		blk := code.Blocks[i]
		kept := make([]ir.Stmt, 0, len(blk.Stmts))
		for _, s := range blk.Stmts {
			if isLoopInvariant(s, definedInLoop) {
				insertBeforeTerminator(header, s)
				continue
			}
			kept = append(kept, s)
		}
		blk.Stmts = kept
	}
}

// isLoopInvariant covers only the side-effect-free, cheap-to-recompute
// opcodes; statements that read mutable symbol state, call out, or mutate
// memory are never hoisted.
func isLoopInvariant(s ir.Stmt, definedInLoop map[ir.Value]bool) bool {
	switch st := s.(type) {
	case *ir.Binary:
		return !definedInLoop[st.Left] && !definedInLoop[st.Right]
	case *ir.Unary:
		return !definedInLoop[st.Operand]
	default:
		return false
	}
}

func insertBeforeTerminator(blk *ir.BasicBlock, s ir.Stmt) {
	if term := blk.Terminator(); term != nil {
		stmts := blk.Stmts
		blk.Stmts = append(stmts[:len(stmts)-1:len(stmts)-1], s, term)
		return
	}
	blk.Append(s)
}
