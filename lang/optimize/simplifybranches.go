package optimize

import "github.com/klang/buildscript/lang/ir"

// SimplifyBranches folds a BrCond with a statically-known condition (or
// with identical True/False targets) into an unconditional Br, dropping
// the now-dead edge, and removes a Select whose incoming values are all
// identical (or which has only one incoming edge), redirecting its uses to
// that value directly. The original's SimplifyBranches.cpp is a TODO
// stub; written fresh from spec.md §4.6.
func SimplifyBranches(code *ir.CodeBlock) {
	constOf := collectConstants(code)

	for _, blk := range code.Blocks {
		kept := make([]ir.Stmt, 0, len(blk.Stmts))
		for _, s := range blk.Stmts {
			switch st := s.(type) {
			case *ir.BrCond:
				kept = append(kept, simplifyBrCond(blk, constOf, st))

			case *ir.Select:
				if v, ok := uniformIncoming(st.Incoming); ok {
					ir.ReplaceValue(blk, st.Result, v)
					continue
				}
				kept = append(kept, s)

			default:
				kept = append(kept, s)
			}
		}
		blk.Stmts = kept
	}
}

func simplifyBrCond(blk *ir.BasicBlock, constOf map[ir.Value]*ir.LoadConst, st *ir.BrCond) ir.Stmt {
	if st.True == st.False {
		return ir.NewBr(st.Pos(), st.True)
	}

	switch foldCondition(constOf, st.Cond) {
	case True:
		blk.RemoveSuccessor(st.False)
		return ir.NewBr(st.Pos(), st.True)
	case False:
		blk.RemoveSuccessor(st.True)
		return ir.NewBr(st.Pos(), st.False)
	default:
		return st
	}
}

func uniformIncoming(incoming []ir.SelectIncoming) (ir.Value, bool) {
	if len(incoming) == 0 {
		return ir.Invalid, false
	}
	first := incoming[0].Value
	for _, in := range incoming[1:] {
		if in.Value != first {
			return ir.Invalid, false
		}
	}
	return first, true
}
