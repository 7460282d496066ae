package optimize

import (
	"fmt"

	"github.com/klang/buildscript/lang/ir"
)

// CommonSubexpressionElimination drops a statement that recomputes a value
// already computed earlier in the same block, redirecting the remaining
// statements in the block to reuse the earlier result. Scoped per block
// (no cross-block value numbering), covering only the side-effect-free
// opcodes (LoadConst/Binary/Unary/Test/GetMember/GetSubscript): LoadSymbol, Call and
// Invoke are never deduplicated since a prior load may be stale or a prior
// call may have side effects. The original's
// CommonSubexpressionElimination.cpp is a TODO stub; this is written fresh
// from spec.md §4.6.
func CommonSubexpressionElimination(code *ir.CodeBlock) {
	for _, blk := range code.Blocks {
		seen := make(map[string]ir.Value)
		kept := make([]ir.Stmt, 0, len(blk.Stmts))

		for _, s := range blk.Stmts {
			key, result, pure := cseKey(s)
			if pure {
				if prior, ok := seen[key]; ok {
					ir.ReplaceValue(blk, result, prior)
					continue
				}
				seen[key] = result
			}
			kept = append(kept, s)
		}
		blk.Stmts = kept
	}
}

func cseKey(s ir.Stmt) (key string, result ir.Value, pure bool) {
	switch st := s.(type) {
	case *ir.Binary:
		return fmt.Sprintf("bin:%s:%d:%d", st.Op2, st.Left, st.Right), st.Result, true
	case *ir.Unary:
		return fmt.Sprintf("un:%s:%d", st.Op2, st.Operand), st.Result, true
	case *ir.Test:
		return fmt.Sprintf("test:%s:%d:%d", st.Kind, st.Left, st.Right), st.Result, true
	case *ir.GetMember:
		return fmt.Sprintf("getmember:%d:%s", st.Target, st.Member), st.Result, true
	case *ir.GetSubscript:
		return fmt.Sprintf("getsub:%d:%d", st.Target, st.Index), st.Result, true
	case *ir.LoadConst:
		return fmt.Sprintf("const:%#v", st.Const), st.Result, true
	default:
		return "", ir.Invalid, false
	}
}
