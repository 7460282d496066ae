package optimize

import "github.com/klang/buildscript/lang/ir"

// ConstantPropagation folds Binary/Unary/Test statements whose operands are
// both known compile-time constants into a LoadConst, across every block of
// code. Order matches Optimizer::Optimize in
// original_source/Source/Compiler/Optimize/Optimizer.cpp, which runs this
// pass first — its own ConstantPropagation.cpp is an unimplemented TODO
// stub, so this is written fresh from spec.md §4.6's description, not
// translated from anything.
func ConstantPropagation(code *ir.CodeBlock) {
	constOf := collectConstants(code)

	for _, blk := range code.Blocks {
		for i, s := range blk.Stmts {
			switch st := s.(type) {
			case *ir.Binary:
				aC, aOk := constOf[st.Left]
				bC, bOk := constOf[st.Right]
				if !aOk || !bOk {
					continue
				}
				res, ok := foldBinary(st.Op2, aC.Const, bC.Const)
				if !ok {
					continue
				}
				nc := ir.NewLoadConst(st.Pos(), st.Result, res)
				blk.Stmts[i] = nc
				constOf[st.Result] = nc

			case *ir.Unary:
				aC, aOk := constOf[st.Operand]
				if !aOk {
					continue
				}
				res, ok := foldUnary(st.Op2, aC.Const)
				if !ok {
					continue
				}
				nc := ir.NewLoadConst(st.Pos(), st.Result, res)
				blk.Stmts[i] = nc
				constOf[st.Result] = nc

			case *ir.Test:
				aC, aOk := constOf[st.Left]
				bC, bOk := constOf[st.Right]
				if !aOk || !bOk {
					continue
				}
				res, ok := foldTest(st.Kind, aC.Const, bC.Const)
				if !ok {
					continue
				}
				nc := ir.NewLoadConst(st.Pos(), st.Result, res)
				blk.Stmts[i] = nc
				constOf[st.Result] = nc
			}
		}
	}
}

func collectConstants(code *ir.CodeBlock) map[ir.Value]*ir.LoadConst {
	m := make(map[ir.Value]*ir.LoadConst)
	for _, blk := range code.Blocks {
		for _, s := range blk.Stmts {
			if lc, ok := s.(*ir.LoadConst); ok {
				m[lc.Result] = lc
			}
		}
	}
	return m
}

func foldTest(kind ir.TestKind, a, b any) (bool, bool) {
	switch kind {
	case ir.Equal:
		return a == b, true
	case ir.NotEqual:
		return a != b, true
	}

	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		return compareOrdered(kind, float64(ai), float64(bi))
	}
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)
	if aIsFloat && bIsFloat {
		return compareOrdered(kind, af, bf)
	}
	return false, false
}

func compareOrdered(kind ir.TestKind, a, b float64) (bool, bool) {
	switch kind {
	case ir.Greater:
		return a > b, true
	case ir.GreaterOrEqual:
		return a >= b, true
	case ir.Less:
		return a < b, true
	case ir.LessOrEqual:
		return a <= b, true
	default:
		return false, false
	}
}
