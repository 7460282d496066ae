package optimize

import "github.com/klang/buildscript/lang/ir"

// Trilean is a three-state true/false/unknown result, used for statically
// evaluating a branch condition. Grounded on
// original_source/Header/.../Utils/Trilean.h (spec.md §4 supplemented
// features): the original reaches for a named three-state type here
// instead of a bare (bool, bool ok) pair, and this module follows suit.
type Trilean uint8

const (
	Unknown Trilean = iota
	True
	False
)

func trileanOf(b bool) Trilean {
	if b {
		return True
	}
	return False
}

// isTruthy mirrors the language's own truthiness rule for a compile-time
// constant: none/false/0/0.0/"" are falsy, everything else is truthy.
func isTruthy(v any) bool {
	switch c := v.(type) {
	case nil:
		return false
	case bool:
		return c
	case int64:
		return c != 0
	case float64:
		return c != 0
	case string:
		return c != ""
	default:
		return true
	}
}

// foldCondition statically evaluates a LoadConst-backed condition value.
func foldCondition(constOf map[ir.Value]*ir.LoadConst, v ir.Value) Trilean {
	lc, ok := constOf[v]
	if !ok {
		return Unknown
	}
	return trileanOf(isTruthy(lc.Const))
}

// foldBinary evaluates op(a, b) at compile time when both operands are
// int64 or float64 constants of the same kind; ok is false for anything
// else (string/bool operands, mixed types, or a zero divisor), in which
// case the caller must leave the Binary statement in place.
func foldBinary(op ir.BinOp, a, b any) (result any, ok bool) {
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		return foldBinaryInt(op, ai, bi)
	}
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)
	if aIsFloat && bIsFloat {
		return foldBinaryFloat(op, af, bf)
	}
	return nil, false
}

func foldBinaryInt(op ir.BinOp, a, b int64) (any, bool) {
	switch op {
	case ir.Add:
		return a + b, true
	case ir.Sub:
		return a - b, true
	case ir.Mul:
		return a * b, true
	case ir.Div:
		if b == 0 {
			return nil, false
		}
		return a / b, true
	case ir.Mod:
		if b == 0 {
			return nil, false
		}
		return a % b, true
	case ir.Shr:
		return a >> uint(b), true
	case ir.Shl:
		return a << uint(b), true
	case ir.And:
		return a & b, true
	case ir.Or:
		return a | b, true
	case ir.Xor:
		return a ^ b, true
	default:
		return nil, false
	}
}

func foldBinaryFloat(op ir.BinOp, a, b float64) (any, bool) {
	switch op {
	case ir.Add:
		return a + b, true
	case ir.Sub:
		return a - b, true
	case ir.Mul:
		return a * b, true
	case ir.Div:
		if b == 0 {
			return nil, false
		}
		return a / b, true
	default:
		return nil, false
	}
}

func foldUnary(op ir.UnOp, a any) (any, bool) {
	switch op {
	case ir.Neg:
		switch v := a.(type) {
		case int64:
			return -v, true
		case float64:
			return -v, true
		}
	case ir.Not:
		return !isTruthy(a), true
	}
	return nil, false
}
