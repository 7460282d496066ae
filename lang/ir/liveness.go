package ir

import "github.com/bits-and-blooms/bitset"

// LiveValues returns the set of Value IDs used as an operand by at least
// one statement across code's blocks. The optimizer (lang/optimize's
// RemoveRedundantBranches) consults this after a structural simplification
// pass to tell a still-referenced assignment apart from dead code: a
// removed statement's Result must never still appear live. This is the
// "live-register bitset" SPEC_FULL wires bits-and-blooms/bitset to: a dense
// value-ID space is exactly the kind of fixed-universe set a bitset suits,
// unlike the pointer-keyed maps BasicBlock.Defined/Consts use elsewhere.
func LiveValues(code *CodeBlock) *bitset.BitSet {
	bs := bitset.New(0)
	mark := func(v Value) {
		if v.IsValid() {
			bs.Set(uint(v))
		}
	}

	for _, blk := range code.Blocks {
		for _, s := range blk.Stmts {
			switch st := s.(type) {
			case *StoreSymbol:
				mark(st.Value)
			case *Binary:
				mark(st.Left)
				mark(st.Right)
			case *Unary:
				mark(st.Operand)
			case *Test:
				mark(st.Left)
				mark(st.Right)
			case *GetMember:
				mark(st.Target)
			case *GetSubscript:
				mark(st.Target)
				mark(st.Index)
			case *SetMember:
				mark(st.Target)
				mark(st.Value)
			case *SetSubscript:
				mark(st.Target)
				mark(st.Index)
				mark(st.Value)
			case *BrCond:
				mark(st.Cond)
			case *JumpTable:
				mark(st.Subject)
				for _, c := range st.Cases {
					mark(c.Value)
				}
			case *Call:
				mark(st.Target)
				for _, a := range st.Args {
					mark(a)
				}
			case *Invoke:
				mark(st.Target)
				for _, a := range st.Args {
					mark(a)
				}
			case *Raise:
				mark(st.Value)
			case *Return:
				mark(st.Value)
			case *Assert:
				mark(st.Cond)
				mark(st.Msg)
			case *Select:
				for _, in := range st.Incoming {
					mark(in.Value)
				}
			case *MakeList:
				for _, v := range st.Items {
					mark(v)
				}
			case *MakeMap:
				for _, v := range st.Keys {
					mark(v)
				}
				for _, v := range st.Values {
					mark(v)
				}
			case *MakeClosure:
				for _, v := range st.Captures {
					mark(v)
				}
			case *Export:
				mark(st.Value)
			}
		}
	}
	return bs
}

// IsPure reports whether s can be dropped outright when its Result is
// dead: it neither has observable side effects nor can raise in a way a
// caller depends on for control flow.
func IsPure(s Stmt) bool {
	switch s.(type) {
	case *LoadConst, *LoadSymbol, *Binary, *Unary, *Test, *Defined,
		*GetMember, *GetSubscript, *Select, *MakeList, *MakeMap, *MakeClosure:
		return true
	default:
		return false
	}
}

// Result returns s's assigned Value and true if s is a value-producing
// statement, matching the original's IRAssignStatement subset.
func Result(s Stmt) (Value, bool) {
	switch st := s.(type) {
	case *LoadConst:
		return st.Result, true
	case *LoadSymbol:
		return st.Result, true
	case *Binary:
		return st.Result, true
	case *Unary:
		return st.Result, true
	case *Test:
		return st.Result, true
	case *Defined:
		return st.Result, true
	case *GetMember:
		return st.Result, true
	case *GetSubscript:
		return st.Result, true
	case *Call:
		return st.Result, true
	case *Invoke:
		return st.Result, true
	case *Select:
		return st.Result, true
	case *MakeList:
		return st.Result, true
	case *MakeMap:
		return st.Result, true
	case *MakeClosure:
		return st.Result, true
	case *Import:
		return st.Result, true
	default:
		return Invalid, false
	}
}
