package ir

// ReplaceValue rewrites every occurrence of from into to across every
// statement of blk, the Go equivalent of the original's IRValueReplacer
// (original_source/Header/.../IRValueReplacer.h), using an exhaustive type
// switch over the closed Stmt set instead of a double-dispatch visitor
// (spec.md §9). Used by the optimizer after folding or eliminating a value
// to retarget its remaining uses.
func ReplaceValue(blk *BasicBlock, from, to Value) {
	sub := func(v Value) Value {
		if v == from {
			return to
		}
		return v
	}

	for _, s := range blk.Stmts {
		switch st := s.(type) {
		case *LoadConst, *DeclareSymbol:
			// no Value operands to replace
		case *LoadSymbol:
			// Result is a definition site, never replaced
		case *StoreSymbol:
			st.Value = sub(st.Value)
		case *Binary:
			st.Left, st.Right = sub(st.Left), sub(st.Right)
		case *Unary:
			st.Operand = sub(st.Operand)
		case *Test:
			st.Left, st.Right = sub(st.Left), sub(st.Right)
		case *Defined:
			// no Value operand
		case *GetMember:
			st.Target = sub(st.Target)
		case *GetSubscript:
			st.Target, st.Index = sub(st.Target), sub(st.Index)
		case *SetMember:
			st.Target, st.Value = sub(st.Target), sub(st.Value)
		case *SetSubscript:
			st.Target, st.Index, st.Value = sub(st.Target), sub(st.Index), sub(st.Value)
		case *Br:
			// no Value operand
		case *BrCond:
			st.Cond = sub(st.Cond)
		case *JumpTable:
			st.Subject = sub(st.Subject)
			for i := range st.Cases {
				st.Cases[i].Value = sub(st.Cases[i].Value)
			}
		case *Call:
			st.Target = sub(st.Target)
			for i := range st.Args {
				st.Args[i] = sub(st.Args[i])
			}
		case *Invoke:
			st.Target = sub(st.Target)
			for i := range st.Args {
				st.Args[i] = sub(st.Args[i])
			}
		case *Raise:
			st.Value = sub(st.Value)
		case *Return:
			st.Value = sub(st.Value)
		case *Assert:
			st.Cond, st.Msg = sub(st.Cond), sub(st.Msg)
		case *Select:
			for i := range st.Incoming {
				st.Incoming[i].Value = sub(st.Incoming[i].Value)
			}
		case *MakeList:
			for i := range st.Items {
				st.Items[i] = sub(st.Items[i])
			}
		case *MakeMap:
			for i := range st.Keys {
				st.Keys[i] = sub(st.Keys[i])
			}
			for i := range st.Values {
				st.Values[i] = sub(st.Values[i])
			}
		case *MakeClosure:
			for i := range st.Captures {
				st.Captures[i] = sub(st.Captures[i])
			}
		case *Import:
			// no Value operand
		case *Export:
			st.Value = sub(st.Value)
		}
	}
}
