package ir

import (
	"fmt"
	"io"
)

// Dump writes code's textual IR form to w, per spec.md §6: one line per
// statement, each block preceded by a label header line, opcodes printed
// as their uppercase mnemonic.
func Dump(w io.Writer, code *CodeBlock) error {
	if _, err := fmt.Fprintf(w, "func %s(%d args%s) {\n", code.Name, len(code.Args), varargSuffix(code.HasVarArg)); err != nil {
		return err
	}
	for _, blk := range code.Blocks {
		if _, err := fmt.Fprintf(w, "%s:\n", blk.Label); err != nil {
			return err
		}
		for _, s := range blk.Stmts {
			if _, err := fmt.Fprintf(w, "\t%s\n", formatStmt(s)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func varargSuffix(vararg bool) string {
	if vararg {
		return ", vararg"
	}
	return ""
}

func formatStmt(s Stmt) string {
	switch st := s.(type) {
	case *LoadConst:
		return fmt.Sprintf("%%%d = %s %#v", st.Result, st.Op(), st.Const)
	case *LoadSymbol:
		return fmt.Sprintf("%%%d = %s %v", st.Result, st.Op(), st.Symbol)
	case *StoreSymbol:
		return fmt.Sprintf("%s %v, %%%d", st.Op(), st.Symbol, st.Value)
	case *DeclareSymbol:
		return fmt.Sprintf("%s %v", st.Op(), st.Symbol)
	case *Binary:
		return fmt.Sprintf("%%%d = %s %%%d %s %%%d", st.Result, st.Op(), st.Left, st.Op2, st.Right)
	case *Unary:
		return fmt.Sprintf("%%%d = %s %s %%%d", st.Result, st.Op(), st.Op2, st.Operand)
	case *Test:
		return fmt.Sprintf("%%%d = %s %%%d %s %%%d", st.Result, st.Op(), st.Left, st.Kind, st.Right)
	case *Defined:
		return fmt.Sprintf("%%%d = %s %v", st.Result, st.Op(), st.Symbol)
	case *GetMember:
		return fmt.Sprintf("%%%d = %s %%%d.%s", st.Result, st.Op(), st.Target, st.Member)
	case *GetSubscript:
		return fmt.Sprintf("%%%d = %s %%%d[%%%d]", st.Result, st.Op(), st.Target, st.Index)
	case *SetMember:
		return fmt.Sprintf("%s %%%d.%s, %%%d", st.Op(), st.Target, st.Member, st.Value)
	case *SetSubscript:
		return fmt.Sprintf("%s %%%d[%%%d], %%%d", st.Op(), st.Target, st.Index, st.Value)
	case *Br:
		return fmt.Sprintf("%s %s", st.Op(), st.Target.Label)
	case *BrCond:
		return fmt.Sprintf("%s %%%d, %s, %s", st.Op(), st.Cond, st.True.Label, st.False.Label)
	case *JumpTable:
		return fmt.Sprintf("%s %%%d, %d cases, default %s", st.Op(), st.Subject, len(st.Cases), st.Default.Label)
	case *Call:
		return fmt.Sprintf("%%%d = %s %%%d(%d args)", st.Result, st.Op(), st.Target, len(st.Args))
	case *Invoke:
		return fmt.Sprintf("%%%d = %s %%%d.%s(%d args)", st.Result, st.Op(), st.Target, st.Member, len(st.Args))
	case *Raise:
		return fmt.Sprintf("%s %%%d", st.Op(), st.Value)
	case *Return:
		return fmt.Sprintf("%s %%%d", st.Op(), st.Value)
	case *Assert:
		return fmt.Sprintf("%s %%%d, %%%d", st.Op(), st.Cond, st.Msg)
	case *Select:
		return fmt.Sprintf("%%%d = %s %s", st.Result, st.Op(), formatIncoming(st.Incoming))
	case *MakeList:
		return fmt.Sprintf("%%%d = %s %d items", st.Result, st.Op(), len(st.Items))
	case *MakeMap:
		return fmt.Sprintf("%%%d = %s %d entries", st.Result, st.Op(), len(st.Keys))
	case *MakeClosure:
		return fmt.Sprintf("%%%d = %s %s, %d captures", st.Result, st.Op(), st.Code.Name, len(st.Captures))
	case *Import:
		return fmt.Sprintf("%%%d = %s %q", st.Result, st.Op(), st.Path)
	case *Export:
		return fmt.Sprintf("%s %v, %%%d", st.Op(), st.Symbol, st.Value)
	default:
		return "???"
	}
}

func formatIncoming(incoming []SelectIncoming) string {
	s := ""
	for i, in := range incoming {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("[%s: %%%d]", in.Block.Label, in.Value)
	}
	return s
}
