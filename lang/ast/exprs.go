package ast

import (
	"fmt"

	"github.com/klang/buildscript/lang/token"
)

// Unwrap the expression inside the parens. It unwraps multiple ParenExpr
// recursively until it reaches a non-ParenExpr.
func Unwrap(e Expr) Expr {
	if pe, ok := e.(*ParenExpr); ok {
		return Unwrap(pe.Expr)
	}
	return e
}

// IsValidStmt returns true if e is a valid ExprStmt expression. Only
// function calls, possibly prefixed with a "try" or "must" unary operator,
// are valid statements.
func IsValidStmt(e Expr) bool {
	ue := Unwrap(e)
	if unary, ok := ue.(*UnaryOpExpr); ok {
		if unary.Type != token.MUST && unary.Type != token.TRY {
			return false
		}
		ue = Unwrap(unary.Right)
	}
	_, ok := ue.(*CallExpr)
	return ok
}

// IsAssignable returns true if e can be assigned to. For an expression to be
// assignable, it must be an IdentExpr, a DotExpr or an IndexExpr. Moreover,
// the left-hand side of those expressions must also be assignable.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *DotExpr:
		return IsAssignable(Unwrap(e.Left))
	case *IndexExpr:
		return IsAssignable(Unwrap(e.Prefix))
	default:
		return false
	}
}

type (
	// BadExpr represents a bad expression that failed to parse.
	BadExpr struct {
		Start token.Pos
		End   token.Pos
	}

	// BinOpExpr represents a binary expression, e.g. x + y.
	BinOpExpr struct {
		Left  Expr
		Type  token.Token // binary operator token type
		Op    token.Pos
		Right Expr
	}

	// TernaryExpr represents a conditional expression, e.g. x if c else y.
	TernaryExpr struct {
		Then Expr
		If   token.Pos
		Cond Expr
		Else token.Pos
		Alt  Expr
	}

	// CallExpr represents a function, task or method call, e.g. x(y, z).
	CallExpr struct {
		Fn     Expr
		Lparen token.Pos
		Args   []Expr
		Commas []token.Pos // len(Args)-1
		Rparen token.Pos
	}

	// ClosureExpr represents an anonymous function literal,
	// e.g. def(x) { return x }.
	ClosureExpr struct {
		Def  token.Pos
		Sig  *ParameterList
		Body *Block
	}

	// DotExpr represents a selector expression, e.g. x.y.
	DotExpr struct {
		Left  Expr
		Dot   token.Pos
		Right *IdentExpr
	}

	// IdentExpr represents an identifier.
	IdentExpr struct {
		Start   token.Pos
		Lit     string
		Binding any // *resolver.Binding, set by the resolver; indirect to avoid an import cycle
	}

	// IndexExpr represents an index expression, e.g. x[y].
	IndexExpr struct {
		Prefix Expr
		Lbrack token.Pos
		Index  Expr
		Rbrack token.Pos
	}

	// LiteralExpr represents a literal int, float, bool, none or plain
	// (non-interpolated) string.
	LiteralExpr struct {
		Type  token.Token // NONE, TRUE, FALSE, STRING, INT or FLOAT
		Start token.Pos
		Raw   string      // uninterpreted source text
		Value interface{} // = string | int64 | float64 (nil for none/true/false)
	}

	// InterpStringExpr represents a string literal containing one or more
	// "${ expr }" interpolation holes (spec.md §4.2). Parts alternates
	// literal runs (as *LiteralExpr of type STRING) and hole expressions,
	// always starting and ending with a literal run (which may be empty).
	InterpStringExpr struct {
		Start token.Pos
		End   token.Pos
		Parts []Expr // *LiteralExpr or any expression
	}

	// ArrayExpr represents an array literal, e.g. [x, y].
	ArrayExpr struct {
		Lbrack token.Pos
		Items  []Expr
		Commas []token.Pos
		Rbrack token.Pos
	}

	// KeyVal is a single key-value entry of a MapExpr.
	KeyVal struct {
		Key   Expr
		Colon token.Pos
		Value Expr
	}

	// MapExpr represents a map literal, e.g. {x: 1, y: 2}.
	MapExpr struct {
		Lbrace token.Pos
		Items  []*KeyVal
		Commas []token.Pos
		Rbrace token.Pos
	}

	// ParenExpr represents an expression wrapped in parentheses.
	ParenExpr struct {
		Lparen token.Pos
		Expr   Expr
		Rparen token.Pos
	}

	// UnaryOpExpr represents a unary operator expression, e.g. -x, not x,
	// try x or must x.
	UnaryOpExpr struct {
		Type  token.Token
		Op    token.Pos
		Right Expr
	}
)

func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad expr!", nil) }
func (n *BadExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadExpr) Walk(v Visitor)                {}
func (n *BadExpr) expr()                         {}

func (n *BinOpExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Type.GoString(), nil)
}
func (n *BinOpExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinOpExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinOpExpr) expr() {}

func (n *TernaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "ternary", nil) }
func (n *TernaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Then.Span()
	_, end = n.Alt.Span()
	return start, end
}
func (n *TernaryExpr) Walk(v Visitor) {
	Walk(v, n.Then)
	Walk(v, n.Cond)
	Walk(v, n.Alt)
}
func (n *TernaryExpr) expr() {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, e := range n.Args {
		Walk(v, e)
	}
}
func (n *CallExpr) expr() {}

func (n *ClosureExpr) Format(f fmt.State, verb rune) {
	lbl := "closure"
	if n.Sig.DotDotDot.IsValid() {
		lbl += " ..."
	}
	format(f, verb, n, lbl, map[string]int{"params": len(n.Sig.Params)})
}
func (n *ClosureExpr) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.Def, end
}
func (n *ClosureExpr) Walk(v Visitor) {
	Walk(v, n.Sig)
	Walk(v, n.Body)
}
func (n *ClosureExpr) expr() {}

func (n *DotExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr.ident", nil) }
func (n *DotExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *DotExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *DotExpr) expr() {}

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Lit, nil) }
func (n *IdentExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Lit))
}
func (n *IdentExpr) Walk(v Visitor) {}
func (n *IdentExpr) expr()          {}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.Prefix.Span()
	return start, n.Rbrack + token.Pos(len(token.RBRACK.String()))
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Prefix)
	Walk(v, n.Index)
}
func (n *IndexExpr) expr() {}

func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	if n.Value == nil {
		format(f, verb, n, n.Type.String(), nil)
	} else {
		format(f, verb, n, n.Type.String()+" "+n.Raw, nil)
	}
}
func (n *LiteralExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Raw))
}
func (n *LiteralExpr) Walk(v Visitor) {}
func (n *LiteralExpr) expr()          {}

func (n *InterpStringExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "interp string", map[string]int{"parts": len(n.Parts)})
}
func (n *InterpStringExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *InterpStringExpr) Walk(v Visitor) {
	for _, p := range n.Parts {
		Walk(v, p)
	}
}
func (n *InterpStringExpr) expr() {}

func (n *ArrayExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"items": len(n.Items)})
}
func (n *ArrayExpr) Span() (start, end token.Pos) {
	return n.Lbrack, n.Rbrack + token.Pos(len(token.RBRACK.String()))
}
func (n *ArrayExpr) Walk(v Visitor) {
	for _, e := range n.Items {
		Walk(v, e)
	}
}
func (n *ArrayExpr) expr() {}

func (n *MapExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "map", map[string]int{"keyvals": len(n.Items)})
}
func (n *MapExpr) Span() (start, end token.Pos) {
	return n.Lbrace, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *MapExpr) Walk(v Visitor) {
	for _, kv := range n.Items {
		Walk(v, kv.Key)
		Walk(v, kv.Value)
	}
}
func (n *MapExpr) expr() {}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *ParenExpr) Span() (start, end token.Pos) {
	return n.Lparen, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *ParenExpr) Walk(v Visitor) { Walk(v, n.Expr) }
func (n *ParenExpr) expr()          {}

func (n *UnaryOpExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Type.GoString(), nil)
}
func (n *UnaryOpExpr) Span() (start, end token.Pos) {
	_, end = n.Right.Span()
	return n.Op, end
}
func (n *UnaryOpExpr) Walk(v Visitor) { Walk(v, n.Right) }
func (n *UnaryOpExpr) expr()          {}
