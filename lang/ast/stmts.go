package ast

import (
	"fmt"

	"github.com/klang/buildscript/lang/token"
)

type (
	// BadStmt represents a statement that failed to parse; the parser
	// inserts one and resynchronizes at the next statement boundary rather
	// than aborting the whole chunk (spec.md §4.3's error-recovery design).
	BadStmt struct {
		Start token.Pos
		End   token.Pos
	}

	// ExprStmt represents an expression used as a statement. Only call
	// expressions, possibly wrapped in "try"/"must", are valid here.
	ExprStmt struct {
		Expr Expr
	}

	// AssignStmt represents a plain or compound assignment, e.g.
	// x, y = 1, 2 or x += 1.
	AssignStmt struct {
		Left       []Expr // *IdentExpr, *DotExpr or *IndexExpr
		LeftCommas []token.Pos
		AssignTok  token.Pos
		Op         token.Token // EQ or one of the *_EQ compound operators
		Right      []Expr
	}

	// IfStmt represents an if/else-if/else chain. False is nil if there is
	// no else clause; it holds a single nested *IfStmt statement to model
	// "else if" without creating an extra block scope.
	IfStmt struct {
		If    token.Pos
		Cond  Expr
		True  *Block
		False *Block
	}

	// MatchCase is one "case pattern: { ... }" (or "default: { ... }") arm
	// of a MatchStmt.
	MatchCase struct {
		Case      token.Pos // position of "case" or "default"
		IsDefault bool
		Patterns  []Expr
		Body      *Block
	}

	// MatchStmt represents a match statement dispatching on a subject
	// expression across a sequence of cases.
	MatchStmt struct {
		Match   token.Pos
		Subject Expr
		Cases   []*MatchCase
		Rbrace  token.Pos
	}

	// ForStmt represents a "for x, y in expr { ... }" iteration statement.
	// New bindings are always created for the loop variables.
	ForStmt struct {
		For   token.Pos
		Label *Label // nil if unlabeled
		Left  []*IdentExpr
		In    token.Pos
		Right Expr
		Body  *Block
	}

	// WhileStmt represents a conditional loop.
	WhileStmt struct {
		While token.Pos
		Label *Label // nil if unlabeled
		Cond  Expr
		Body  *Block
	}

	// ExceptClause is one "except Pattern as name { ... }" arm of a
	// TryStmt.
	ExceptClause struct {
		Except  token.Pos
		Pattern Expr       // nil to catch anything
		As      *IdentExpr // nil if the exception value is not bound
		Body    *Block
	}

	// TryStmt represents a try/except/finally statement.
	TryStmt struct {
		Try     token.Pos
		Body    *Block
		Excepts []*ExceptClause
		Finally *Block // nil if no finally clause
	}

	// WithStmt represents a "with expr as name { ... }" resource-scoped
	// statement.
	WithStmt struct {
		With  token.Pos
		Right Expr
		As    *IdentExpr // nil if the resource value is not bound
		Body  *Block
	}

	// BreakStmt represents a break, optionally targeting an outer labeled
	// loop.
	BreakStmt struct {
		Break token.Pos
		Label *IdentExpr // nil if unlabeled
	}

	// ContinueStmt represents a continue, optionally targeting an outer
	// labeled loop.
	ContinueStmt struct {
		Continue token.Pos
		Label    *IdentExpr // nil if unlabeled
	}

	// ReturnStmt represents a return, with an optional value.
	ReturnStmt struct {
		Return token.Pos
		Expr   Expr // nil for a bare return
	}

	// RaiseStmt represents a raise, with an optional value (a bare "raise"
	// re-raises the exception currently being handled).
	RaiseStmt struct {
		Raise token.Pos
		Expr  Expr // nil for a bare re-raise
	}

	// AssertStmt represents an assert statement, optionally with a message.
	AssertStmt struct {
		Assert token.Pos
		Cond   Expr
		Msg    Expr // nil if no message
	}

	// PassStmt represents a no-op placeholder statement.
	PassStmt struct {
		Pass token.Pos
	}
)

func (n *BadStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad stmt!", nil) }
func (n *BadStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadStmt) Walk(v Visitor)                {}
func (n *BadStmt) BlockEnding() bool             { return false }

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos)  { return n.Expr.Span() }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.Expr) }
func (n *ExprStmt) BlockEnding() bool             { return false }

func (n *AssignStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "assign "+n.Op.GoString(), map[string]int{"targets": len(n.Left)})
}
func (n *AssignStmt) Span() (start, end token.Pos) {
	start, _ = n.Left[0].Span()
	_, end = n.Right[len(n.Right)-1].Span()
	return start, end
}
func (n *AssignStmt) Walk(v Visitor) {
	for _, e := range n.Left {
		Walk(v, e)
	}
	for _, e := range n.Right {
		Walk(v, e)
	}
}
func (n *AssignStmt) BlockEnding() bool { return false }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() (start, end token.Pos) {
	end = n.True.Rbrace
	if n.False != nil {
		end = n.False.Rbrace
	}
	return n.If, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.True)
	if n.False != nil {
		Walk(v, n.False)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }

func (n *MatchCase) Format(f fmt.State, verb rune) {
	lbl := "case"
	if n.IsDefault {
		lbl = "default"
	}
	format(f, verb, n, lbl, map[string]int{"patterns": len(n.Patterns)})
}
func (n *MatchCase) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.Case, end
}
func (n *MatchCase) Walk(v Visitor) {
	for _, p := range n.Patterns {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *MatchCase) BlockEnding() bool { return false }

func (n *MatchStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "match", map[string]int{"cases": len(n.Cases)})
}
func (n *MatchStmt) Span() (start, end token.Pos) { return n.Match, n.Rbrace }
func (n *MatchStmt) Walk(v Visitor) {
	Walk(v, n.Subject)
	for _, c := range n.Cases {
		Walk(v, c)
	}
}
func (n *MatchStmt) BlockEnding() bool { return false }

func (n *ForStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "for", map[string]int{"vars": len(n.Left)})
}
func (n *ForStmt) Span() (start, end token.Pos) { _, end = n.Body.Span(); return n.For, end }
func (n *ForStmt) Walk(v Visitor) {
	if n.Label != nil {
		Walk(v, n.Label)
	}
	for _, e := range n.Left {
		Walk(v, e)
	}
	Walk(v, n.Right)
	Walk(v, n.Body)
}
func (n *ForStmt) BlockEnding() bool { return false }

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos)  { _, end = n.Body.Span(); return n.While, end }
func (n *WhileStmt) Walk(v Visitor) {
	if n.Label != nil {
		Walk(v, n.Label)
	}
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileStmt) BlockEnding() bool { return false }

func (n *ExceptClause) Format(f fmt.State, verb rune) { format(f, verb, n, "except", nil) }
func (n *ExceptClause) Span() (start, end token.Pos)  { _, end = n.Body.Span(); return n.Except, end }
func (n *ExceptClause) Walk(v Visitor) {
	if n.Pattern != nil {
		Walk(v, n.Pattern)
	}
	if n.As != nil {
		Walk(v, n.As)
	}
	Walk(v, n.Body)
}
func (n *ExceptClause) BlockEnding() bool { return false }

func (n *TryStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "try", map[string]int{"excepts": len(n.Excepts)})
}
func (n *TryStmt) Span() (start, end token.Pos) {
	end = n.Body.Rbrace
	if n.Finally != nil {
		end = n.Finally.Rbrace
	} else if len(n.Excepts) > 0 {
		_, end = n.Excepts[len(n.Excepts)-1].Span()
	}
	return n.Try, end
}
func (n *TryStmt) Walk(v Visitor) {
	Walk(v, n.Body)
	for _, e := range n.Excepts {
		Walk(v, e)
	}
	if n.Finally != nil {
		Walk(v, n.Finally)
	}
}
func (n *TryStmt) BlockEnding() bool { return false }

func (n *WithStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "with", nil) }
func (n *WithStmt) Span() (start, end token.Pos)  { _, end = n.Body.Span(); return n.With, end }
func (n *WithStmt) Walk(v Visitor) {
	Walk(v, n.Right)
	if n.As != nil {
		Walk(v, n.As)
	}
	Walk(v, n.Body)
}
func (n *WithStmt) BlockEnding() bool { return false }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos) {
	end = n.Break + token.Pos(len(token.BREAK.String()))
	if n.Label != nil {
		_, end = n.Label.Span()
	}
	return n.Break, end
}
func (n *BreakStmt) Walk(v Visitor) {
	if n.Label != nil {
		Walk(v, n.Label)
	}
}
func (n *BreakStmt) BlockEnding() bool { return true }

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos) {
	end = n.Continue + token.Pos(len(token.CONTINUE.String()))
	if n.Label != nil {
		_, end = n.Label.Span()
	}
	return n.Continue, end
}
func (n *ContinueStmt) Walk(v Visitor) {
	if n.Label != nil {
		Walk(v, n.Label)
	}
}
func (n *ContinueStmt) BlockEnding() bool { return true }

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Span() (start, end token.Pos) {
	end = n.Return + token.Pos(len(token.RETURN.String()))
	if n.Expr != nil {
		_, end = n.Expr.Span()
	}
	return n.Return, end
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Expr != nil {
		Walk(v, n.Expr)
	}
}
func (n *ReturnStmt) BlockEnding() bool { return true }

func (n *RaiseStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "raise", nil) }
func (n *RaiseStmt) Span() (start, end token.Pos) {
	end = n.Raise + token.Pos(len(token.RAISE.String()))
	if n.Expr != nil {
		_, end = n.Expr.Span()
	}
	return n.Raise, end
}
func (n *RaiseStmt) Walk(v Visitor) {
	if n.Expr != nil {
		Walk(v, n.Expr)
	}
}
func (n *RaiseStmt) BlockEnding() bool { return true }

func (n *AssertStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "assert", nil) }
func (n *AssertStmt) Span() (start, end token.Pos) {
	_, end = n.Cond.Span()
	if n.Msg != nil {
		_, end = n.Msg.Span()
	}
	return n.Assert, end
}
func (n *AssertStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	if n.Msg != nil {
		Walk(v, n.Msg)
	}
}
func (n *AssertStmt) BlockEnding() bool { return false }

func (n *PassStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "pass", nil) }
func (n *PassStmt) Span() (start, end token.Pos) {
	return n.Pass, n.Pass + token.Pos(len(token.PASS.String()))
}
func (n *PassStmt) Walk(v Visitor)    {}
func (n *PassStmt) BlockEnding() bool { return false }
