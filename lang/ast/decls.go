package ast

import (
	"fmt"

	"github.com/klang/buildscript/lang/token"
)

type (
	// ImportDecl represents an "import" declaration, e.g. import "fmt" as f.
	ImportDecl struct {
		Import token.Pos
		Path   *LiteralExpr
		As     token.Pos // invalid if no "as" clause
		Alias  *IdentExpr // nil if no "as" clause
	}

	// ExportDecl represents an "export" declaration wrapping another
	// declaration, e.g. export def foo() {}.
	ExportDecl struct {
		Export token.Pos
		Decl   Decl
	}

	// VarDecl represents a var or const declaration, e.g. var x = 1, y = 2.
	VarDecl struct {
		DeclType token.Token // VAR or CONST
		Start    token.Pos
		Left     []*IdentExpr
		Assign   token.Pos
		Right    []Expr // len(Right) == len(Left), or 0 for a bare "var x"
	}

	// FuncDecl represents a "def" function declaration.
	FuncDecl struct {
		Def    token.Pos
		Name   *IdentExpr
		Sig    *ParameterList
		Body   *Block
		Symbol any // *resolver.Binding, indirect to avoid an import cycle
	}

	// TaskDecl represents a "task" declaration: a named unit of work with
	// declarative inputs/outputs/dependsOn clauses and one or more action
	// blocks (spec.md §3/§4.3).
	TaskDecl struct {
		Task      token.Pos
		Name      *IdentExpr
		Sig       *ParameterList // invocation parameters, may be nil
		Inputs    []Expr
		Outputs   []Expr
		DependsOn []Expr
		From      Expr // nil if no "from" clause
		DoFirst   *Block
		Do        *Block
		DoLast    *Block
		Symbol    any // *resolver.Binding, indirect to avoid an import cycle
	}

	// ClassDecl represents a class declaration, with field, property and
	// method members.
	ClassDecl struct {
		Class    token.Pos
		Name     *IdentExpr
		Extends  Expr // nil if no "extends" clause
		Fields   []*VarDecl
		Props    []*PropDecl
		Methods  []*FuncDecl
		Rbrace   token.Pos
		Symbol   any // *resolver.Binding, indirect to avoid an import cycle
	}

	// PropDecl represents a computed class property with a get and/or set
	// accessor.
	PropDecl struct {
		Get    *Block // nil if write-only
		Set    *Block // nil if read-only
		SetArg *IdentExpr // parameter name bound inside Set, nil if Set is nil
		Name   *IdentExpr
		Symbol any // *resolver.Binding, indirect to avoid an import cycle
	}
)

func (n *ImportDecl) Format(f fmt.State, verb rune) {
	lbl := "import " + n.Path.Raw
	if n.Alias != nil {
		lbl += " as " + n.Alias.Lit
	}
	format(f, verb, n, lbl, nil)
}
func (n *ImportDecl) Span() (start, end token.Pos) {
	_, end = n.Path.Span()
	if n.Alias != nil {
		_, end = n.Alias.Span()
	}
	return n.Import, end
}
func (n *ImportDecl) Walk(v Visitor) {
	Walk(v, n.Path)
	if n.Alias != nil {
		Walk(v, n.Alias)
	}
}
func (n *ImportDecl) BlockEnding() bool { return false }
func (n *ImportDecl) decl()             {}

func (n *ExportDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "export", nil) }
func (n *ExportDecl) Span() (start, end token.Pos) {
	_, end = n.Decl.Span()
	return n.Export, end
}
func (n *ExportDecl) Walk(v Visitor)    { Walk(v, n.Decl) }
func (n *ExportDecl) BlockEnding() bool { return false }
func (n *ExportDecl) decl()             {}

func (n *VarDecl) Format(f fmt.State, verb rune) {
	lbl := "var"
	if n.DeclType == token.CONST {
		lbl = "const"
	}
	format(f, verb, n, lbl, map[string]int{"names": len(n.Left)})
}
func (n *VarDecl) Span() (start, end token.Pos) {
	end = n.Start
	if len(n.Right) > 0 {
		_, end = n.Right[len(n.Right)-1].Span()
	} else if len(n.Left) > 0 {
		_, end = n.Left[len(n.Left)-1].Span()
	}
	return n.Start, end
}
func (n *VarDecl) Walk(v Visitor) {
	for _, e := range n.Left {
		Walk(v, e)
	}
	for _, e := range n.Right {
		Walk(v, e)
	}
}
func (n *VarDecl) BlockEnding() bool { return false }
func (n *VarDecl) decl()             {}

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "def "+n.Name.Lit, map[string]int{"params": len(n.Sig.Params)})
}
func (n *FuncDecl) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.Def, end
}
func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	Walk(v, n.Sig)
	Walk(v, n.Body)
}
func (n *FuncDecl) BlockEnding() bool { return false }
func (n *FuncDecl) decl()             {}

func (n *TaskDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "task "+n.Name.Lit, map[string]int{
		"inputs": len(n.Inputs), "outputs": len(n.Outputs), "dependsOn": len(n.DependsOn),
	})
}
func (n *TaskDecl) Span() (start, end token.Pos) {
	switch {
	case n.DoLast != nil:
		_, end = n.DoLast.Span()
	case n.Do != nil:
		_, end = n.Do.Span()
	case n.DoFirst != nil:
		_, end = n.DoFirst.Span()
	default:
		_, end = n.Name.Span()
	}
	return n.Task, end
}
func (n *TaskDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Sig != nil {
		Walk(v, n.Sig)
	}
	for _, e := range n.Inputs {
		Walk(v, e)
	}
	for _, e := range n.Outputs {
		Walk(v, e)
	}
	for _, e := range n.DependsOn {
		Walk(v, e)
	}
	if n.From != nil {
		Walk(v, n.From)
	}
	if n.DoFirst != nil {
		Walk(v, n.DoFirst)
	}
	if n.Do != nil {
		Walk(v, n.Do)
	}
	if n.DoLast != nil {
		Walk(v, n.DoLast)
	}
}
func (n *TaskDecl) BlockEnding() bool { return false }
func (n *TaskDecl) decl()             {}

func (n *ClassDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "class "+n.Name.Lit, map[string]int{
		"fields": len(n.Fields), "props": len(n.Props), "methods": len(n.Methods),
	})
}
func (n *ClassDecl) Span() (start, end token.Pos) { return n.Class, n.Rbrace }
func (n *ClassDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Extends != nil {
		Walk(v, n.Extends)
	}
	for _, fd := range n.Fields {
		Walk(v, fd)
	}
	for _, p := range n.Props {
		Walk(v, p)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *ClassDecl) BlockEnding() bool { return false }
func (n *ClassDecl) decl()             {}

func (n *PropDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "property "+n.Name.Lit, nil) }
func (n *PropDecl) Span() (start, end token.Pos) {
	start, end = n.Name.Span()
	if n.Set != nil {
		_, end = n.Set.Span()
	} else if n.Get != nil {
		_, end = n.Get.Span()
	}
	return start, end
}
func (n *PropDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Get != nil {
		Walk(v, n.Get)
	}
	if n.Set != nil {
		Walk(v, n.Set)
	}
}
func (n *PropDecl) BlockEnding() bool { return false }
func (n *PropDecl) decl()             {}
