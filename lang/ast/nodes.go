package ast

import (
	"fmt"
	"os"
	"strings"

	"github.com/klang/buildscript/lang/token"
)

type (
	// Chunk represents a single compiled source file. It is exactly the same
	// as Block except that it keeps track of its name and the EOF, which is
	// useful for empty files to get a valid position.
	Chunk struct {
		// Name is the filename, which may be empty if the chunk is not a file.
		Name string

		// Comments is filled only if parsing comments was requested, and it
		// lists comments ordered by position in the chunk. Note that the
		// comments are not necessarily associated with the *Chunk, see each
		// Comment.Node field for the associated node.
		Comments []*Comment

		// Block is the block of declarations and statements contained in the
		// chunk.
		Block *Block
		EOF   token.Pos // position of the EOF marker
	}

	// Comment represents a single '#'-introduced comment.
	Comment struct {
		// Node this comment is associated with, only set if parsing comments
		// was requested, and only after parsing (via post-processing).
		Node     Node
		Start    token.Pos // position of the starting '#'
		Raw, Val string
	}

	// Block represents a brace-delimited sequence of declarations and
	// statements.
	Block struct {
		// Both Lbrace and Rbrace are saved because the block may start and end
		// before or after the statements due to comments.
		Lbrace token.Pos
		Rbrace token.Pos
		Stmts  []Stmt
	}

	// Param is a single entry in a ParameterList.
	Param struct {
		Name    *IdentExpr
		Default Expr // nil if no default value
	}

	// ParameterList is the shape shared by def, task and method signatures
	// (spec.md's parameter lists are structurally identical across the three
	// declaration kinds, so one node serves all of them).
	ParameterList struct {
		Lparen    token.Pos
		Params    []*Param
		DotDotDot token.Pos // position of the trailing "..." if variadic, else invalid
		Rparen    token.Pos
	}

	// Label names a loop so that a labeled break/continue can target an
	// outer loop from within a nested one.
	Label struct {
		ColonColon token.Pos
		Name       *IdentExpr
	}
)

func (n *Chunk) Format(f fmt.State, verb rune) {
	lbl := "chunk"
	if n.Name != "" {
		lbl += " " + strings.ReplaceAll(n.Name, string(os.PathSeparator), "/")
	}
	format(f, verb, n, lbl, nil)
}
func (n *Chunk) Span() (start, end token.Pos) {
	if n.Block != nil {
		return n.Block.Span()
	}
	return n.EOF, n.EOF
}
func (n *Chunk) Walk(v Visitor) {
	if n.Block != nil {
		Walk(v, n.Block)
	}
}

func (n *Comment) Format(f fmt.State, verb rune) { format(f, verb, n, "comment "+n.Val, nil) }
func (n *Comment) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *Comment) Walk(_ Visitor)                {}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func (n *Param) Format(f fmt.State, verb rune) {
	lbl := n.Name.Lit
	if n.Default != nil {
		lbl += "=..."
	}
	format(f, verb, n, "param "+lbl, nil)
}
func (n *Param) Span() (start, end token.Pos) {
	start, end = n.Name.Span()
	if n.Default != nil {
		_, end = n.Default.Span()
	}
	return start, end
}
func (n *Param) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Default != nil {
		Walk(v, n.Default)
	}
}

func (n *ParameterList) Format(f fmt.State, verb rune) {
	lbl := "params"
	if n.DotDotDot.IsValid() {
		lbl += " ..."
	}
	format(f, verb, n, lbl, map[string]int{"count": len(n.Params)})
}
func (n *ParameterList) Span() (start, end token.Pos) {
	end = n.Rparen + token.Pos(len(token.RPAREN.String()))
	return n.Lparen, end
}
func (n *ParameterList) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
}

func (n *Label) Format(f fmt.State, verb rune) { format(f, verb, n, "label "+n.Name.Lit, nil) }
func (n *Label) Span() (start, end token.Pos) {
	_, end = n.Name.Span()
	return n.ColonColon, end
}
func (n *Label) Walk(v Visitor) { Walk(v, n.Name) }
