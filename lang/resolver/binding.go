package resolver

import (
	"fmt"

	"github.com/klang/buildscript/lang/ast"
)

// Scope indicates the kind of scope that owns a Binding.
type Scope uint8

const (
	Undefined   Scope = iota // name could not be resolved: an error was reported
	Local                    // name is local to its function
	Cell                     // name is function-local but captured by a nested closure
	Free                     // name is a captured cell of an enclosing function
	Predeclared              // name is provided by the embedder's predeclared environment
	Universal                // name is a language built-in
	LoopLabel                // name is a loop label, the target of a labeled break/continue
)

var scopeNames = [...]string{
	Undefined:   "undefined",
	Local:       "local",
	Cell:        "cell",
	Free:        "free",
	Predeclared: "predeclared",
	Universal:   "universal",
	LoopLabel:   "loop label",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid scope %d>", s)
	}
	return scopeNames[s]
}

// Binding records what an identifier resolves to. The parser leaves
// IdentExpr.Binding (and the Symbol field of FuncDecl/TaskDecl/ClassDecl/
// PropDecl) nil; ResolveFiles fills it in for every identifier in the tree.
type Binding struct {
	Scope Scope

	// Index is the slot of this binding within its owning Function: Locals
	// for Scope==Local or Scope==Cell, FreeVars for Scope==Free, Labels for
	// Scope==LoopLabel. Unused (zero) for Predeclared, Universal and
	// Undefined.
	Index int

	// Const is true for a "const" declaration, or for the implicit "self"
	// and "super" bindings of a method/property body; such bindings may not
	// appear on the left of an assignment.
	Const bool

	// BlockName identifies the lexical block this binding was first declared
	// in, set only when ResolveFiles is called with Mode&NameBlocks.
	BlockName string

	// Decl is the identifier that introduced this binding.
	Decl *ast.IdentExpr
}

// Function groups the local/free-variable and label slots belonging to one
// function-like scope: a chunk, a def/task body, a class body, a property
// accessor, or a closure literal.
type Function struct {
	// Definition is the node that opened this function scope: *ast.Chunk,
	// *ast.FuncDecl, *ast.TaskDecl, *ast.ClassDecl, *ast.ClosureExpr, or the
	// *ast.Block of a property accessor (a PropDecl's Get or Set body).
	Definition ast.Node

	HasVarArg bool

	Locals   []*Binding // implicit self/super (methods, accessors), then parameters, then declared locals, in declaration order
	FreeVars []*Binding // cells of enclosing functions that this function references
	Labels   []*Binding // loop labels declared directly in this function

	loops   int // > 0 while resolving the body of a for/while loop
	catches int // > 0 while resolving the body of an except clause
}
