// Much of the resolver package is adapted from the Starlark source code:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolver binds every identifier of a parsed build script to the
// symbol it denotes.
//
// # Scopes
//
// A Binding is either "undefined" (an error), "local" to a function scope
// (the top-level chunk counts as one), a "free" reference to a variable
// captured from an enclosing function (a closure), a "loop label", or comes
// from the "predeclared" or "universal" environment the embedder supplies.
// There is no global scope: each file's chunk is itself a function scope,
// resolved independently of every other chunk.
//
// When a local is referenced from a nested function, every binding of it
// becomes a "cell" (a local shared with at least one closure).
//
// # Loop labels
//
// A for or while statement may carry a "::name::" Label. The label is
// visible in the loop's own body and in anything lexically nested inside it
// (including further loops, try/except/finally and with blocks), but not
// inside a nested def/task/class/closure, and it cannot be shadowed by
// another label of the same name within the same function.
//
// # Declarations
//
//   - VarDecl (var/const) binds its left-hand identifiers in the enclosing
//     block, after resolving its right-hand expressions (so "var x = x"
//     refers to an outer x, not itself).
//   - FuncDecl, TaskDecl and ClassDecl bind their Name in the enclosing
//     block before resolving their body, so the declaration can refer to
//     itself (recursion) and so sibling declarations can reference it in any
//     order.
//   - ParameterList binds its parameters to the function/task/closure body.
//   - ForStmt always creates fresh bindings for its loop variables.
//   - Inside a method or a property accessor body, "self" (and, when the
//     class has an "extends" clause, "super") are implicitly bound local
//     symbols; nothing needs to declare them explicitly.
package resolver

import (
	"context"
	"fmt"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/scanner"
	"github.com/klang/buildscript/lang/token"
)

// Mode is a set of bit flags that configure the resolve. The zero Mode
// resolves every identifier and reports every error.
type Mode uint

const (
	// NameBlocks assigns every lexical block a unique name (useful when
	// printing the resolved AST for debugging).
	NameBlocks Mode = 1 << iota
)

// ResolveFiles binds every identifier in chunks, which must be the result of
// a successful, error-free parse from the same fset. isPredeclared and
// isUniversal, if non-nil, report whether a name belongs to the embedder's
// predeclared environment or to the language's built-ins, respectively; a
// name not covered by either, and not otherwise in scope, is an error.
//
// The returned map supplies, for every function-like scope resolved (a
// *ast.Chunk, *ast.FuncDecl, *ast.TaskDecl, *ast.ClassDecl, *ast.ClosureExpr
// or a property accessor's *ast.Block), the Function recording its locals, free variables and
// loop labels — including the implicit "self"/"super" locals of a method or
// property accessor, which never appear as a real AST node and so are
// otherwise unreachable. lang/irgen consumes this to lower each scope into
// its own IR code unit.
//
// The returned error, if non-nil, is a scanner.ErrorList.
func ResolveFiles(ctx context.Context, fset *token.FileSet, chunks []*ast.Chunk,
	mode Mode, isPredeclared, isUniversal func(name string) bool) (map[ast.Node]*Function, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	r := resolver{
		isPredeclared: isPredeclared,
		isUniversal:   isUniversal,
		functions:     make(map[ast.Node]*Function),
	}
	if r.isPredeclared == nil {
		r.isPredeclared = func(string) bool { return false }
	}
	if r.isUniversal == nil {
		r.isUniversal = func(string) bool { return false }
	}

	for _, ch := range chunks {
		if ctx.Err() != nil {
			r.errors.Add(token.Position{}, ctx.Err().Error())
			break
		}
		r.init(fset.File(ch.EOF))
		r.chunk(ch)
		if mode&NameBlocks != 0 {
			r.nameBlocks()
		}
	}
	r.errors.Sort()
	if err := r.errors.Err(); err != nil {
		return nil, err
	}
	return r.functions, nil
}

// block is one lexical scope: a node in an ever-growing-backward linked
// list, rooted at the chunk's own block. Every block belongs to a Function
// (its own, if it opens a new one, else its parent's).
type block struct {
	fn       *Function
	parent   *block
	children []*block
	bindings map[string]*Binding
	name     string // set by nameBlocks only
}

type resolver struct {
	file   *token.File
	errors scanner.ErrorList

	env  *block // the innermost (current) lexical block
	root *block // the chunk's own block, kept for nameBlocks

	// globals caches the Binding created the first time each predeclared or
	// universal name is referenced, within the current chunk.
	globals map[string]*Binding

	// functions records every function-like scope's Function, keyed by its
	// Definition node, across every chunk resolved by this call.
	functions map[ast.Node]*Function

	isPredeclared, isUniversal func(name string) bool
}

func (r *resolver) init(file *token.File) {
	r.file = file
	r.env = nil
	r.root = nil
	r.globals = make(map[string]*Binding)
}

func (r *resolver) errorf(pos token.Pos, format string, args ...any) {
	r.errors.Add(r.file.Position(pos), fmt.Sprintf(format, args...))
}

// push opens b as the new current block, nested under the current one. If b
// does not carry its own Function, it inherits the enclosing block's.
func (r *resolver) push(b *block) {
	b.bindings = make(map[string]*Binding)
	b.parent = r.env
	if r.env == nil {
		r.root = b
	} else {
		r.env.children = append(r.env.children, b)
	}
	if b.fn == nil {
		b.fn = r.env.fn
	} else {
		r.functions[b.fn.Definition] = b.fn
	}
	r.env = b
}

func (r *resolver) pop() { r.env = r.env.parent }

func (r *resolver) chunk(ch *ast.Chunk) {
	r.push(&block{fn: &Function{Definition: ch}})
	for _, s := range ch.Block.Stmts {
		r.stmt(s)
	}
	r.pop()
}

// block resolves the statements of b inside a fresh child block that does
// not open a new function scope.
func (r *resolver) block(b *ast.Block) {
	r.push(new(block))
	for _, s := range b.Stmts {
		r.stmt(s)
	}
	r.pop()
}

func (r *resolver) stmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.BadStmt, *ast.PassStmt:
		// nothing to resolve

	case *ast.ExprStmt:
		r.expr(stmt.Expr)

	case *ast.AssignStmt:
		for _, e := range stmt.Right {
			r.expr(e)
		}
		for _, e := range stmt.Left {
			r.expr(e)
		}

	case *ast.ImportDecl:
		if stmt.Alias != nil {
			r.bind(stmt.Alias, false)
		}

	case *ast.ExportDecl:
		r.stmt(stmt.Decl)

	case *ast.VarDecl:
		r.varDecl(stmt)

	case *ast.FuncDecl:
		r.bind(stmt.Name, false)
		stmt.Symbol = stmt.Name.Binding
		r.function(stmt, stmt.Sig, stmt.Body)

	case *ast.TaskDecl:
		r.bind(stmt.Name, false)
		stmt.Symbol = stmt.Name.Binding
		r.task(stmt)

	case *ast.ClassDecl:
		r.bind(stmt.Name, false)
		stmt.Symbol = stmt.Name.Binding
		r.class(stmt)

	case *ast.IfStmt:
		r.expr(stmt.Cond)
		r.block(stmt.True)
		if stmt.False != nil {
			r.block(stmt.False)
		}

	case *ast.MatchStmt:
		r.expr(stmt.Subject)
		for _, c := range stmt.Cases {
			for _, p := range c.Patterns {
				r.expr(p)
			}
			r.block(c.Body)
		}

	case *ast.ForStmt:
		r.expr(stmt.Right)
		r.env.fn.loops++
		r.push(new(block))
		if stmt.Label != nil {
			r.bindLabel(stmt.Label.Name)
		}
		for _, id := range stmt.Left {
			r.bind(id, false)
		}
		for _, s := range stmt.Body.Stmts {
			r.stmt(s)
		}
		r.pop()
		r.env.fn.loops--

	case *ast.WhileStmt:
		r.expr(stmt.Cond)
		r.env.fn.loops++
		r.push(new(block))
		if stmt.Label != nil {
			r.bindLabel(stmt.Label.Name)
		}
		for _, s := range stmt.Body.Stmts {
			r.stmt(s)
		}
		r.pop()
		r.env.fn.loops--

	case *ast.TryStmt:
		r.block(stmt.Body)
		for _, ex := range stmt.Excepts {
			if ex.Pattern != nil {
				r.expr(ex.Pattern)
			}
			r.env.fn.catches++
			r.push(new(block))
			if ex.As != nil {
				r.bind(ex.As, false)
			}
			for _, s := range ex.Body.Stmts {
				r.stmt(s)
			}
			r.pop()
			r.env.fn.catches--
		}
		if stmt.Finally != nil {
			r.block(stmt.Finally)
		}

	case *ast.WithStmt:
		r.expr(stmt.Right)
		r.push(new(block))
		if stmt.As != nil {
			r.bind(stmt.As, false)
		}
		for _, s := range stmt.Body.Stmts {
			r.stmt(s)
		}
		r.pop()

	case *ast.BreakStmt:
		if r.env.fn.loops == 0 {
			r.errorf(stmt.Break, "break outside of a loop")
		}
		if stmt.Label != nil {
			r.useLabel(stmt.Label)
		}

	case *ast.ContinueStmt:
		if r.env.fn.loops == 0 {
			r.errorf(stmt.Continue, "continue outside of a loop")
		}
		if stmt.Label != nil {
			r.useLabel(stmt.Label)
		}

	case *ast.ReturnStmt:
		if stmt.Expr != nil {
			r.expr(stmt.Expr)
		}

	case *ast.RaiseStmt:
		if stmt.Expr != nil {
			r.expr(stmt.Expr)
		} else if r.env.fn.catches == 0 {
			r.errorf(stmt.Raise, "invalid re-raise: not inside an except block")
		}

	case *ast.AssertStmt:
		r.expr(stmt.Cond)
		if stmt.Msg != nil {
			r.expr(stmt.Msg)
		}

	default:
		panic(fmt.Sprintf("resolver: unexpected statement %T", stmt))
	}
}

func (r *resolver) varDecl(d *ast.VarDecl) {
	for _, e := range d.Right {
		r.expr(e)
	}
	isConst := d.DeclType == token.CONST
	for _, id := range d.Left {
		r.bind(id, isConst)
	}
}

func (r *resolver) expr(expr ast.Expr) {
	switch expr := expr.(type) {
	case *ast.BadExpr, *ast.LiteralExpr:
		// nothing to resolve

	case *ast.BinOpExpr:
		r.expr(expr.Left)
		r.expr(expr.Right)

	case *ast.TernaryExpr:
		r.expr(expr.Then)
		r.expr(expr.Cond)
		r.expr(expr.Alt)

	case *ast.CallExpr:
		r.expr(expr.Fn)
		for _, a := range expr.Args {
			r.expr(a)
		}

	case *ast.ClosureExpr:
		r.function(expr, expr.Sig, expr.Body)

	case *ast.DotExpr:
		// Right names a field or method resolved at runtime, not a symbol.
		r.expr(expr.Left)

	case *ast.IdentExpr:
		r.use(expr)

	case *ast.IndexExpr:
		r.expr(expr.Prefix)
		r.expr(expr.Index)

	case *ast.InterpStringExpr:
		for _, p := range expr.Parts {
			r.expr(p)
		}

	case *ast.ArrayExpr:
		for _, it := range expr.Items {
			r.expr(it)
		}

	case *ast.MapExpr:
		for _, kv := range expr.Items {
			// a bare "ident:" key is a literal name, like DotExpr.Right, not
			// a variable reference
			if _, isIdent := kv.Key.(*ast.IdentExpr); !isIdent {
				r.expr(kv.Key)
			}
			r.expr(kv.Value)
		}

	case *ast.ParenExpr:
		r.expr(expr.Expr)

	case *ast.UnaryOpExpr:
		r.expr(expr.Right)

	default:
		panic(fmt.Sprintf("resolver: unexpected expression %T", expr))
	}
}

// function resolves a def body or closure literal: sig and body are scoped
// to a fresh Function rooted at def.
func (r *resolver) function(def ast.Node, sig *ast.ParameterList, body *ast.Block) {
	r.push(&block{fn: &Function{
		Definition: def,
		HasVarArg:  sig.DotDotDot.IsValid(),
	}})
	r.params(sig)
	for _, s := range body.Stmts {
		r.stmt(s)
	}
	r.pop()
}

// params binds sig's parameters in the current (already pushed) function
// scope. A parameter's default value is resolved before that parameter is
// bound (so it cannot refer to itself) but after earlier parameters are
// bound (so later defaults may refer to earlier parameters).
func (r *resolver) params(sig *ast.ParameterList) {
	for _, p := range sig.Params {
		if p.Default != nil {
			r.expr(p.Default)
		}
		r.bind(p.Name, false)
	}
}

func (r *resolver) task(d *ast.TaskDecl) {
	fn := &Function{Definition: d}
	if d.Sig != nil {
		fn.HasVarArg = d.Sig.DotDotDot.IsValid()
	}
	r.push(&block{fn: fn})
	if d.Sig != nil {
		r.params(d.Sig)
	}
	for _, e := range d.Inputs {
		r.expr(e)
	}
	for _, e := range d.Outputs {
		r.expr(e)
	}
	for _, e := range d.DependsOn {
		r.expr(e)
	}
	if d.From != nil {
		r.expr(d.From)
	}
	if d.DoFirst != nil {
		r.block(d.DoFirst)
	}
	if d.Do != nil {
		r.block(d.Do)
	}
	if d.DoLast != nil {
		r.block(d.DoLast)
	}
	r.pop()
}

func (r *resolver) class(d *ast.ClassDecl) {
	r.push(&block{fn: &Function{Definition: d}})

	if d.Extends != nil {
		r.expr(d.Extends)
	}
	hasSuper := d.Extends != nil

	// fields are declared in order, each one visible to those after it
	for _, f := range d.Fields {
		r.varDecl(f)
	}

	// method names are all visible to every method, regardless of order
	for _, m := range d.Methods {
		r.bind(m.Name, false)
		m.Symbol = m.Name.Binding
	}
	for _, m := range d.Methods {
		r.method(m, hasSuper)
	}
	for _, p := range d.Props {
		r.prop(p, hasSuper)
	}

	r.pop()
}

func (r *resolver) method(m *ast.FuncDecl, hasSuper bool) {
	r.push(&block{fn: &Function{
		Definition: m,
		HasVarArg:  m.Sig.DotDotDot.IsValid(),
	}})
	r.bindImplicit("self", true)
	if hasSuper {
		r.bindImplicit("super", true)
	}
	r.params(m.Sig)
	for _, s := range m.Body.Stmts {
		r.stmt(s)
	}
	r.pop()
}

// prop resolves a computed property's get/set accessors. Each accessor gets
// its own Function keyed by its own *ast.Block (not by p itself): a
// read/write property shares one PropDecl but has two independent bodies,
// and irgen.functions needs to tell them apart.
func (r *resolver) prop(p *ast.PropDecl, hasSuper bool) {
	if p.Get != nil {
		r.push(&block{fn: &Function{Definition: p.Get}})
		r.bindImplicit("self", true)
		if hasSuper {
			r.bindImplicit("super", true)
		}
		for _, s := range p.Get.Stmts {
			r.stmt(s)
		}
		r.pop()
	}
	if p.Set != nil {
		r.push(&block{fn: &Function{Definition: p.Set}})
		r.bindImplicit("self", true)
		if hasSuper {
			r.bindImplicit("super", true)
		}
		r.bind(p.SetArg, false)
		for _, s := range p.Set.Stmts {
			r.stmt(s)
		}
		r.pop()
	}
}

// bind declares ident as a new Local in the current block, reporting an
// error if that name is already bound there.
func (r *resolver) bind(ident *ast.IdentExpr, isConst bool) {
	if _, ok := r.env.bindings[ident.Lit]; ok {
		r.errorf(ident.Start, "already declared in this block: %s", ident.Lit)
		return
	}

	bdg := &Binding{Scope: Local, Const: isConst, Decl: ident, Index: len(r.env.fn.Locals)}
	r.env.fn.Locals = append(r.env.fn.Locals, bdg)
	r.env.bindings[ident.Lit] = bdg
	ident.Binding = bdg
}

// bindImplicit declares a compiler-synthesized binding (self/super) with no
// corresponding source identifier.
func (r *resolver) bindImplicit(name string, isConst bool) {
	r.bind(&ast.IdentExpr{Lit: name}, isConst)
}

// bindLabel declares a loop label in the current block. A label may not
// shadow another label already visible within the same function.
func (r *resolver) bindLabel(ident *ast.IdentExpr) {
	fn := r.env.fn
	for env := r.env; env != nil && env.fn == fn; env = env.parent {
		if _, ok := env.bindings[ident.Lit]; ok {
			r.errorf(ident.Start, "label already declared: %s", ident.Lit)
			return
		}
	}

	bdg := &Binding{Scope: LoopLabel, Decl: ident, Index: len(fn.Labels)}
	fn.Labels = append(fn.Labels, bdg)
	r.env.bindings[ident.Lit] = bdg
	ident.Binding = bdg
}

// use resolves a reference to ident: a local of the current function, a free
// variable captured from an enclosing one, predeclared, universal, or
// undefined.
func (r *resolver) use(ident *ast.IdentExpr) {
	startFn := r.env.fn
	for env := r.env; env != nil; env = env.parent {
		bdg, ok := env.bindings[ident.Lit]
		if !ok || bdg.Scope == LoopLabel {
			continue
		}
		if env.fn != startFn {
			if bdg.Scope == Local {
				bdg.Scope = Cell
			}
			free := &Binding{Scope: Free, Const: bdg.Const, Decl: bdg.Decl, Index: len(r.env.fn.FreeVars)}
			r.env.fn.FreeVars = append(r.env.fn.FreeVars, bdg)
			r.env.bindings[ident.Lit] = free
			bdg = free
		}
		ident.Binding = bdg
		return
	}

	if r.isPredeclared(ident.Lit) {
		ident.Binding = r.global(ident, Predeclared)
		return
	}
	if r.isUniversal(ident.Lit) {
		ident.Binding = r.global(ident, Universal)
		return
	}

	r.errorf(ident.Start, "undefined: %s", ident.Lit)
	ident.Binding = &Binding{Scope: Undefined, Decl: ident}
}

func (r *resolver) global(ident *ast.IdentExpr, scope Scope) *Binding {
	if bdg, ok := r.globals[ident.Lit]; ok {
		return bdg
	}
	bdg := &Binding{Scope: scope, Decl: ident}
	r.globals[ident.Lit] = bdg
	return bdg
}

// useLabel resolves a break/continue target to a label declared in an
// enclosing block of the current function.
func (r *resolver) useLabel(ident *ast.IdentExpr) {
	fn := r.env.fn
	for env := r.env; env != nil && env.fn == fn; env = env.parent {
		if bdg, ok := env.bindings[ident.Lit]; ok {
			if bdg.Scope != LoopLabel {
				break
			}
			ident.Binding = bdg
			return
		}
	}
	r.errorf(ident.Start, "label not defined: %s", ident.Lit)
	ident.Binding = &Binding{Scope: Undefined, Decl: ident}
}
