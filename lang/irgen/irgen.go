// Package irgen lowers a resolved AST into IR code units, mirroring
// original_source/Source/Compiler/IR/IRGenerator.cpp: one IR code unit per
// function-like scope (a chunk, a def/task body, a method, a property
// accessor or a closure literal), built on top of the low-level SSA
// construction primitives in lang/ir.
//
// Unlike the original's ASTWalker-based visitor with a member-variable
// "return slot" threading expression results back out of void-returning
// Visit methods, this port is a plain recursive-descent walk: expression
// lowering returns an ir.Value directly, and statement lowering is an
// exhaustive type switch (spec.md §9 prefers this over double-dispatch
// visitors; lang/optimize's passes follow the same rule).
package irgen

import (
	"fmt"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/resolver"
	"github.com/klang/buildscript/lang/token"
)

// Generate lowers every resolved chunk into a flat list of IR code units.
// functions is the map ResolveFiles returned for the same chunks.
func Generate(chunks []*ast.Chunk, functions map[ast.Node]*resolver.Function) []*ir.CodeBlock {
	g := &generator{functions: functions}
	for _, ch := range chunks {
		g.chunk(ch)
	}
	return g.codes
}

// generator holds the flat list of finished code units and the stack of
// in-progress builders, one per nested function-like scope currently being
// lowered (PushBuilder/PopBuilder in the original).
type generator struct {
	functions map[ast.Node]*resolver.Function
	codes     []*ir.CodeBlock
	stack     []*ir.Builder
	captures  [][]any // parallel to stack: this unit's Function.FreeVars, in order

	// loopLabels maps a loop label's binding to its break/continue targets,
	// for a labeled break/continue reaching past an intervening unlabeled
	// loop. Builder.Loop only tracks the innermost loop; a label can name
	// any enclosing one.
	loopLabels map[any]loopTargets
}

type loopTargets struct {
	brk, cont *ir.BasicBlock
}

func (g *generator) pushLoopLabel(sym any, brk, cont *ir.BasicBlock) {
	if g.loopLabels == nil {
		g.loopLabels = make(map[any]loopTargets)
	}
	g.loopLabels[sym] = loopTargets{brk, cont}
}

func (g *generator) popLoopLabel(sym any) { delete(g.loopLabels, sym) }

// loopTargetsFor resolves the break/continue blocks a break/continue
// statement should jump to: the named label's loop if label is non-nil,
// else the innermost enclosing loop. The resolver already rejects a
// break/continue with no enclosing loop and a break targeting an unknown
// label, so both lookups are expected to succeed here.
func (g *generator) loopTargetsFor(label *ast.IdentExpr) (brk, cont *ir.BasicBlock) {
	if label != nil {
		t, ok := g.loopLabels[sym(label)]
		if !ok {
			panic("irgen: unresolved loop label " + label.Lit)
		}
		return t.brk, t.cont
	}
	brk, cont, ok := g.cur().Loop()
	if !ok {
		panic("irgen: break/continue outside of a loop")
	}
	return brk, cont
}

func (g *generator) cur() *ir.Builder { return g.stack[len(g.stack)-1] }

// pushFunction starts a new code unit named name. params are bound as its
// call arguments (in order, each a *resolver.Binding); fn.FreeVars (if fn is
// non-nil) are additionally bound at entry, in order, as the values a
// MakeClosure must supply through Captures. The entry block is sealed
// immediately: a function entry has no predecessors and nothing branches
// back to it.
func (g *generator) pushFunction(name string, params []any, hasVarArg bool, fn *resolver.Function) *ir.Builder {
	b := ir.NewBuilder(name, params, hasVarArg)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	for _, p := range params {
		b.WriteVariable(p, b.NewValue())
	}
	var captures []any
	if fn != nil {
		for _, free := range fn.FreeVars {
			captures = append(captures, free)
			b.WriteVariable(free, b.NewValue())
		}
	}
	b.SealBlock(entry)
	g.stack = append(g.stack, b)
	g.captures = append(g.captures, captures)
	return b
}

// popFunction closes out the current builder: if its current block is not
// already terminated, a bare "return none" is synthesized (GenerateBody's
// fallback in the original), then the code unit is finished and appended.
func (g *generator) popFunction(pos token.Pos) *ir.CodeBlock {
	b := g.cur()
	if b.Current().Terminator() == nil {
		none := g.emitConst(b, pos, nil)
		b.Emit(ir.NewReturn(pos, none))
	}
	code := b.Finish()
	code.Captures = g.captures[len(g.captures)-1]
	g.stack = g.stack[:len(g.stack)-1]
	g.captures = g.captures[:len(g.captures)-1]
	g.codes = append(g.codes, code)
	return code
}

// makeClosure finishes the code unit currently on top of the stack (built by
// a matching pushFunction), then — back in the now-current enclosing
// builder — emits the MakeClosure capturing its free variables' present
// values, per resolver.Binding identity.
//
// A binding captured by its own unit (a named def/task referring to itself,
// recursion through a closure) cannot be snapshotted before the closure
// exists to be snapshotted: that one slot is emitted as ir.Invalid, on the
// documented contract that the runtime patches a self-referential capture
// slot to the freshly built closure immediately after MakeClosure returns,
// before the closure becomes callable (the same "tie the knot" pattern
// used for letrec-bound closures in other by-value-capture VMs).
func (g *generator) makeClosure(pos token.Pos, selfSym any) ir.Value {
	code := g.popFunction(pos)
	outer := g.cur()
	capVals := make([]ir.Value, len(code.Captures))
	for i, sym := range code.Captures {
		if sym == selfSym {
			capVals[i] = ir.Invalid
			continue
		}
		capVals[i] = outer.ReadVariable(sym, outer.Current())
	}
	result := outer.NewValue()
	outer.Emit(ir.NewMakeClosure(pos, result, code, capVals))
	return result
}

// chunk lowers one file's top-level scope as its own code unit, named after
// the file.
func (g *generator) chunk(ch *ast.Chunk) {
	name := ch.Name
	if name == "" {
		name = "<chunk>"
	}
	g.pushFunction(name, nil, false, g.functions[ch])
	g.block(ch.Block)
	g.popFunction(ch.EOF)
}

// block lowers every statement of b into the current builder in order. It
// does not open a new builder: only pushFunction does that. Statements after the first terminal statement are unreachable and
// skipped, matching the original's no-dead-code-after-terminator invariant.
func (g *generator) block(b *ast.Block) {
	cur := g.cur()
	for _, s := range b.Stmts {
		if cur.Current().Terminator() != nil {
			break
		}
		g.stmt(s)
	}
}

func sym(id *ast.IdentExpr) any { return id.Binding }

// emitConst loads a compile-time constant, reusing an existing load in the
// current block when one already exists for the identical value (BasicBlock
// Consts de-dupe map, spec.md §4.5).
func (g *generator) emitConst(b *ir.Builder, pos token.Pos, val any) ir.Value {
	blk := b.Current()
	if v, ok := blk.Consts[constKey(val)]; ok {
		return v
	}
	v := b.NewValue()
	b.Emit(ir.NewLoadConst(pos, v, val))
	blk.Consts[constKey(val)] = v
	return v
}

// constKey normalizes val into a key comparable across identical literal
// occurrences: float64/int64/string/bool compare naturally, nil needs a
// sentinel since the map key type is interface{} and a literal nil key
// collides with "no such key" lookups no differently than any other
// interface value, but a distinct type keeps its intent explicit.
type noneKey struct{}

func constKey(val any) any {
	if val == nil {
		return noneKey{}
	}
	return val
}

func unexpectedStmt(s ast.Stmt) {
	panic(fmt.Sprintf("irgen: unexpected statement %T", s))
}

func unexpectedExpr(e ast.Expr) {
	panic(fmt.Sprintf("irgen: unexpected expression %T", e))
}
