package resolver_test

import (
	"context"
	"testing"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/parser"
	"github.com/klang/buildscript/lang/resolver"
	"github.com/klang/buildscript/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolveChunk parses and resolves src, returning the chunk and the
// resolve error (nil on success).
func resolveChunk(t *testing.T, src string) (*ast.Chunk, error) {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), 0, fset, "test.bs", []byte(src))
	require.NoError(t, err, "parse error")

	isPredeclared := func(name string) bool { return name == "env" }
	isUniversal := func(name string) bool {
		switch name {
		case "print", "len", "range", "open":
			return true
		}
		return false
	}
	_, err = resolver.ResolveFiles(context.Background(), fset, []*ast.Chunk{ch}, 0, isPredeclared, isUniversal)
	return ch, err
}

// idents collects every *ast.IdentExpr in ch whose Lit equals name, in
// visitation order.
func idents(ch *ast.Chunk, name string) []*ast.IdentExpr {
	var found []*ast.IdentExpr
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return nil
		}
		if id, ok := n.(*ast.IdentExpr); ok && id.Lit == name {
			found = append(found, id)
		}
		return visit
	}
	ast.Walk(visit, ch)
	return found
}

func bindingOf(t *testing.T, id *ast.IdentExpr) *resolver.Binding {
	t.Helper()
	bdg, ok := id.Binding.(*resolver.Binding)
	require.True(t, ok, "identifier %q has no resolver.Binding", id.Lit)
	return bdg
}

func TestResolveLocalVarDecl(t *testing.T) {
	ch, err := resolveChunk(t, `var x = 1 print(x)`)
	require.NoError(t, err)

	uses := idents(ch, "x")
	require.Len(t, uses, 2)
	decl := bindingOf(t, uses[0])
	use := bindingOf(t, uses[1])
	assert.Equal(t, resolver.Local, decl.Scope)
	assert.Same(t, decl, use)
}

func TestResolveConstIsMarkedConst(t *testing.T) {
	ch, err := resolveChunk(t, `const x = 1`)
	require.NoError(t, err)

	decl := bindingOf(t, idents(ch, "x")[0])
	assert.True(t, decl.Const)
}

func TestResolveVarRightSeesOuterBeforeShadow(t *testing.T) {
	// "var x = x" must refer to the outer/previously-declared x, not itself.
	ch, err := resolveChunk(t, `
var x = 1
if true {
	var x = x
}
`)
	require.NoError(t, err)

	uses := idents(ch, "x")
	require.Len(t, uses, 3)
	outer := bindingOf(t, uses[0])
	lhsInner := bindingOf(t, uses[1])
	rhsInner := bindingOf(t, uses[2])
	assert.Same(t, outer, rhsInner)
	assert.NotSame(t, outer, lhsInner)
}

func TestResolveUndefinedName(t *testing.T) {
	_, err := resolveChunk(t, `print(doesNotExist)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined: doesNotExist")
}

func TestResolveRedeclarationInSameBlockIsError(t *testing.T) {
	_, err := resolveChunk(t, `var x = 1 var x = 2`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestResolvePredeclaredAndUniversal(t *testing.T) {
	ch, err := resolveChunk(t, `print(env)`)
	require.NoError(t, err)

	envBdg := bindingOf(t, idents(ch, "env")[0])
	printBdg := bindingOf(t, idents(ch, "print")[0])
	assert.Equal(t, resolver.Predeclared, envBdg.Scope)
	assert.Equal(t, resolver.Universal, printBdg.Scope)
}

func TestResolveFuncDeclSupportsRecursion(t *testing.T) {
	ch, err := resolveChunk(t, `
def fact(n) {
	return 1 if n <= 1 else n * fact(n - 1)
}
`)
	require.NoError(t, err)

	uses := idents(ch, "fact")
	require.Len(t, uses, 2)
	assert.Same(t, uses[0], bindingOf(t, uses[1]).Decl)

	var decl *ast.FuncDecl
	for _, s := range ch.Block.Stmts {
		if fd, ok := s.(*ast.FuncDecl); ok {
			decl = fd
		}
	}
	require.NotNil(t, decl)
	assert.Same(t, decl.Symbol.(*resolver.Binding), bindingOf(t, uses[0]))
}

func TestResolveClosureCapturesAsFreeVar(t *testing.T) {
	ch, err := resolveChunk(t, `
def outer() {
	var total = 0
	var add = def(n) { total = total + n }
	return add
}
`)
	require.NoError(t, err)

	uses := idents(ch, "total")
	require.Len(t, uses, 3) // decl, use in closure (twice: read + write target)
	decl := bindingOf(t, uses[0])
	assert.Equal(t, resolver.Cell, decl.Scope)

	innerUse := bindingOf(t, uses[1])
	assert.Equal(t, resolver.Free, innerUse.Scope)
}

func TestResolveTaskParamsAndClauses(t *testing.T) {
	ch, err := resolveChunk(t, `
task build(mode) {
	inputs: ["src/" + mode]
	outputs: ["out/" + mode]
	do {
		print(mode)
	}
}
`)
	require.NoError(t, err)

	uses := idents(ch, "mode")
	require.Len(t, uses, 4) // param decl + 3 uses
	decl := bindingOf(t, uses[0])
	for _, u := range uses[1:] {
		assert.Same(t, decl, bindingOf(t, u))
	}
}

func TestResolveClassFieldsMethodsAndSelf(t *testing.T) {
	ch, err := resolveChunk(t, `
class Counter {
	var count = 0

	def incr() {
		self.count = self.count + 1
		return self.count
	}
}
`)
	require.NoError(t, err)

	selfUses := idents(ch, "self")
	require.NotEmpty(t, selfUses)
	for _, u := range selfUses {
		bdg := bindingOf(t, u)
		assert.Equal(t, resolver.Local, bdg.Scope)
		assert.True(t, bdg.Const)
	}
}

func TestResolveSuperOnlyBoundWhenExtends(t *testing.T) {
	ch, err := resolveChunk(t, `
class Base {
	def greet() { return "hi" }
}
class Child extends Base {
	def greet() { return super.greet() }
}
`)
	require.NoError(t, err)

	supers := idents(ch, "super")
	require.Len(t, supers, 1)
	assert.Equal(t, resolver.Local, bindingOf(t, supers[0]).Scope)
}

func TestResolveForLoopLabelAndBreak(t *testing.T) {
	ch, err := resolveChunk(t, `
::outer:: for x in range(3) {
	for y in range(3) {
		break ::outer::
	}
}
`)
	require.NoError(t, err)

	outerLabelUses := idents(ch, "outer")
	require.Len(t, outerLabelUses, 2) // label decl + break target
	decl := bindingOf(t, outerLabelUses[0])
	use := bindingOf(t, outerLabelUses[1])
	assert.Equal(t, resolver.LoopLabel, decl.Scope)
	assert.Same(t, decl, use)
}

func TestResolveBreakOutsideLoopIsError(t *testing.T) {
	_, err := resolveChunk(t, `break`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "break outside of a loop")
}

func TestResolveBareRaiseOutsideExceptIsError(t *testing.T) {
	_, err := resolveChunk(t, `raise`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not inside an except block")
}

func TestResolveBareRaiseInsideExceptIsValid(t *testing.T) {
	_, err := resolveChunk(t, `
try {
	print(1)
} except {
	raise
}
`)
	require.NoError(t, err)
}

func TestResolveWithStmtBindsAs(t *testing.T) {
	ch, err := resolveChunk(t, `
with open("f") as f {
	print(f)
}
`)
	require.NoError(t, err)

	uses := idents(ch, "f")
	require.Len(t, uses, 2)
	assert.Same(t, bindingOf(t, uses[0]), bindingOf(t, uses[1]))
}

func TestResolveMatchCaseBodyIsOwnBlock(t *testing.T) {
	ch, err := resolveChunk(t, `
match 1 {
case 1: {
	var v = 1
	print(v)
}
case 2: {
	var v = 2
	print(v)
}
}
`)
	require.NoError(t, err)

	uses := idents(ch, "v")
	require.Len(t, uses, 4)
	assert.Same(t, bindingOf(t, uses[0]), bindingOf(t, uses[1]))
	assert.Same(t, bindingOf(t, uses[2]), bindingOf(t, uses[3]))
	assert.NotSame(t, bindingOf(t, uses[0]), bindingOf(t, uses[2]))
}
