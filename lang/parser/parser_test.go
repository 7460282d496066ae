package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/parser"
	"github.com/klang/buildscript/lang/token"
)

func parseChunk(t *testing.T, src string) (*ast.Chunk, error) {
	t.Helper()
	fs := token.NewFileSet()
	return parser.ParseChunk(context.Background(), 0, fs, "test.bs", []byte(src))
}

func requireOneStmt(t *testing.T, src string) ast.Stmt {
	t.Helper()
	chunk, err := parseChunk(t, src)
	require.NoError(t, err)
	require.Len(t, chunk.Block.Stmts, 1)
	return chunk.Block.Stmts[0]
}

func TestParseVarDecl(t *testing.T) {
	stmt := requireOneStmt(t, "var x = 1")
	d, ok := stmt.(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, token.VAR, d.DeclType)
	require.Len(t, d.Left, 1)
	require.Equal(t, "x", d.Left[0].Lit)
	require.Len(t, d.Right, 1)
	lit, ok := d.Right[0].(*ast.LiteralExpr)
	require.True(t, ok)
	require.EqualValues(t, 1, lit.Value)
}

func TestParseMultiAssignVarDecl(t *testing.T) {
	stmt := requireOneStmt(t, "const a, b = 1, 2")
	d, ok := stmt.(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, token.CONST, d.DeclType)
	require.Len(t, d.Left, 2)
	require.Len(t, d.Right, 2)
}

func TestParseBinopPrecedence(t *testing.T) {
	stmt := requireOneStmt(t, "var x = 1 + 2 * 3")
	d := stmt.(*ast.VarDecl)
	bin, ok := d.Right[0].(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Type)
	_, leftIsLit := bin.Left.(*ast.LiteralExpr)
	require.True(t, leftIsLit)
	rightMul, ok := bin.Right.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.STAR, rightMul.Type)
}

func TestParseTernary(t *testing.T) {
	stmt := requireOneStmt(t, "var x = 1 if cond else 2")
	d := stmt.(*ast.VarDecl)
	tern, ok := d.Right[0].(*ast.TernaryExpr)
	require.True(t, ok)
	require.NotNil(t, tern.Then)
	require.NotNil(t, tern.Cond)
	require.NotNil(t, tern.Alt)
}

func TestParseUnaryAndLogic(t *testing.T) {
	stmt := requireOneStmt(t, "var x = not a and b or not c")
	d := stmt.(*ast.VarDecl)
	or, ok := d.Right[0].(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.OR, or.Type)
}

func TestParseCallChain(t *testing.T) {
	stmt := requireOneStmt(t, "foo.bar(1, 2)[0]")
	exprStmt, ok := stmt.(*ast.ExprStmt)
	require.True(t, ok)
	idx, ok := exprStmt.Expr.(*ast.IndexExpr)
	require.True(t, ok)
	call, ok := idx.Prefix.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	dot, ok := call.Fn.(*ast.DotExpr)
	require.True(t, ok)
	require.Equal(t, "bar", dot.Right.Lit)
}

func TestParseArrayAndMapLiterals(t *testing.T) {
	stmt := requireOneStmt(t, `var x = [1, 2, {"a": 3}]`)
	d := stmt.(*ast.VarDecl)
	arr, ok := d.Right[0].(*ast.ArrayExpr)
	require.True(t, ok)
	require.Len(t, arr.Items, 3)
	m, ok := arr.Items[2].(*ast.MapExpr)
	require.True(t, ok)
	require.Len(t, m.Items, 1)
}

func TestParseStringInterpolation(t *testing.T) {
	stmt := requireOneStmt(t, `var x = "sum: ${1 + 2} done"`)
	d := stmt.(*ast.VarDecl)
	interp, ok := d.Right[0].(*ast.InterpStringExpr)
	require.True(t, ok)
	require.Len(t, interp.Parts, 3)
	require.IsType(t, &ast.LiteralExpr{}, interp.Parts[0])
	require.IsType(t, &ast.BinOpExpr{}, interp.Parts[1])
	require.IsType(t, &ast.LiteralExpr{}, interp.Parts[2])
}

func TestParseIfElseIf(t *testing.T) {
	stmt := requireOneStmt(t, `if a { pass } else if b { pass } else { pass }`)
	s, ok := stmt.(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, s.False)
	require.Len(t, s.False.Stmts, 1)
	nested, ok := s.False.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, nested.False)
}

func TestParseForWithLabelAndBreak(t *testing.T) {
	stmt := requireOneStmt(t, `::outer:: for x in items { break ::outer:: }`)
	s, ok := stmt.(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, s.Label)
	require.Equal(t, "outer", s.Label.Name.Lit)
	require.Len(t, s.Body.Stmts, 1)
	brk, ok := s.Body.Stmts[0].(*ast.BreakStmt)
	require.True(t, ok)
	require.NotNil(t, brk.Label)
	require.Equal(t, "outer", brk.Label.Lit)
}

func TestParseWhileStmt(t *testing.T) {
	stmt := requireOneStmt(t, `while x < 10 { x = x + 1 }`)
	s, ok := stmt.(*ast.WhileStmt)
	require.True(t, ok)
	require.Nil(t, s.Label)
	require.Len(t, s.Body.Stmts, 1)
}

func TestParseMatchStmt(t *testing.T) {
	stmt := requireOneStmt(t, `match x { case 1, 2: { pass } default: { pass } }`)
	s, ok := stmt.(*ast.MatchStmt)
	require.True(t, ok)
	require.Len(t, s.Cases, 2)
	require.Len(t, s.Cases[0].Patterns, 2)
	require.True(t, s.Cases[1].IsDefault)
}

func TestParseTryExceptFinally(t *testing.T) {
	stmt := requireOneStmt(t, `try { pass } except ValueError as e { pass } finally { pass }`)
	s, ok := stmt.(*ast.TryStmt)
	require.True(t, ok)
	require.Len(t, s.Excepts, 1)
	require.NotNil(t, s.Excepts[0].Pattern)
	require.Equal(t, "e", s.Excepts[0].As.Lit)
	require.NotNil(t, s.Finally)
}

func TestParseWithStmt(t *testing.T) {
	stmt := requireOneStmt(t, `with open("f") as fh { pass }`)
	s, ok := stmt.(*ast.WithStmt)
	require.True(t, ok)
	require.Equal(t, "fh", s.As.Lit)
}

func TestParseAssignAndAugAssign(t *testing.T) {
	stmt := requireOneStmt(t, `a, b = 1, 2`)
	s, ok := stmt.(*ast.AssignStmt)
	require.True(t, ok)
	require.Len(t, s.Left, 2)
	require.Len(t, s.Right, 2)

	stmt2 := requireOneStmt(t, `x += 1`)
	s2, ok := stmt2.(*ast.AssignStmt)
	require.True(t, ok)
	require.Equal(t, token.PLUS_EQ, s2.Op)
}

func TestParseFuncDecl(t *testing.T) {
	stmt := requireOneStmt(t, `def add(a, b = 1, ...rest) { return a + b }`)
	d, ok := stmt.(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "add", d.Name.Lit)
	require.Len(t, d.Sig.Params, 3)
	require.NotNil(t, d.Sig.Params[1].Default)
	require.NotZero(t, d.Sig.DotDotDot)
}

func TestParseTaskDecl(t *testing.T) {
	src := `
task build(target) {
	inputs: ["a.go", "b.go"]
	outputs: out
	dependsOn: [other]
	from: baseDir
	doFirst { pass }
	do { pass }
	doLast { pass }
}
`
	stmt := requireOneStmt(t, src)
	d, ok := stmt.(*ast.TaskDecl)
	require.True(t, ok)
	require.Equal(t, "build", d.Name.Lit)
	require.Len(t, d.Sig.Params, 1)
	require.Len(t, d.Inputs, 2)
	require.Len(t, d.Outputs, 1)
	require.Len(t, d.DependsOn, 1)
	require.NotNil(t, d.From)
	require.NotNil(t, d.DoFirst)
	require.NotNil(t, d.Do)
	require.NotNil(t, d.DoLast)
}

func TestParseTaskContextualKeywordsAreIdentsOutsideTask(t *testing.T) {
	stmt := requireOneStmt(t, `var inputs = 1`)
	d, ok := stmt.(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "inputs", d.Left[0].Lit)
}

func TestParseClassDecl(t *testing.T) {
	src := `
class Widget extends Base {
	var size = 1
	def resize(n) { size = n }
	get area { return size * size }
	set area(n) { size = n }
}
`
	stmt := requireOneStmt(t, src)
	d, ok := stmt.(*ast.ClassDecl)
	require.True(t, ok)
	require.Equal(t, "Widget", d.Name.Lit)
	require.NotNil(t, d.Extends)
	require.Len(t, d.Fields, 1)
	require.Len(t, d.Methods, 1)
	require.Len(t, d.Props, 2)
}

func TestParseClosureExpr(t *testing.T) {
	stmt := requireOneStmt(t, `var f = def(x) { return x }`)
	d := stmt.(*ast.VarDecl)
	cl, ok := d.Right[0].(*ast.ClosureExpr)
	require.True(t, ok)
	require.Len(t, cl.Sig.Params, 1)
}

func TestParseImportExportDecl(t *testing.T) {
	stmt := requireOneStmt(t, `import "std/io" as io`)
	d, ok := stmt.(*ast.ImportDecl)
	require.True(t, ok)
	require.Equal(t, "io", d.Alias.Lit)

	stmt2 := requireOneStmt(t, `export def f() { pass }`)
	d2, ok := stmt2.(*ast.ExportDecl)
	require.True(t, ok)
	require.IsType(t, &ast.FuncDecl{}, d2.Decl)
}

func TestParseAssertRaiseReturnPass(t *testing.T) {
	chunk, err := parseChunk(t, `
def f() {
	assert x > 0, "must be positive"
	pass
	if x > 0 { raise ValueError("bad") }
	return 1
}
`)
	require.NoError(t, err)
	require.Len(t, chunk.Block.Stmts, 1)
	body := chunk.Block.Stmts[0].(*ast.FuncDecl).Body.Stmts
	require.Len(t, body, 4)
	assert, ok := body[0].(*ast.AssertStmt)
	require.True(t, ok)
	require.NotNil(t, assert.Msg)
	require.IsType(t, &ast.PassStmt{}, body[1])
	require.IsType(t, &ast.RaiseStmt{}, body[2].(*ast.IfStmt).True.Stmts[0])
	require.IsType(t, &ast.ReturnStmt{}, body[3])
}

func TestParseErrorRecoverySynchronizes(t *testing.T) {
	chunk, err := parseChunk(t, `
var x = 1
assert )
pass
`)
	require.Error(t, err)
	require.Len(t, chunk.Block.Stmts, 3)
	require.IsType(t, &ast.VarDecl{}, chunk.Block.Stmts[0])
	require.IsType(t, &ast.BadStmt{}, chunk.Block.Stmts[1])
	require.IsType(t, &ast.PassStmt{}, chunk.Block.Stmts[2])
}

func TestParseSelfSuper(t *testing.T) {
	stmt := requireOneStmt(t, `self.value = super.compute()`)
	s, ok := stmt.(*ast.AssignStmt)
	require.True(t, ok)
	dot, ok := s.Left[0].(*ast.DotExpr)
	require.True(t, ok)
	ident, ok := dot.Left.(*ast.IdentExpr)
	require.True(t, ok)
	require.Equal(t, "self", ident.Lit)
}
