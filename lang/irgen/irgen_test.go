package irgen_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/irgen"
	"github.com/klang/buildscript/lang/parser"
	"github.com/klang/buildscript/lang/resolver"
	"github.com/klang/buildscript/lang/token"
)

// isUniversal reports the handful of built-ins and free names the test
// sources below reference without declaring locally.
func isUniversal(name string) bool {
	switch name {
	case "print", "len", "open", "items", "Base", "ValueError":
		return true
	}
	return false
}

// generate parses, resolves and lowers src to IR, returning one code unit
// per function-like scope (the chunk itself first).
func generate(t *testing.T, src string) []*ir.CodeBlock {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), 0, fset, "test.bs", []byte(src))
	require.NoError(t, err, "parse error")

	functions, err := resolver.ResolveFiles(context.Background(), fset, []*ast.Chunk{ch}, 0, nil, isUniversal)
	require.NoError(t, err, "resolve error")

	return irgen.Generate([]*ast.Chunk{ch}, functions)
}

// dump renders every code unit with lang/ir.Dump, concatenated in order.
func dump(t *testing.T, codes []*ir.CodeBlock) string {
	t.Helper()
	var buf bytes.Buffer
	for _, code := range codes {
		require.NoError(t, ir.Dump(&buf, code))
	}
	return buf.String()
}

func TestGenerateVarDeclAndReturn(t *testing.T) {
	codes := generate(t, `var x = 1 return x`)
	require.Len(t, codes, 1)
	out := dump(t, codes)
	require.Contains(t, out, "LOADCONST")
	require.Contains(t, out, "RETURN")
}

func TestGenerateIfStmtBranches(t *testing.T) {
	codes := generate(t, `
var x = 1
if x > 0 { x = 2 } else { x = 3 }
`)
	out := dump(t, codes)
	require.Contains(t, out, "if.then:")
	require.Contains(t, out, "if.else:")
	require.Contains(t, out, "if.join:")
}

func TestGenerateIfWithoutElseReusesJoinBlock(t *testing.T) {
	codes := generate(t, `
var x = 1
if x > 0 { x = 2 }
`)
	out := dump(t, codes)
	require.Contains(t, out, "if.then:")
	require.NotContains(t, out, "if.else:")
	require.Contains(t, out, "if.join:")
}

func TestGenerateWhileLoop(t *testing.T) {
	codes := generate(t, `var x = 0 while x < 10 { x += 1 }`)
	out := dump(t, codes)
	require.Contains(t, out, "while.header:")
	require.Contains(t, out, "while.body:")
	require.Contains(t, out, "while.join:")
}

func TestGenerateForLoopUsesIteratorProtocol(t *testing.T) {
	codes := generate(t, `for x in items { print(x) }`)
	out := dump(t, codes)
	require.Contains(t, out, "for.header:")
	require.Contains(t, out, "for.body:")
	require.Contains(t, out, "INVOKE")
	require.Contains(t, out, ".iterate(0 args)")
	require.Contains(t, out, ".hasNext(0 args)")
	require.Contains(t, out, ".next(0 args)")
}

func TestGenerateForLoopMultiVarDestructures(t *testing.T) {
	codes := generate(t, `for k, v in items { print(k) print(v) }`)
	out := dump(t, codes)
	require.Contains(t, out, "GETSUBSCRIPT")
}

func TestGenerateLabeledBreakContinue(t *testing.T) {
	codes := generate(t, `
::outer:: while true {
	while true {
		if true { break ::outer:: }
		continue ::outer::
	}
}
`)
	require.NotPanics(t, func() { dump(t, codes) })
}

func TestGenerateMatchJumpTableForIntPatterns(t *testing.T) {
	codes := generate(t, `
var x = 1
match x {
case 1, 2: { pass }
default: { pass }
}
`)
	out := dump(t, codes)
	require.Contains(t, out, "JUMPTABLE")
	require.NotContains(t, out, "match.test:")
}

func TestGenerateMatchChainForNonIntPatterns(t *testing.T) {
	codes := generate(t, `
var x = "a"
match x {
case "a", "b": { pass }
default: { pass }
}
`)
	out := dump(t, codes)
	require.NotContains(t, out, "JUMPTABLE")
	require.Contains(t, out, "match.case:")
}

func TestGenerateTryExceptFinally(t *testing.T) {
	codes := generate(t, `
try {
	raise ValueError("bad")
} except ValueError as e {
	print(e)
} finally {
	print("done")
}
`)
	out := dump(t, codes)
	require.Contains(t, out, "try.begin:")
	require.Contains(t, out, "try.except:")
	require.Contains(t, out, "try.join:")
	require.Contains(t, out, "RAISE")
}

func TestGenerateWithStmtClosesOnNormalExit(t *testing.T) {
	codes := generate(t, `with open("f") as fh { print(fh) }`)
	out := dump(t, codes)
	require.Contains(t, out, "INVOKE")
	require.Contains(t, out, ".close(0 args)")
}

func TestGenerateTernary(t *testing.T) {
	codes := generate(t, `var x = 1 if true else 2`)
	out := dump(t, codes)
	require.Contains(t, out, "ternary.then:")
	require.Contains(t, out, "ternary.else:")
	require.Contains(t, out, "ternary.join:")
	require.Contains(t, out, "SELECT")
}

func TestGenerateLogicalShortCircuit(t *testing.T) {
	codes := generate(t, `var a = true var b = false var x = a and b`)
	out := dump(t, codes)
	require.Contains(t, out, "logic.rhs:")
	require.Contains(t, out, "logic.join:")
}

func TestGenerateUnaryOperators(t *testing.T) {
	codes := generate(t, `
var a = -1
var b = not true
var c = ~1
var d = must a
`)
	out := dump(t, codes)
	require.Contains(t, out, "UNARY -")
	require.Contains(t, out, "UNARY not")
	require.Contains(t, out, "BINARY")
	require.Contains(t, out, " ^ ")
	require.Contains(t, out, "ASSERT")
}

func TestGenerateCompoundAssignReadsBeforeWriting(t *testing.T) {
	codes := generate(t, `var x = 1 x += 2`)
	out := dump(t, codes)
	require.Contains(t, out, "BINARY")
	require.Contains(t, out, " + ")
}

func TestGenerateFuncDeclBuildsSeparateCodeUnit(t *testing.T) {
	codes := generate(t, `
def add(a, b) { return a + b }
var s = add(1, 2)
`)
	require.Len(t, codes, 2)
	names := []string{codes[0].Name, codes[1].Name}
	require.Contains(t, names, "add")
	out := dump(t, codes)
	require.Contains(t, out, "MAKECLOSURE")
}

func TestGenerateRecursiveFuncTiesTheKnot(t *testing.T) {
	codes := generate(t, `
def fact(n) {
	if n <= 1 { return 1 }
	return n * fact(n - 1)
}
`)
	require.Len(t, codes, 2)
	// the recursive call must be present in fact's own body
	var factCode *ir.CodeBlock
	for _, c := range codes {
		if c.Name == "fact" {
			factCode = c
		}
	}
	require.NotNil(t, factCode)
	var buf bytes.Buffer
	require.NoError(t, ir.Dump(&buf, factCode))
	require.Contains(t, buf.String(), "CALL")
}

func TestGenerateTaskDeclRunsActionBlocksInOrder(t *testing.T) {
	codes := generate(t, `
task build(target) {
	doFirst { print("first") }
	do { print("do") }
	doLast { print("last") }
}
`)
	require.Len(t, codes, 2)
	names := []string{codes[0].Name, codes[1].Name}
	require.Contains(t, names, "build")
	out := dump(t, codes)
	require.Equal(t, 1, strings.Count(out, `"first"`))
	require.Equal(t, 1, strings.Count(out, `"do"`))
	require.Equal(t, 1, strings.Count(out, `"last"`))
}

func TestGenerateClassDeclBuildsDescriptorMap(t *testing.T) {
	codes := generate(t, `
class Widget extends Base {
	var size = 1
	def resize(n) { size = n }
	get area { return size * size }
	set area(n) { size = n }
}
`)
	// one unit for the chunk, one for the class body, one per method/accessor
	require.GreaterOrEqual(t, len(codes), 3)
	out := dump(t, codes)
	require.Contains(t, out, `"fields"`)
	require.Contains(t, out, `"methods"`)
	require.Contains(t, out, `"props"`)
	require.Contains(t, out, `"get"`)
	require.Contains(t, out, `"set"`)
}

func TestGenerateImportExport(t *testing.T) {
	codes := generate(t, `
import "std/io" as io
export var x = 1
`)
	out := dump(t, codes)
	require.Contains(t, out, "IMPORT")
	require.Contains(t, out, "EXPORT")
}

func TestGenerateDotAndIndexAssignTargets(t *testing.T) {
	codes := generate(t, `
var obj = {}
obj.field = 1
obj["key"] = 2
`)
	out := dump(t, codes)
	require.Contains(t, out, "SETMEMBER")
	require.Contains(t, out, "SETSUBSCRIPT")
}

func TestGenerateClosureExprCapturesEnclosingLocal(t *testing.T) {
	codes := generate(t, `
var x = 1
var f = def() { return x }
`)
	require.Len(t, codes, 2)
	out := dump(t, codes)
	require.Contains(t, out, "MAKECLOSURE")
}
