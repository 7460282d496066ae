package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/scanner"
	"github.com/klang/buildscript/lang/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value, []string) {
	t.Helper()

	fs := token.NewFileSet()
	f := fs.AddFile("test.bs", -1, len(src))

	var (
		s       scanner.Scanner
		toks    []token.Token
		vals    []token.Value
		errMsgs []string
	)
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errMsgs = append(errMsgs, msg)
	})
	for {
		var v token.Value
		tok := s.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, errMsgs
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, vals, errs := scanAll(t, "task build inputs outputs myVar")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.TASK, token.IDENT, token.IDENT, token.IDENT, token.IDENT, token.EOF}, toks)
	require.Equal(t, "inputs", vals[2].Raw)
	require.Equal(t, "myVar", vals[4].Raw)
}

func TestScanNumbers(t *testing.T) {
	toks, vals, errs := scanAll(t, "42 3.14 0x1F 0b101")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.INT, token.FLOAT, token.INT, token.INT, token.EOF}, toks)
	require.EqualValues(t, 42, vals[0].Int)
	require.InDelta(t, 3.14, vals[1].Float, 0.0001)
	require.EqualValues(t, 0x1F, vals[2].Int)
	require.EqualValues(t, 0b101, vals[3].Int)
}

func TestScanStringEscapes(t *testing.T) {
	toks, vals, errs := scanAll(t, `"hello\nworld"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	require.Equal(t, "hello\nworld", vals[0].String)
}

func TestScanInterpolation(t *testing.T) {
	toks, vals, errs := scanAll(t, `"sum: ${1 + 2} done"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	require.Len(t, vals[0].InterpRanges, 1)
	r := vals[0].InterpRanges[0]
	raw := vals[0].Raw
	require.Equal(t, "1 + 2", raw[r.Begin:r.End])
}

func TestScanOperators(t *testing.T) {
	toks, _, errs := scanAll(t, "+= -= == != <= >= => <<= >>=")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.PLUS_EQ, token.MINUS_EQ, token.EQL, token.NEQ,
		token.LE, token.GE, token.ARROW, token.SHL_EQ, token.SHR_EQ, token.EOF,
	}, toks)
}

func TestScanComment(t *testing.T) {
	toks, vals, errs := scanAll(t, "# a comment\nx")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.COMMENT, token.EOL, token.IDENT, token.EOF}, toks)
	require.Equal(t, " a comment", vals[0].String)
}

func TestScanIllegalBang(t *testing.T) {
	_, _, errs := scanAll(t, "x ! y")
	require.NotEmpty(t, errs)
}
