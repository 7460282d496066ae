package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestLookupKw(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok > kwStart && tok < kwEnd
		val := LookupKw(tok.String())
		if expect {
			require.Equal(t, tok, val)
		} else {
			require.Equal(t, IDENT, val)
		}
	}
}

func TestLookupPunct(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok > punctStart && tok < punctEnd
		val := LookupPunct(tok.String())
		if expect {
			require.Equal(t, tok, val)
		} else {
			require.Equal(t, ILLEGAL, val)
		}
	}
}

func TestContextualKeyword(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok > ctxStart && tok < ctxEnd
		got, ok := ContextualKeyword(tok.String())
		require.Equal(t, expect, ok)
		if expect {
			require.Equal(t, tok, got)
		}
	}
}

func TestIsAugBinop(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok > augopStart && tok < augopEnd
		require.Equal(t, expect, tok.IsAugBinop())
	}
}

func TestIsBinop(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		maybe := (tok > punctStart && tok < punctEnd && !tok.IsAugBinop()) ||
			tok == AND || tok == OR || tok == IN || tok == IS
		got := tok.IsBinop()
		if !maybe {
			require.False(t, got, "%s should not be a binop", tok)
		}
	}
}

func TestIsUnop(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		maybe := tok == PLUS || tok == MINUS || tok == TILDE || tok == NOT || tok == TRY || tok == MUST
		got := tok.IsUnop()
		require.Equal(t, maybe, got)
	}
}

func TestIsAtom(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		maybe := (tok > litStart && tok < litEnd) || tok == NONE || tok == TRUE || tok == FALSE ||
			tok == SELF || tok == SUPER
		got := tok.IsAtom()
		require.Equal(t, maybe, got)
	}
}

func TestLiteral(t *testing.T) {
	val := Value{
		Raw:    "ident",
		String: "string",
		Int:    1,
		Float:  2,
	}

	require.Equal(t, val.Raw, IDENT.Literal(val))
	require.Equal(t, `"string"`, STRING.Literal(val))
	require.Equal(t, val.String, COMMENT.Literal(val))
	require.Equal(t, "1", INT.Literal(val))
	require.Equal(t, "2", FLOAT.Literal(val))
	require.Equal(t, "", ILLEGAL.Literal(val))
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'and'", AND.GoString())
	require.Equal(t, "'inputs'", INPUTS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}
