package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestLex_Operators(t *testing.T) {
	tokens, err := Lex(`a == 1 && b != 2 || !(c >= 3)`)
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenEq, TokenInt, TokenAnd,
		TokenIdent, TokenNe, TokenInt, TokenOr,
		TokenNot, TokenLParen, TokenIdent, TokenGe, TokenInt, TokenRParen,
		TokenEOF,
	}, kinds(tokens))
}

func TestLex_WordOperators(t *testing.T) {
	symbolic, err := Lex(`price > 10 && active == true`)
	require.NoError(t, err)
	wordy, err2 := Lex(`price GT 10 AND active EQ true`)
	require.NoError(t, err2)
	assert.Equal(t, kinds(symbolic), kinds(wordy), "word forms lex to the same kinds")
}

func TestLex_DottedPath(t *testing.T) {
	tokens, err := Lex(`origin.city == 'Oslo'`)
	require.NoError(t, err)
	require.Equal(t, TokenIdent, tokens[0].Kind)
	assert.Equal(t, "origin.city", tokens[0].Text)
}

func TestLex_StringEscapes(t *testing.T) {
	tokens, err := Lex(`'it\'s' "a \"b\"" 'line\nbreak'`)
	require.NoError(t, err)
	assert.Equal(t, "it's", tokens[0].Text)
	assert.Equal(t, `a "b"`, tokens[1].Text)
	assert.Equal(t, "line\nbreak", tokens[2].Text)
}

func TestLex_Numbers(t *testing.T) {
	tokens, err := Lex(`42 3.25 1e3 2.5E-2`)
	require.NoError(t, err)
	assert.Equal(t, TokenInt, tokens[0].Kind)
	assert.Equal(t, TokenFloat, tokens[1].Kind)
	assert.Equal(t, TokenFloat, tokens[2].Kind)
	assert.Equal(t, TokenFloat, tokens[3].Kind)
}

func TestLex_Offsets(t *testing.T) {
	tokens, err := Lex(`name == 'x'`)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens[0].Offset)
	assert.Equal(t, 5, tokens[1].Offset)
	assert.Equal(t, 8, tokens[2].Offset)
}

func TestLex_Errors(t *testing.T) {
	cases := map[string]string{
		`a = 1`:      "unexpected '='",
		`a & b`:      "unexpected '&'",
		`a | b`:      "unexpected '|'",
		`'open`:      "unterminated string",
		`1.`:         "digit required after decimal point",
		`1e`:         "digit required in exponent",
		`'bad \q'`:   "invalid escape",
		"a == \x23b": "unexpected character",
	}
	for src, want := range cases {
		_, err := Lex(src)
		require.Error(t, err, "input %q", src)
		assert.Contains(t, err.Error(), want, "input %q", src)

		var syn *SyntaxError
		assert.ErrorAs(t, err, &syn, "lex errors are SyntaxErrors")
	}
}
