package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	lx := New(strings.NewReader(src))
	var toks []Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func Test_Lexer_Directives(t *testing.T) {
	toks := allTokens(t, "%token %left %start %%")
	require.Equal(t, []Kind{Token, Left, Start, Mark, EOF}, kinds(toks))
}

func Test_Lexer_IdentifiersAndNumbers(t *testing.T) {
	toks := allTokens(t, "expr NUM 42")
	require.Equal(t, []Kind{Ident, Ident, Number, EOF}, kinds(toks))
	require.Equal(t, "42", toks[2].Text)
}

func Test_Lexer_ActionBraceBalancing(t *testing.T) {
	toks := allTokens(t, `{ if (x == '}') { y = "}"; } }`)
	require.Equal(t, []Kind{Action, EOF}, kinds(toks))
}

func Test_Lexer_SkipsComments(t *testing.T) {
	toks := allTokens(t, "expr /* a comment */ // line comment\nNUM")
	require.Equal(t, []Kind{Ident, Ident, EOF}, kinds(toks))
}

func Test_Lexer_PercentBracedCodeBlock(t *testing.T) {
	toks := allTokens(t, "%{ package main %}")
	require.Equal(t, []Kind{Code, EOF}, kinds(toks))
	require.Contains(t, toks[0].Text, "package main")
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}
