package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
%{
package generated
%}
%token NUM
%left '+'
%start expr
%%
expr : expr '+' expr { $$ = $1 + $3 }
     | NUM
     ;
%%
// epilogue code
`

func Test_Read_ParsesDeclarationsAndRules(t *testing.T) {
	res, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Contains(t, res.Prologue, "package generated")
	assert.Contains(t, res.Epilogue, "epilogue code")
	assert.Len(t, res.Rules, 2)

	_, ok := res.Symtab.Lookup("NUM")
	assert.True(t, ok)
}

func Test_Read_MidRuleActionDesugarsToSyntheticRule(t *testing.T) {
	const src = `
%token NUM
%%
expr : NUM { first() } NUM { second() }
     ;
%%
`
	res, err := Read(strings.NewReader(src))
	require.NoError(t, err)

	// The first action is mid-rule and spawns a synthetic nonterminal rule;
	// the second ends the alternative and stays expr's own action. That is
	// the synthetic rule plus the original expr rule: 2 total.
	require.Len(t, res.Rules, 2)

	var exprRule *RawRule
	for i := range res.Rules {
		if res.Rules[i].LHS == "expr" {
			exprRule = &res.Rules[i]
		}
	}
	require.NotNil(t, exprRule)
	assert.Equal(t, []string{"NUM", "$$1", "NUM"}, exprRule.RHS)
}

func Test_Read_ExpectDirectives(t *testing.T) {
	const src = `
%token NUM
%expect 2
%expect-rr 1
%%
expr : NUM ;
%%
`
	res, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExpectSR)
	assert.Equal(t, 1, res.ExpectRR)
}

func Test_Read_MissingSemicolonFails(t *testing.T) {
	const src = `
%token NUM
%%
expr : NUM
%%
`
	_, err := Read(strings.NewReader(src))
	assert.Error(t, err)
}
