package pack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlama/yacc/internal/yacc/action"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lalr"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// buildSmallGrammar: S : A ; A : 'a' A | ;
func buildSmallGrammar(t *testing.T) (*grammar.Grammar, *lr0.Automaton, *action.Table) {
	t.Helper()
	tab := symtab.New()
	require.NoError(t, tab.DeclareToken("a", nil))
	require.NoError(t, tab.DeclareNonterminal("S"))
	require.NoError(t, tab.DeclareNonterminal("A"))
	tab.SetStart("S")

	frozen, err := tab.Finalize()
	require.NoError(t, err)

	aIdx, _ := frozen.ByName("a")
	sIdx, _ := frozen.ByName("S")
	nIdx, _ := frozen.ByName("A")

	rules := []grammar.Rule{
		{LHS: sIdx, RHS: []symtab.Index{nIdx}},
		{LHS: nIdx, RHS: []symtab.Index{aIdx, nIdx}},
		{LHS: nIdx, RHS: nil},
	}
	g, err := grammar.Build(frozen, rules)
	require.NoError(t, err)

	aut, err := lr0.Build(g)
	require.NoError(t, err)

	la := lalr.Compute(g, aut)
	act, err := action.Build(g, aut, la, -1, -1, nil)
	require.NoError(t, err)

	return g, aut, act
}

func Test_Build_PackedLookupMatchesActionTable(t *testing.T) {
	g, aut, act := buildSmallGrammar(t)
	pk := Build(g, aut, act)

	for _, row := range act.Rows {
		for sym, e := range row.Entries {
			code, found := pk.Lookup(int(row.State), sym)
			require.True(t, found, "packed lookup must find every explicit entry")
			require.Equal(t, entryCode(e), code)
		}
	}
}

func Test_Build_FallsBackToDefaultOnMiss(t *testing.T) {
	g, aut, act := buildSmallGrammar(t)
	pk := Build(g, aut, act)

	for _, row := range act.Rows {
		if !row.HasDefault {
			continue
		}
		// A symbol index guaranteed not to appear in this row's explicit
		// entries (the domain is tiny in this grammar).
		code, found := pk.Lookup(int(row.State), symtab.Index(9999))
		require.True(t, found)
		require.Equal(t, -int(row.Default)-1, code)
	}
}

func Test_Build_GotoLookupMatchesAutomatonTransitions(t *testing.T) {
	g, aut, act := buildSmallGrammar(t)
	pk := Build(g, aut, act)
	nTokens := int(g.Symtab.NTokens)

	for _, st := range aut.States {
		for _, tr := range st.Transitions {
			if int(tr.Symbol) < nTokens {
				continue
			}
			next, found := pk.GotoLookup(int(st.ID), int(tr.Symbol)-nTokens)
			require.True(t, found, "goto lookup must find every nonterminal transition")
			require.Equal(t, int(tr.To), next)
		}
	}
}

func Test_Build_GotoLookupMissReturnsFalse(t *testing.T) {
	g, aut, act := buildSmallGrammar(t)
	pk := Build(g, aut, act)

	_, found := pk.GotoLookup(int(aut.States[0].ID), 9999)
	require.False(t, found)
}

func Test_Build_RuleMetadataMatchesGrammar(t *testing.T) {
	g, aut, act := buildSmallGrammar(t)
	pk := Build(g, aut, act)
	nTokens := int(g.Symtab.NTokens)

	require.Equal(t, -1, pk.RuleLHS[0])
	for i, r := range g.Rules {
		require.Equal(t, len(r.RHS), pk.RuleLen[i])
		if i == 0 {
			continue
		}
		require.Equal(t, int(r.LHS)-nTokens, pk.RuleLHS[i])
	}
}

func Test_EntryCode_EncodesShiftAndReduce(t *testing.T) {
	require.Equal(t, 5, entryCode(action.Entry{Kind: action.Shift, Next: 4}))
	require.Equal(t, -3, entryCode(action.Entry{Kind: action.Reduce, Rule: 2}))
	require.Equal(t, -1, entryCode(action.Entry{Kind: action.Accept}))
	require.Equal(t, 0, entryCode(action.Entry{Kind: action.Error}))
}
