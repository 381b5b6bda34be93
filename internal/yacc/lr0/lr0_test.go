package lr0

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// buildSmallGrammar: S : A ; A : 'a' A | ;
func buildSmallGrammar(t *testing.T) *grammar.Grammar {
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
	return g
}

func Test_Build_StartStateClosureIncludesAllAItems(t *testing.T) {
	g := buildSmallGrammar(t)
	aut, err := Build(g)
	require.NoError(t, err)

	require.NotEmpty(t, aut.States)
	start := aut.States[aut.Start]
	require.Len(t, start.Kernel, 1, "start state's kernel is exactly the augmenting rule's first item")

	// Closure should have expanded into both of A's rules and S's rule.
	require.GreaterOrEqual(t, len(start.Closure), 3)
}

func Test_Build_GoToIsConsistentWithTransitions(t *testing.T) {
	g := buildSmallGrammar(t)
	aut, err := Build(g)
	require.NoError(t, err)

	for _, st := range aut.States {
		for _, tr := range st.Transitions {
			to, ok := st.GoTo(tr.Symbol)
			require.True(t, ok)
			require.Equal(t, tr.To, to)
		}
	}
}

func Test_Build_DeduplicatesIdenticalKernels(t *testing.T) {
	g := buildSmallGrammar(t)
	aut, err := Build(g)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, st := range aut.States {
		key := ""
		for _, it := range st.Kernel {
			key += string(rune(it)) + ","
		}
		require.False(t, seen[key], "two states must not share an identical kernel")
		seen[key] = true
	}
}
