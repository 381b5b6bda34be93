package lalr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// buildSmallGrammar: S : A ; A : 'a' A | ;
func buildSmallGrammar(t *testing.T) (*grammar.Grammar, *lr0.Automaton) {
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
	return g, aut
}

func Test_Compute_AugmentingRuleLooksAheadOnEnd(t *testing.T) {
	g, aut := buildSmallGrammar(t)
	la := Compute(g, aut)

	// Walk the automaton along S then $end to reach the state where the
	// augmenting rule $accept : S $end . is ready to reduce (accept).
	afterS, ok := aut.States[aut.Start].GoTo(g.Symtab.Start)
	require.True(t, ok)
	afterEnd, ok := aut.States[afterS].GoTo(symtab.EndSymbol)
	require.True(t, ok)
	acceptState := aut.States[afterEnd]

	var acceptItem grammar.Item
	found := false
	for _, it := range acceptState.Reductions {
		if g.RuleOf(it) == 0 {
			acceptItem = it
			found = true
		}
	}
	require.True(t, found, "augmenting rule must be ready to reduce once S has been shifted")

	terms := Terminals(la.LAFor(acceptState.ID, acceptItem))
	require.Equal(t, []symtab.Index{symtab.EndSymbol}, terms)
}

func Test_Compute_NullableRuleLookaheadIncludesEnd(t *testing.T) {
	g, aut := buildSmallGrammar(t)
	la := Compute(g, aut)

	// In the start state's closure, A -> . (the empty alternative) is a
	// reduce item with dot at position 0. Its lookahead must include $end,
	// since S : A . and A nullable means $end can follow A directly.
	start := aut.States[aut.Start]
	for _, it := range start.Reductions {
		if g.RuleOf(it) != 0 {
			set := la.LAFor(start.ID, it)
			terms := Terminals(set)
			hasEnd := false
			for _, sym := range terms {
				if sym == symtab.EndSymbol {
					hasEnd = true
				}
			}
			require.True(t, hasEnd, "nullable A's empty reduction must be able to look ahead to $end")
		}
	}
}

func Test_Terminals_ReturnsSortedElements(t *testing.T) {
	g, aut := buildSmallGrammar(t)
	la := Compute(g, aut)

	start := aut.States[aut.Start]
	for _, it := range start.Reductions {
		set := la.LAFor(start.ID, it)
		terms := Terminals(set)
		for i := 1; i < len(terms); i++ {
			require.Less(t, terms[i-1], terms[i])
		}
	}
}
