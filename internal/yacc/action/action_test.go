package action

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlama/yacc/internal/yacc/diag"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lalr"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// buildExprGrammar builds: expr : expr '+' expr | NUM ; with '+' left-assoc,
// so the dangling shift/reduce ambiguity on '+' is fully resolved by
// precedence with zero conflicts left over.
func buildExprGrammar(t *testing.T) (*grammar.Grammar, *lr0.Automaton, *lalr.Tables) {
	t.Helper()
	tab := symtab.New()
	require.NoError(t, tab.DeclareToken("NUM", nil))
	require.NoError(t, tab.DeclareToken("+", nil))
	require.NoError(t, tab.SetPrecedence("+", 1, symtab.Left))
	require.NoError(t, tab.DeclareNonterminal("expr"))
	tab.SetStart("expr")

	frozen, err := tab.Finalize()
	require.NoError(t, err)

	numIdx, _ := frozen.ByName("NUM")
	plusIdx, _ := frozen.ByName("+")
	exprIdx, _ := frozen.ByName("expr")
	plusSym := frozen.Symbols[plusIdx]

	rules := []grammar.Rule{
		{LHS: exprIdx, RHS: []symtab.Index{exprIdx, plusIdx, exprIdx}, Precedence: plusSym.Precedence, Assoc: plusSym.Assoc},
		{LHS: exprIdx, RHS: []symtab.Index{numIdx}},
	}
	g, err := grammar.Build(frozen, rules)
	require.NoError(t, err)

	aut, err := lr0.Build(g)
	require.NoError(t, err)

	la := lalr.Compute(g, aut)
	return g, aut, la
}

func Test_Build_PrecedenceEliminatesShiftReduceConflict(t *testing.T) {
	g, aut, la := buildExprGrammar(t)

	tbl, err := Build(g, aut, la, -1, -1, nil)
	require.NoError(t, err)
	require.Empty(t, tbl.Conflicts, "left-associative '+' should settle every shift/reduce tie without leaving a conflict")
}

func Test_Build_ExpectMismatchFails(t *testing.T) {
	g, aut, la := buildExprGrammar(t)

	_, err := Build(g, aut, la, 1, -1, nil)
	require.Error(t, err, "expecting 1 shift/reduce conflict when there are 0 should fail")
}

func Test_Build_ReportsConflictsToLedger(t *testing.T) {
	// Build the same grammar again but strip precedence from the '+' rule
	// and symbol, forcing an unresolved shift/reduce conflict so the
	// ledger records an UnexpectedConflicts warning.
	tab := symtab.New()
	require.NoError(t, tab.DeclareToken("NUM", nil))
	require.NoError(t, tab.DeclareToken("+", nil))
	require.NoError(t, tab.DeclareNonterminal("expr"))
	tab.SetStart("expr")
	frozen, err := tab.Finalize()
	require.NoError(t, err)

	numIdx, _ := frozen.ByName("NUM")
	plusIdx, _ := frozen.ByName("+")
	exprIdx, _ := frozen.ByName("expr")

	rules := []grammar.Rule{
		{LHS: exprIdx, RHS: []symtab.Index{exprIdx, plusIdx, exprIdx}},
		{LHS: exprIdx, RHS: []symtab.Index{numIdx}},
	}
	g, err := grammar.Build(frozen, rules)
	require.NoError(t, err)
	aut, err := lr0.Build(g)
	require.NoError(t, err)
	la := lalr.Compute(g, aut)

	ledger := &diag.Ledger{}
	tbl, err := Build(g, aut, la, -1, -1, ledger)
	require.NoError(t, err)
	require.NotEmpty(t, tbl.Conflicts)

	found := false
	for _, item := range ledger.Items() {
		if item.Kind == diag.UnexpectedConflicts {
			found = true
		}
	}
	require.True(t, found)
}

func Test_Lookup_FallsBackToDefault(t *testing.T) {
	g, aut, la := buildExprGrammar(t)
	tbl, err := Build(g, aut, la, -1, -1, nil)
	require.NoError(t, err)

	for _, row := range tbl.Rows {
		if row.HasDefault {
			e := tbl.Lookup(row.State, symtab.Index(9999))
			require.Equal(t, Reduce, e.Kind)
			require.Equal(t, row.Default, e.Rule)
			return
		}
	}
}
