package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Kind_IsWarning(t *testing.T) {
	assert.True(t, UnreachableSymbol.IsWarning())
	assert.True(t, UnusedRule.IsWarning())
	assert.True(t, UnexpectedConflicts.IsWarning())
	assert.False(t, GrammarSyntaxError.IsWarning())
	assert.False(t, InternalInvariantViolation.IsWarning())
}

func Test_Error_RendersPositionWhenPresent(t *testing.T) {
	err := At(GrammarSyntaxError, Position{Line: 3, Col: 5}, "unexpected %q", "}")
	assert.Equal(t, `3:5: GrammarSyntaxError: unexpected "}"`, err.Error())
}

func Test_Error_OmitsPositionWhenAbsent(t *testing.T) {
	err := New(UndefinedStart, "no start symbol")
	assert.Equal(t, "UndefinedStart: no start symbol", err.Error())
}

func Test_Ledger_WarnfAccumulatesInOrder(t *testing.T) {
	l := &Ledger{}
	l.Warnf(UnreachableSymbol, "nonterminal %q is unreachable", "dead")
	l.Warnf(UnusedRule, "rule %d is never used", 7)

	items := l.Items()
	require := assert.New(t)
	require.Len(items, 2)
	require.Equal(UnreachableSymbol, items[0].Kind)
	require.Equal(UnusedRule, items[1].Kind)
}

func Test_Ledger_HasFatal_OnlyUnderStrictWithConflicts(t *testing.T) {
	lenient := &Ledger{Strict: false}
	lenient.Warnf(UnexpectedConflicts, "1 shift/reduce conflict(s)")
	assert.False(t, lenient.HasFatal())

	strict := &Ledger{Strict: true}
	strict.Warnf(UnexpectedConflicts, "1 shift/reduce conflict(s)")
	assert.True(t, strict.HasFatal())

	strictNoConflicts := &Ledger{Strict: true}
	strictNoConflicts.Warnf(UnreachableSymbol, "nonterminal %q is unreachable", "dead")
	assert.False(t, strictNoConflicts.HasFatal())
}
