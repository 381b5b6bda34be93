package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/pack"
)

func samplePackTables() *pack.Tables {
	return &pack.Tables{
		Base:      []int{-1, 0, 3},
		Default:   []grammar.RuleID{0, 2, 0},
		HasDef:    []bool{false, true, false},
		Table:     []int{5, -2, 0, 7},
		Check:     []int{1, 1, -1, 2},
		NTokens:   4,
		GotoBase:  []int{-1, 0, -1},
		GotoTable: []int{3},
		GotoCheck: []int{1},
		RuleLen:   []int{0, 1, 2},
		RuleLHS:   []int{-1, 0, 0},
	}
}

func Test_FromTables_ToTables_RoundTrips(t *testing.T) {
	pk := samplePackTables()
	snap := FromTables(pk, 4, "deadbeef")

	assert.Equal(t, "deadbeef", snap.SourceDigest)
	assert.Equal(t, 4, snap.NTokens)
	assert.Equal(t, len(pk.Base), snap.NStates)
	assert.Equal(t, []int{-1, 2, -1}, snap.Default, "states with HasDef==false are recorded as -1 in the snapshot")

	got := snap.ToTables()
	assert.Equal(t, pk.Base, got.Base)
	assert.Equal(t, pk.Table, got.Table)
	assert.Equal(t, pk.Check, got.Check)
	assert.Equal(t, pk.HasDef, got.HasDef)
	assert.Equal(t, pk.Default, got.Default)
	assert.Equal(t, pk.GotoBase, got.GotoBase)
	assert.Equal(t, pk.GotoTable, got.GotoTable)
	assert.Equal(t, pk.GotoCheck, got.GotoCheck)
	assert.Equal(t, pk.RuleLen, got.RuleLen)
	assert.Equal(t, pk.RuleLHS, got.RuleLHS)
}

func Test_Store_Load_RoundTripsThroughDisk(t *testing.T) {
	pk := samplePackTables()
	snap := FromTables(pk, 4, "abc123")

	path := filepath.Join(t.TempDir(), "grammar.cache")
	require.NoError(t, Store(path, snap))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func Test_Load_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cache"))
	assert.Error(t, err)
}
