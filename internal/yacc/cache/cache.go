// Package cache persists a packed parser table as a binary snapshot so a
// repeated run over an unchanged grammar can skip straight to emission.
// Binary encoding is done with github.com/dekarrin/rezi, the same library
// the teacher's server/dao/sqlite package uses to serialize game save
// state (rezi.EncBinary/DecBinary) — repurposed here from a save-game
// blob to a build artifact cache. Temporary file names are generated with
// github.com/google/uuid, mirroring the teacher's session-id convention,
// so a crashed run's half-written snapshot never collides with a
// concurrent one.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/pack"
)

// Snapshot is the on-disk cache format: the packed table arrays plus a
// digest of the grammar source that produced them, so Load can tell a
// stale cache from a reusable one without re-running the full pipeline.
type Snapshot struct {
	SourceDigest string
	NStates      int
	NTokens      int

	Base    []int
	Default []int // -1 where a state has no default reduction
	Table   []int
	Check   []int

	GotoBase  []int
	GotoTable []int
	GotoCheck []int

	RuleLen []int
	RuleLHS []int
}

// FromTables converts a pack.Tables into the serializable Snapshot shape.
func FromTables(pk *pack.Tables, nTokens int, digest string) Snapshot {
	def := make([]int, len(pk.Default))
	for i, r := range pk.Default {
		if pk.HasDef[i] {
			def[i] = int(r)
		} else {
			def[i] = -1
		}
	}
	return Snapshot{
		SourceDigest: digest,
		NStates:      len(pk.Base),
		NTokens:      nTokens,
		Base:         pk.Base,
		Default:      def,
		Table:        pk.Table,
		Check:        pk.Check,
		GotoBase:     pk.GotoBase,
		GotoTable:    pk.GotoTable,
		GotoCheck:    pk.GotoCheck,
		RuleLen:      pk.RuleLen,
		RuleLHS:      pk.RuleLHS,
	}
}

// ToTables rebuilds the pack.Tables shape a cached Snapshot represents,
// for callers that only need to re-emit rather than re-derive it.
func (s Snapshot) ToTables() *pack.Tables {
	hasDef := make([]bool, len(s.Default))
	rules := make([]grammar.RuleID, len(s.Default))
	for i, d := range s.Default {
		if d >= 0 {
			hasDef[i] = true
			rules[i] = grammar.RuleID(d)
		}
	}
	return &pack.Tables{
		Base:      s.Base,
		Table:     s.Table,
		Check:     s.Check,
		Default:   rules,
		HasDef:    hasDef,
		NTokens:   s.NTokens,
		GotoBase:  s.GotoBase,
		GotoTable: s.GotoTable,
		GotoCheck: s.GotoCheck,
		RuleLen:   s.RuleLen,
		RuleLHS:   s.RuleLHS,
	}
}

// Store writes snap to path atomically: encode to a uuid-named temp file
// in the same directory, then rename over the destination, so a reader
// never observes a partially written cache.
func Store(path string, snap Snapshot) error {
	data := rezi.EncBinary(snap)
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp", uuid.New().String()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads and decodes a Snapshot from path. A missing file is reported
// via the ordinary os.IsNotExist-checkable error, not specially wrapped,
// so callers can treat "no cache yet" as just another error case to fall
// through from.
func Load(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	_, err = rezi.DecBinary(data, &snap)
	return snap, err
}
