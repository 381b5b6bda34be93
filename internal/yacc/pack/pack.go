// Package pack implements byacc's row-displacement table compression: the
// per-state action rows, each sparse over the terminal domain, are packed
// into shared base/check/table/default arrays so the emitted parser can
// look up an action with one table probe instead of a per-state switch.
// This follows original_source/main.c's packing pass (the BASE/CHECK
// discipline yylex-generated parsers rely on at runtime) almost exactly,
// since spec.md §4 asks for the same packed representation rather than a
// Go-idiomatic map-of-maps.
package pack

import (
	"github.com/jlama/yacc/internal/yacc/action"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// entryCode packs an action.Entry into the single signed integer the
// classic yacc runtime format uses: positive means shift-to-state+1,
// negative means reduce-by-rule, and 0 is reserved for error (accept is
// encoded as a reduce of rule 0, which the runtime special-cases).
func entryCode(e action.Entry) int {
	switch e.Kind {
	case action.Shift:
		return int(e.Next) + 1
	case action.Reduce:
		return -int(e.Rule) - 1
	case action.Accept:
		return -1 // reduce rule 0, the augmenting rule
	default:
		return 0
	}
}

// Tables is the packed representation ready for emission: parallel
// base/check arrays addressed by state, and one shared displacement table
// probed as table[base[state]+symbol] with a check guard, plus a default
// array giving the fallback reduction for a state with no base allocated
// (or whose probe misses check).
//
// Goto transitions are packed the same row-displacement way into a
// second, independent set of arrays keyed by (state, remapped nonterminal
// index) instead of (state, terminal index), since original_source packs
// the two separately (pack.c builds the action table over the terminal
// domain and the goto table, via pack_gotos, over the much narrower
// nonterminal domain). RuleLen and RuleLHS give a reducer what it needs to
// drive a goto lookup after a reduction: pop RuleLen[r] symbols to reveal
// a state, then probe (revealed state, RuleLHS[r]).
type Tables struct {
	Base    []int // per state, index into Table/Check; -1 if state has no explicit entries
	Default []grammar.RuleID
	HasDef  []bool
	Table   []int
	Check   []int // Check[i] == state that owns Table[i], or -1

	// NTokens remaps a full symtab.Index down to the 0-based nonterminal
	// domain GotoBase/GotoTable/GotoCheck are keyed over.
	NTokens int

	GotoBase  []int // per state, index into GotoTable/GotoCheck; -1 if state has no goto entries
	GotoTable []int // GotoTable[i]-1 is the next state, or the slot is unused if GotoCheck[i] doesn't match
	GotoCheck []int

	RuleLen []int // RuleLen[r] = len(rule r's RHS), the pop count on reduce
	RuleLHS []int // RuleLHS[r] = rule r's LHS remapped to (LHS - NTokens), for goto lookup
}

// Build packs act's resolved rows into row-displacement form. States are
// packed in order of decreasing row density first, a simple greedy
// heuristic in the same spirit as (if not byte-identical to) the original
// packer's most-tightly-constrained-row-first ordering, since a sparser
// search order tends to find smaller total table sizes.
func Build(g *grammar.Grammar, aut *lr0.Automaton, act *action.Table) *Tables {
	nStates := len(aut.States)
	t := &Tables{
		Base:    make([]int, nStates),
		Default: make([]grammar.RuleID, nStates),
		HasDef:  make([]bool, nStates),
	}

	order := make([]int, nStates)
	for i := range order {
		order[i] = i
	}
	density := make([]int, nStates)
	for i, row := range act.Rows {
		density[i] = len(row.Entries)
	}
	for i := 1; i < nStates; i++ {
		for j := i; j > 0 && density[order[j]] > density[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	for i, rule := range act.Rows {
		t.Default[i] = rule.Default
		t.HasDef[i] = rule.HasDefault
	}

	for _, si := range order {
		row := act.Rows[si]
		if len(row.Entries) == 0 {
			t.Base[si] = -1
			continue
		}

		syms := make([]symtab.Index, 0, len(row.Entries))
		for sym := range row.Entries {
			syms = append(syms, sym)
		}

		base := t.findSlot(syms)
		t.Base[si] = base
		need := base + int(maxSym(syms)) + 1
		t.grow(need)
		for sym, e := range row.Entries {
			pos := base + int(sym)
			t.Table[pos] = entryCode(e)
			t.Check[pos] = si
		}
	}

	t.packGotos(g, aut)
	t.packRuleMetadata(g)

	return t
}

// packGotos packs every nonterminal transition in aut (a GOTO, as opposed
// to a shift over a terminal, already packed above) into GotoBase/
// GotoTable/GotoCheck, using the same row-displacement discipline as the
// action table but over the narrower nonterminal domain.
func (t *Tables) packGotos(g *grammar.Grammar, aut *lr0.Automaton) {
	nStates := len(aut.States)
	nTokens := int(g.Symtab.NTokens)
	t.NTokens = nTokens
	t.GotoBase = make([]int, nStates)

	rows := make([]map[int]int, nStates)
	density := make([]int, nStates)
	for _, st := range aut.States {
		for _, tr := range st.Transitions {
			if int(tr.Symbol) < nTokens {
				continue // a shift, already packed into the action table
			}
			if rows[st.ID] == nil {
				rows[st.ID] = map[int]int{}
			}
			rows[st.ID][int(tr.Symbol)-nTokens] = int(tr.To) + 1
		}
		density[st.ID] = len(rows[st.ID])
	}

	order := make([]int, nStates)
	for i := range order {
		order[i] = i
	}
	for i := 1; i < nStates; i++ {
		for j := i; j > 0 && density[order[j]] > density[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	for _, si := range order {
		row := rows[si]
		if len(row) == 0 {
			t.GotoBase[si] = -1
			continue
		}
		nts := make([]int, 0, len(row))
		maxNT := 0
		for nt := range row {
			nts = append(nts, nt)
			if nt > maxNT {
				maxNT = nt
			}
		}

		base := t.findGotoSlot(nts)
		t.GotoBase[si] = base
		t.growGoto(base + maxNT + 1)
		for nt, code := range row {
			pos := base + nt
			t.GotoTable[pos] = code
			t.GotoCheck[pos] = si
		}
	}
}

func (t *Tables) findGotoSlot(nts []int) int {
	for base := 0; ; base++ {
		ok := true
		for _, nt := range nts {
			pos := base + nt
			if pos < len(t.GotoCheck) && t.GotoCheck[pos] != -1 {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
}

func (t *Tables) growGoto(n int) {
	for len(t.GotoTable) < n {
		t.GotoTable = append(t.GotoTable, 0)
		t.GotoCheck = append(t.GotoCheck, -1)
	}
}

// GotoLookup probes the packed goto table for the state reached after a
// reduction reveals state and the reducing rule's remapped nonterminal
// LHS nt (RuleLHS[r]), mirroring Lookup's action-table probe.
func (t *Tables) GotoLookup(state, nt int) (next int, found bool) {
	base := t.GotoBase[state]
	if base < 0 {
		return 0, false
	}
	pos := base + nt
	if pos >= len(t.GotoCheck) || t.GotoCheck[pos] != state {
		return 0, false
	}
	code := t.GotoTable[pos]
	if code == 0 {
		return 0, false
	}
	return code - 1, true
}

// packRuleMetadata fills RuleLen and RuleLHS, the two small per-rule
// arrays a reducer consults to drive a goto lookup: how many symbols to
// pop, and which remapped nonterminal to probe the goto table with. Rule
// 0 (the synthetic augmenting rule) has no real LHS symbol — original_
// source never reduces by it outside Accept — so its RuleLHS entry is
// left at -1 and never consulted.
func (t *Tables) packRuleMetadata(g *grammar.Grammar) {
	nTokens := int(g.Symtab.NTokens)
	t.RuleLen = make([]int, len(g.Rules))
	t.RuleLHS = make([]int, len(g.Rules))
	t.RuleLHS[0] = -1
	for i, r := range g.Rules {
		t.RuleLen[i] = len(r.RHS)
		if i == 0 {
			continue
		}
		t.RuleLHS[i] = int(r.LHS) - nTokens
	}
}

func maxSym(syms []symtab.Index) symtab.Index {
	m := syms[0]
	for _, s := range syms[1:] {
		if s > m {
			m = s
		}
	}
	return m
}

// findSlot locates the smallest non-negative base b such that every
// b+sym position is either beyond the current table (free) or unclaimed
// by Check, so this row's entries can be dropped in without colliding
// with an already-packed row.
func (t *Tables) findSlot(syms []symtab.Index) int {
	for base := 0; ; base++ {
		ok := true
		for _, sym := range syms {
			pos := base + int(sym)
			if pos < len(t.Check) && t.Check[pos] != -1 {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
}

func (t *Tables) grow(n int) {
	for len(t.Table) < n {
		t.Table = append(t.Table, 0)
		t.Check = append(t.Check, -1)
	}
}

// Lookup probes the packed tables for (state, sym), falling back to the
// state's default reduction (if any) on a miss. This is the exact
// algorithm the emitted parser's runtime uses.
func (t *Tables) Lookup(state int, sym symtab.Index) (code int, found bool) {
	base := t.Base[state]
	if base < 0 {
		if t.HasDef[state] {
			return -int(t.Default[state]) - 1, true
		}
		return 0, false
	}
	pos := base + int(sym)
	if pos >= len(t.Check) || t.Check[pos] != state {
		if t.HasDef[state] {
			return -int(t.Default[state]) - 1, true
		}
		return 0, false
	}
	return t.Table[pos], true
}
