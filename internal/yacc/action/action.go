// Package action resolves the LALR(1) action table: for every state and
// every terminal, whether to shift, reduce, accept, or flag a conflict,
// using %left/%right/%nonassoc precedence and associativity to settle
// shift/reduce ties and rule number to settle reduce/reduce ties, exactly
// as original_source's lalr.c (the mkred/table-building pass) describes,
// generalized to return the full per-state row directly rather than
// filling the global yacc C tables in place.
package action

import (
	"sort"

	"github.com/jlama/yacc/internal/yacc/diag"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lalr"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// Kind is the action a parser takes on a given (state, terminal) pair.
type Kind int

const (
	Error Kind = iota
	Shift
	Reduce
	Accept
)

// Entry is one resolved action.
type Entry struct {
	Kind Kind
	Next lr0.StateID   // valid when Kind == Shift
	Rule grammar.RuleID // valid when Kind == Reduce
}

// Conflict records a reduce/reduce collision, or a shift/reduce collision
// that precedence could not settle (the rule or the terminal has no
// declared precedence), found while resolving a state, for -l reports and
// %expect bookkeeping.
type ConflictKind int

const (
	ShiftReduceConflict ConflictKind = iota
	ReduceReduceConflict
)

type Conflict struct {
	State      lr0.StateID
	Sym        symtab.Index
	Kind       ConflictKind
	ReduceRule grammar.RuleID
	Resolved   Kind
}

// Row is the resolved action table for one state: explicit entries per
// terminal, plus an optional default reduction applied to every terminal
// with no explicit entry — mirroring original_source's defred array.
type Row struct {
	State   lr0.StateID
	Entries map[symtab.Index]Entry
	Default grammar.RuleID // 0 (a valid rule id, but never a default target since rule 0 never reduces outside $end) means "no default"
	HasDefault bool
}

// Table is the full resolved action table, one Row per LR(0) state.
type Table struct {
	Rows      []Row
	Conflicts []Conflict
}

// Build resolves shift/reduce and reduce/reduce conflicts for every state
// of aut using la's lookahead sets and g's precedence declarations and
// reports the conflict counts to ledger. When a count disagrees with
// expectSR/expectRR (the %expect and %expect-rr directives; -1 means "no
// expectation given"), the mismatch is recorded to ledger as an
// UnexpectedConflicts warning, or returned as an error if ledger is nil or
// strict.
func Build(g *grammar.Grammar, aut *lr0.Automaton, la *lalr.Tables, expectSR, expectRR int, ledger *diag.Ledger) (*Table, error) {
	t := &Table{Rows: make([]Row, len(aut.States))}

	for _, st := range aut.States {
		row := Row{State: st.ID, Entries: map[symtab.Index]Entry{}}

		for _, tr := range st.Transitions {
			if int(tr.Symbol) < int(g.Symtab.NTokens) {
				row.Entries[tr.Symbol] = Entry{Kind: Shift, Next: tr.To}
			}
		}

		type reduceCandidate struct {
			rule grammar.RuleID
			item grammar.Item
		}
		reduceFor := map[symtab.Index][]reduceCandidate{}
		for _, endItem := range st.Reductions {
			rid := g.RuleOf(endItem)
			set := la.LAFor(st.ID, endItem)
			for _, sym := range lalr.Terminals(set) {
				reduceFor[sym] = append(reduceFor[sym], reduceCandidate{rule: rid, item: endItem})
			}
		}

		var syms []symtab.Index
		for sym := range reduceFor {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

		for _, sym := range syms {
			cands := reduceFor[sym]
			sort.Slice(cands, func(i, j int) bool { return cands[i].rule < cands[j].rule })
			winner := cands[0].rule
			for _, c := range cands[1:] {
				t.Conflicts = append(t.Conflicts, Conflict{
					State: st.ID, Sym: sym, Kind: ReduceReduceConflict, ReduceRule: c.rule, Resolved: Reduce,
				})
			}

			if winner == 0 && sym == symtab.EndSymbol {
				row.Entries[sym] = Entry{Kind: Accept}
				continue
			}

			existing, hasShift := row.Entries[sym]
			if !hasShift {
				row.Entries[sym] = Entry{Kind: Reduce, Rule: winner}
				continue
			}

			resolved, keep := resolveShiftReduce(g, winner, sym, existing)
			if g.Rules[winner].Precedence == 0 || g.Symtab.Symbols[sym].Precedence == 0 {
				t.Conflicts = append(t.Conflicts, Conflict{
					State: st.ID, Sym: sym, Kind: ShiftReduceConflict, ReduceRule: winner, Resolved: resolved.Kind,
				})
			}
			if keep {
				row.Entries[sym] = resolved
			} else {
				delete(row.Entries, sym)
			}
		}

		applyDefaultReduction(&row)
		t.Rows[st.ID] = row
	}

	nSR, nRR := t.countByKind()
	if ledger != nil {
		if nSR > 0 {
			ledger.Warnf(diag.UnexpectedConflicts, "%d shift/reduce conflict(s)", nSR)
		}
		if nRR > 0 {
			ledger.Warnf(diag.UnexpectedConflicts, "%d reduce/reduce conflict(s)", nRR)
		}
	}

	var mismatches []*diag.Error
	if expectSR >= 0 && expectSR != nSR {
		mismatches = append(mismatches, diag.New(diag.UnexpectedConflicts,
			"expected %d shift/reduce conflict(s), found %d", expectSR, nSR))
	}
	if expectRR >= 0 && expectRR != nRR {
		mismatches = append(mismatches, diag.New(diag.UnexpectedConflicts,
			"expected %d reduce/reduce conflict(s), found %d", expectRR, nRR))
	}
	for _, e := range mismatches {
		if ledger == nil || ledger.Strict {
			return t, e
		}
		ledger.Report(e)
	}
	return t, nil
}

// countByKind tallies shift/reduce vs reduce/reduce conflicts recorded
// during Build, used against %expect/%expect-rr.
func (t *Table) countByKind() (sr, rr int) {
	for _, c := range t.Conflicts {
		if c.Kind == ReduceReduceConflict {
			rr++
		} else {
			sr++
		}
	}
	return sr, rr
}

// resolveShiftReduce settles a shift/reduce collision on sym using the
// rule's precedence/associativity against sym's own declared precedence.
// When either side lacks a declared precedence, shift wins, matching
// yacc's long-standing default. keep reports whether an action entry
// should remain at all (false only for the %nonassoc "neither" case).
func resolveShiftReduce(g *grammar.Grammar, rule grammar.RuleID, sym symtab.Index, shift Entry) (resolved Entry, keep bool) {
	r := g.Rules[rule]
	symSym := g.Symtab.Symbols[sym]

	if r.Precedence == 0 || symSym.Precedence == 0 {
		return shift, true
	}
	switch {
	case r.Precedence > symSym.Precedence:
		return Entry{Kind: Reduce, Rule: rule}, true
	case r.Precedence < symSym.Precedence:
		return shift, true
	default:
		switch symSym.Assoc {
		case symtab.Left:
			return Entry{Kind: Reduce, Rule: rule}, true
		case symtab.Right:
			return shift, true
		default: // Nonassoc: using the operator again is itself an error
			return Entry{Kind: Error}, false
		}
	}
}

// applyDefaultReduction picks the most common reduce target among a row's
// explicit entries and promotes it to the row's default, deleting the now
// redundant explicit entries, mirroring original_source's defred
// computation in lalr.c: a state whose every non-shift terminal reduces by
// the same rule needs no per-terminal entry for it at all.
func applyDefaultReduction(row *Row) {
	counts := map[grammar.RuleID]int{}
	for _, e := range row.Entries {
		if e.Kind == Reduce {
			counts[e.Rule]++
		}
	}
	var best grammar.RuleID
	bestCount := 0
	for rule, n := range counts {
		if n > bestCount || (n == bestCount && rule < best) {
			best, bestCount = rule, n
		}
	}
	if bestCount == 0 {
		return
	}
	row.Default = best
	row.HasDefault = true
	for sym, e := range row.Entries {
		if e.Kind == Reduce && e.Rule == best {
			delete(row.Entries, sym)
		}
	}
}

// Lookup returns the action for (state, sym), falling back to the state's
// default reduction, or Error if neither applies.
func (t *Table) Lookup(state lr0.StateID, sym symtab.Index) Entry {
	row := t.Rows[state]
	if e, ok := row.Entries[sym]; ok {
		return e
	}
	if row.HasDefault {
		return Entry{Kind: Reduce, Rule: row.Default}
	}
	return Entry{Kind: Error}
}
