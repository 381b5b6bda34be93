// Package lalr computes DeRemer & Pennello-style LALR(1) lookahead sets:
// Read, Follow, and finally the per-state, per-rule LA set that the action
// package consumes to resolve or report conflicts.
//
// original_source's lalr.c finds the (p,A) transition whose Follow set
// feeds a reduce item by tracing *backward* through the goto chain — valid
// there because each LR(0) state in byacc's table is distinguished by a
// unique predecessor path. This package instead forward-simulates: for
// every rule, it already knows (from lr0's cached per-state Closure) every
// state whose closure contains that rule's start item, and walks that
// rule's own right-hand side forward via State.GoTo from each such state.
// Forward walking is unambiguous by construction — State.GoTo is a
// function — whereas backward tracing through a deduplicated/merged
// automaton is not guaranteed single-valued. The two techniques compute
// the same lookback and includes relations; spec.md itself phrases both
// relations in terms of "the path ... takes p to q", which a forward walk
// satisfies directly.
package lalr

import (
	"sort"

	"github.com/jlama/yacc/internal/yacc/bitset"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// transID is the dense id of one nonterminal transition (p, A): state p
// has a GOTO edge on nonterminal A. Read, Follow and the includes/reads
// relations are all defined over this node space, per DeRemer & Pennello.
type transID int

type transition struct {
	From lr0.StateID
	Sym  symtab.Index // always a nonterminal
	To   lr0.StateID
}

// Tables holds every intermediate and final relation the LALR computation
// produces, kept around so pack and diag can explain *why* a particular
// lookahead set contains what it does (e.g. for -v verbose reports).
type Tables struct {
	g   *grammar.Grammar
	aut *lr0.Automaton

	trans   []transition
	transID map[lr0.StateID]map[symtab.Index]transID

	Read   *bitset.Buffer // indexed by transID, width NTokens
	Follow *bitset.Buffer // indexed by transID, width NTokens

	// LA[state][ruleEndItem] is the lookahead set for the reduce item
	// ending at that Item position within that state, width NTokens.
	LA map[lr0.StateID]map[grammar.Item]bitset.Set
}

// Compute runs the full Read/Follow/LA pipeline over an already-built
// grammar and LR(0) automaton.
func Compute(g *grammar.Grammar, aut *lr0.Automaton) *Tables {
	t := &Tables{g: g, aut: aut, transID: map[lr0.StateID]map[symtab.Index]transID{}}
	t.enumerateTransitions()

	nTokens := int(g.Symtab.NTokens)

	derivingStates := t.derivingStatesByRule()
	suffixNullable := t.suffixNullableByRule()

	dr := t.computeDR(nTokens)
	readSucc := t.readsRelation(nTokens)
	t.Read = digraph(nTokens, dr, readSucc)

	includesSucc := t.includesRelation(derivingStates, suffixNullable)
	readBase := make([]bitset.Set, len(t.trans))
	for i := range t.trans {
		readBase[i] = t.Read.At(i)
	}
	t.Follow = digraph(nTokens, readBase, includesSucc)

	t.computeLA(derivingStates, nTokens)
	return t
}

func (t *Tables) enumerateTransitions() {
	for _, st := range t.aut.States {
		for _, tr := range st.Transitions {
			if int(tr.Symbol) < int(t.g.Symtab.NTokens) {
				continue // shift, not a goto on a nonterminal
			}
			id := transID(len(t.trans))
			t.trans = append(t.trans, transition{From: st.ID, Sym: tr.Symbol, To: tr.To})
			if t.transID[st.ID] == nil {
				t.transID[st.ID] = map[symtab.Index]transID{}
			}
			t.transID[st.ID][tr.Symbol] = id
		}
	}
}

func (t *Tables) lookupTrans(p lr0.StateID, a symtab.Index) (transID, bool) {
	m, ok := t.transID[p]
	if !ok {
		return 0, false
	}
	id, ok := m[a]
	return id, ok
}

// derivingStatesByRule returns, per rule, every state whose cached closure
// contains that rule's dot-0 item — i.e. every state where the rule could
// be "entered".
func (t *Tables) derivingStatesByRule() map[grammar.RuleID][]lr0.StateID {
	startToRule := map[grammar.Item]grammar.RuleID{}
	for _, r := range t.g.Rules {
		startToRule[r.Start] = r.ID
	}
	out := map[grammar.RuleID][]lr0.StateID{}
	for _, st := range t.aut.States {
		for _, it := range st.Closure {
			if rid, ok := startToRule[it]; ok {
				out[rid] = append(out[rid], st.ID)
			}
		}
	}
	return out
}

// suffixNullableByRule returns, per rule, suffixNullable[i] = true iff
// RHS[i:] is entirely nullable (vacuously true at i == len(RHS)).
func (t *Tables) suffixNullableByRule() map[grammar.RuleID][]bool {
	out := map[grammar.RuleID][]bool{}
	for _, r := range t.g.Rules {
		rhs := t.g.RHS(r.ID)
		suf := make([]bool, len(rhs)+1)
		suf[len(rhs)] = true
		for i := len(rhs) - 1; i >= 0; i-- {
			sym := rhs[i]
			nullableSym := int(sym) >= int(t.g.Symtab.NTokens) && t.g.Nullable.Has(int(sym))
			suf[i] = nullableSym && suf[i+1]
		}
		out[r.ID] = suf
	}
	return out
}

// walk forward-simulates following syms from p through the deterministic
// GOTO function, returning the final state or false if any step has no
// transition (which cannot happen for a syms slice drawn from an actual
// rule RHS reachable from p, but is checked defensively).
func (t *Tables) walk(p lr0.StateID, syms []symtab.Index) (lr0.StateID, bool) {
	cur := p
	for _, sym := range syms {
		st := t.aut.States[cur]
		to, ok := st.GoTo(sym)
		if !ok {
			return 0, false
		}
		cur = to
	}
	return cur, true
}

// computeDR fills DR(p,A) = the terminals state GOTO(p,A) can shift on.
func (t *Tables) computeDR(nTokens int) []bitset.Set {
	buf := bitset.NewBuffer(len(t.trans), nTokens)
	for id, tr := range t.trans {
		set := buf.At(id)
		to := t.aut.States[tr.To]
		for _, out := range to.Transitions {
			if int(out.Symbol) < nTokens {
				set.Set(int(out.Symbol))
			}
		}
	}
	out := make([]bitset.Set, len(t.trans))
	for i := range t.trans {
		out[i] = buf.At(i)
	}
	return out
}

// readsRelation returns, for transID (p,A), the list of transIDs (p',C)
// such that p' = GOTO(p,A) and C is a nullable nonterminal with its own
// transition out of p' — the "reads" relation of DeRemer & Pennello.
func (t *Tables) readsRelation(nTokens int) func(int) []int {
	succs := make([][]int, len(t.trans))
	for id, tr := range t.trans {
		pPrime := tr.To
		st := t.aut.States[pPrime]
		for _, out := range st.Transitions {
			if int(out.Symbol) < nTokens {
				continue
			}
			if !t.g.Nullable.Has(int(out.Symbol)) {
				continue
			}
			if cid, ok := t.lookupTrans(pPrime, out.Symbol); ok {
				succs[id] = append(succs[id], int(cid))
			}
		}
	}
	return func(x int) []int { return succs[x] }
}

// includesRelation returns, for transID (p,A), the list of transIDs
// (p',B) it includes: production B -> β A γ with γ nullable, where
// p = result of walking β forward from p'.
func (t *Tables) includesRelation(derivingStates map[grammar.RuleID][]lr0.StateID, suffixNullable map[grammar.RuleID][]bool) func(int) []int {
	succs := make([][]int, len(t.trans))

	for _, r := range t.g.Rules {
		if r.ID == 0 {
			continue
		}
		rhs := t.g.RHS(r.ID)
		suf := suffixNullable[r.ID]
		for i, sym := range rhs {
			if int(sym) < int(t.g.Symtab.NTokens) {
				continue // not a nonterminal, cannot be the "A" of includes
			}
			if !suf[i+1] {
				continue // γ (the rest of the RHS) is not nullable
			}
			prefix := rhs[:i]
			for _, pPrime := range derivingStates[r.ID] {
				p, ok := t.walk(pPrime, prefix)
				if !ok {
					continue
				}
				idPA, ok := t.lookupTrans(p, sym)
				if !ok {
					continue
				}
				idPB, ok := t.lookupTrans(pPrime, r.LHS)
				if !ok {
					continue
				}
				succs[idPA] = append(succs[idPA], int(idPB))
			}
		}
	}
	return func(x int) []int { return succs[x] }
}

// computeLA derives, for every (state, reduce item) pair, the final LA
// set: the union of Follow(p',B) over every (p',B) transition the reduce
// item's rule "looks back" to — found the same forward way as includes,
// by walking the rule's entire RHS from every state that can derive it and
// keeping the ones landing exactly on the reduce item's state.
func (t *Tables) computeLA(derivingStates map[grammar.RuleID][]lr0.StateID, nTokens int) {
	t.LA = map[lr0.StateID]map[grammar.Item]bitset.Set{}

	// Rule 0 (the augmenting rule) always reduces with $end as its sole
	// lookahead; it has no LHS transition to look back through.
	for _, st := range t.aut.States {
		for _, endItem := range st.Reductions {
			rid := t.g.RuleOf(endItem)
			if t.LA[st.ID] == nil {
				t.LA[st.ID] = map[grammar.Item]bitset.Set{}
			}
			set := bitset.New(nTokens)
			if rid == 0 {
				set.Set(int(symtab.EndSymbol))
				t.LA[st.ID][endItem] = set
				continue
			}
			r := t.g.Rules[rid]
			rhs := t.g.RHS(rid)
			for _, pPrime := range derivingStates[rid] {
				q, ok := t.walk(pPrime, rhs)
				if !ok || q != st.ID {
					continue
				}
				idPB, ok := t.lookupTrans(pPrime, r.LHS)
				if !ok {
					continue
				}
				set.Union(t.Follow.At(int(idPB)))
			}
			t.LA[st.ID][endItem] = set
		}
	}
}

// LAFor returns the lookahead set for the reduce item at endItem within
// state id, or an empty set if that pair has no reduce item (a caller
// error, since the action package only ever queries real reductions).
func (t *Tables) LAFor(id lr0.StateID, endItem grammar.Item) bitset.Set {
	return t.LA[id][endItem]
}

// Terminals renders a lookahead bitset as the sorted list of symbol
// indices it contains, for conflict diagnostics and verbose reports.
func Terminals(s bitset.Set) []symtab.Index {
	var out []symtab.Index
	for _, i := range s.Elements() {
		out = append(out, symtab.Index(i))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
