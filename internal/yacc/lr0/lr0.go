// Package lr0 builds the canonical collection of LR(0) item sets: the
// deterministic core-to-state map, the shift/goto transition function, and
// the per-rule reduction list each state carries.
//
// Kernel items are addressed as grammar.Item positions into the flattened
// Ritem array (the position immediately before the next unshifted RHS
// symbol, or the rule's end sentinel once every symbol has been shifted),
// matching original_source's itemset/kernel arrays in lr0.c. State dedup
// by kernel is done with a sorted-kernel string key rather than the
// original's hash-of-core, which is equivalent for a one-shot generator
// run and avoids hand-rolling a hash table the way symtab.c needs to.
package lr0

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// StateID numbers a state in the canonical collection; state 0 is always
// the start state, the closure of {rule 0's first item}.
type StateID int32

// Transition is one shift or goto edge: on Symbol, move to state To.
// Whether it is a "shift" (Symbol is a terminal) or a "goto" (Symbol is a
// nonterminal) is determined entirely by Symbol's class, matching how
// original_source's lr0.c never distinguishes the two at this layer either.
type Transition struct {
	Symbol symtab.Index
	To     StateID
}

// State is one member of the canonical LR(0) collection.
type State struct {
	ID StateID

	// Kernel is the sorted, deduplicated set of items defining this
	// state's identity: the items GOTO produced it from (or, for state 0,
	// the single item {augmenting rule, dot at 0}).
	Kernel []grammar.Item

	// Closure is the kernel plus every item added by closing over
	// nonterminals immediately after the dot, cached here because lalr
	// needs to re-walk each state's full closure when forward-simulating
	// the includes relation.
	Closure []grammar.Item

	Transitions []Transition // sorted by Symbol

	// Reductions lists the rules complete in this state (dot at the end
	// of the RHS), by the Item position of their end sentinel.
	Reductions []grammar.Item
}

// GoTo returns the state reached on Symbol, if any.
func (s *State) GoTo(sym symtab.Index) (StateID, bool) {
	lo, hi := 0, len(s.Transitions)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Transitions[mid].Symbol < sym {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.Transitions) && s.Transitions[lo].Symbol == sym {
		return s.Transitions[lo].To, true
	}
	return 0, false
}

// Automaton is the full canonical LR(0) collection plus its start state.
type Automaton struct {
	States []*State
	Start  StateID
	G      *grammar.Grammar
}

// closure expands a kernel item set to include every item reachable by
// repeatedly adding, for each item with the dot before nonterminal A, the
// dot-at-0 item of every rule deriving A. Mirrors original_source's
// closure() in lr0.c, iterated to a fixed point via a worklist instead of
// its static EFF bitmap precomputation (there is no equivalent runtime
// cost concern for a one-shot generator pass).
func closure(g *grammar.Grammar, kernel []grammar.Item) []grammar.Item {
	seen := make(map[grammar.Item]bool, len(kernel)*2)
	out := make([]grammar.Item, 0, len(kernel)*2)
	var worklist []grammar.Item

	add := func(it grammar.Item) {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
			worklist = append(worklist, it)
		}
	}
	for _, it := range kernel {
		add(it)
	}
	for len(worklist) > 0 {
		it := worklist[0]
		worklist = worklist[1:]
		sym := g.Ritem[it]
		if sym < 0 {
			continue // end-of-rule sentinel, nothing to expand
		}
		if int(sym) < int(g.Symtab.NTokens) {
			continue // terminal, nothing to expand
		}
		nt := int(sym) - int(g.Symtab.NTokens)
		for _, rid := range g.Derives[nt] {
			add(g.Rules[rid].Start)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func kernelKey(items []grammar.Item) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%d,", it)
	}
	return b.String()
}

// Build constructs the canonical LR(0) collection for g by worklist
// subset construction starting from the augmenting rule's initial item.
func Build(g *grammar.Grammar) (*Automaton, error) {
	a := &Automaton{G: g}

	startKernel := []grammar.Item{g.Rules[0].Start}
	byKernel := map[string]StateID{}

	newState := func(kernel []grammar.Item) StateID {
		sort.Slice(kernel, func(i, j int) bool { return kernel[i] < kernel[j] })
		key := kernelKey(kernel)
		if id, ok := byKernel[key]; ok {
			return id
		}
		id := StateID(len(a.States))
		st := &State{ID: id, Kernel: kernel, Closure: closure(g, kernel)}
		a.States = append(a.States, st)
		byKernel[key] = id
		return id
	}

	a.Start = newState(startKernel)

	for i := 0; i < len(a.States); i++ {
		st := a.States[i]
		successors := map[symtab.Index][]grammar.Item{}
		var order []symtab.Index

		for _, it := range st.Closure {
			sym := g.Ritem[it]
			if sym < 0 {
				st.Reductions = append(st.Reductions, it)
				continue
			}
			if _, ok := successors[symtab.Index(sym)]; !ok {
				order = append(order, symtab.Index(sym))
			}
			successors[symtab.Index(sym)] = append(successors[symtab.Index(sym)], it+1)
		}
		sort.Slice(order, func(x, y int) bool { return order[x] < order[y] })

		for _, sym := range order {
			to := newState(successors[sym])
			st.Transitions = append(st.Transitions, Transition{Symbol: sym, To: to})
		}
		sort.Slice(st.Transitions, func(x, y int) bool { return st.Transitions[x].Symbol < st.Transitions[y].Symbol })
	}

	return a, nil
}

// NStates returns the number of states in the collection.
func (a *Automaton) NStates() int { return len(a.States) }
