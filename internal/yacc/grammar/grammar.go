// Package grammar builds the frozen, array-based grammar representation
// that lr0 and lalr operate over: the flattened rule-item array (ritem),
// per-symbol derivation lists (derives), and the nullable predicate.
//
// The layout is grounded directly on the original source's global arrays
// (original_source/main.c: ritem, rlhs, rrhs, rprec, rassoc) rather than on
// the teacher's node-and-pointer internal/ictiobus/grammar package, per
// spec.md §2's explicit requirement for an index/array-based model; the
// teacher's Item/Production types (internal/ictiobus/grammar/item.go)
// supplied the method-naming conventions (NonTerminal, ProductionsFor)
// generalized here to the array layout.
package grammar

import (
	"fmt"

	"github.com/jlama/yacc/internal/yacc/bitset"
	"github.com/jlama/yacc/internal/yacc/diag"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// RuleID numbers rules 1..NRules, leaving 0 reserved for the synthetic
// augmenting rule $accept : start $end, matching byacc's rule numbering.
type RuleID int32

// Item indexes a single slot of the flattened ritem array: either a symbol
// occurrence within some rule's right-hand side, or -(rule number + 1)
// marking that rule's end (the offset keeps rule 0's marker negative; the
// "-rule" sentinel original_source uses throughout lr0.c/lalr.c to find a
// rule from any of its items).
type Item int32

// Rule describes one grammar production, LHS -> RHS, plus the precedence
// and associativity it was assigned (explicitly via %prec, or implicitly
// from its rightmost terminal).
type Rule struct {
	ID         RuleID
	LHS        symtab.Index
	RHS        []symtab.Index
	Precedence int
	Assoc      symtab.Assoc
	Start      Item // index into Ritem of this rule's first RHS slot (or its end sentinel, if RHS is empty)
	Action     string
	Line       int
}

func (r Rule) String() string {
	return fmt.Sprintf("rule %d", r.ID)
}

// Grammar is the finalized, array-based grammar: a frozen symbol table
// plus the rule set and derived tables every later stage consults.
type Grammar struct {
	Symtab *symtab.Frozen
	Rules  []Rule // indexed by RuleID; Rules[0] is the augmenting rule

	Ritem []Item // flattened RHS symbols; negative entries are -(RuleID+1) end markers

	// Derives[nt] lists the RuleIDs whose LHS is nt, for nt in
	// [NTokens, NSyms). Indexed by symtab.Index - NTokens.
	Derives [][]RuleID

	Nullable bitset.Set // indexed by symtab.Index; Nullable.Has(nt) iff nt can derive empty
}

// Build assembles a Grammar from a frozen symbol table and the rules a
// reader collected (not yet including the augmenting rule, which Build
// synthesizes). Rule 0's RHS is forced to [start, $end] as byacc's
// reader.c does for every grammar.
func Build(st *symtab.Frozen, rules []Rule) (*Grammar, error) {
	g := &Grammar{Symtab: st}

	augmented := make([]Rule, 0, len(rules)+1)
	augmented = append(augmented, Rule{
		ID:  0,
		LHS: -1, // $accept has no real symtab slot; lr0 special-cases rule 0
		RHS: []symtab.Index{st.Start, symtab.EndSymbol},
	})
	for i, r := range rules {
		r.ID = RuleID(i + 1)
		augmented = append(augmented, r)
	}
	g.Rules = augmented

	if err := g.flatten(); err != nil {
		return nil, err
	}
	g.buildDerives()
	if err := g.checkReachability(); err != nil {
		return nil, err
	}
	g.computeNullable()
	return g, nil
}

func (g *Grammar) flatten() error {
	for i := range g.Rules {
		r := &g.Rules[i]
		r.Start = Item(len(g.Ritem))
		for _, sym := range r.RHS {
			if int(sym) < 0 || int(sym) >= len(g.Symtab.Symbols) {
				return diag.New(diag.InternalInvariantViolation,
					"rule %d references out-of-range symbol %d", r.ID, sym)
			}
			g.Ritem = append(g.Ritem, Item(sym))
		}
		g.Ritem = append(g.Ritem, Item(-int32(r.ID)-1))
	}
	return nil
}

func (g *Grammar) buildDerives() {
	nnt := int(g.Symtab.NSyms - g.Symtab.NTokens)
	g.Derives = make([][]RuleID, nnt)
	for _, r := range g.Rules {
		if r.ID == 0 {
			continue
		}
		nt := int(r.LHS) - int(g.Symtab.NTokens)
		g.Derives[nt] = append(g.Derives[nt], r.ID)
	}
}

// checkReachability fails with UndeclaredNonterminal for any nonterminal
// with zero productions: it can never be parsed regardless of
// reachability. Unreachable nonterminals and unused rules are not checked
// here; Unreachable and UnusedRules report those for a caller to record as
// warnings.
func (g *Grammar) checkReachability() error {
	nnt := int(g.Symtab.NSyms - g.Symtab.NTokens)
	for nt := 0; nt < nnt; nt++ {
		if len(g.Derives[nt]) == 0 {
			sym := g.Symtab.Symbols[int(g.Symtab.NTokens)+nt]
			return diag.New(diag.UndeclaredNonterminal,
				"nonterminal %q has no productions", sym.Name)
		}
	}
	return nil
}

// Unreachable returns the nonterminals that, starting from $accept, no
// derivation sequence can ever produce — callers report these through a
// diag.Ledger as UnreachableSymbol warnings, not as a hard failure.
func (g *Grammar) Unreachable() []symtab.Index {
	nnt := int(g.Symtab.NSyms - g.Symtab.NTokens)
	reached := make([]bool, nnt)
	var visit func(nt symtab.Index)
	visit = func(nt symtab.Index) {
		i := int(nt) - int(g.Symtab.NTokens)
		if i < 0 || i >= nnt || reached[i] {
			return
		}
		reached[i] = true
		for _, rid := range g.Derives[i] {
			for _, sym := range g.Rules[rid].RHS {
				if int(sym) >= int(g.Symtab.NTokens) {
					visit(sym)
				}
			}
		}
	}
	visit(g.Symtab.Start)

	var out []symtab.Index
	for i := 0; i < nnt; i++ {
		if !reached[i] {
			out = append(out, symtab.Index(int(g.Symtab.NTokens)+i))
		}
	}
	return out
}

// UnusedRules returns the RuleIDs of every rule whose LHS is unreachable,
// reported as a UnusedRule warning alongside Unreachable.
func (g *Grammar) UnusedRules() []RuleID {
	unreachable := map[symtab.Index]bool{}
	for _, nt := range g.Unreachable() {
		unreachable[nt] = true
	}
	var out []RuleID
	for _, r := range g.Rules {
		if r.ID != 0 && unreachable[r.LHS] {
			out = append(out, r.ID)
		}
	}
	return out
}

// RuleOf returns the rule owning item i: walk forward from i until the
// end-of-rule sentinel is found, exactly as original_source's lalr.c does
// inline at every use site (there named via the ritem[...]<0 test).
func (g *Grammar) RuleOf(i Item) RuleID {
	for g.Ritem[i] >= 0 {
		i++
	}
	return RuleID(-int32(g.Ritem[i]) - 1)
}

// computeNullable runs the standard fixed-point: a nonterminal is nullable
// iff some rule with that LHS has an all-nullable (or empty) RHS. Mirrors
// original_source's nullable() in reader.c, expressed over the flattened
// Ritem array instead of the C global directly.
func (g *Grammar) computeNullable() {
	g.Nullable = bitset.New(int(g.Symtab.NSyms))
	changed := true
	for changed {
		changed = false
		for _, r := range g.Rules {
			if r.ID == 0 {
				continue
			}
			if g.Nullable.Has(int(r.LHS)) {
				continue
			}
			allNullable := true
			for _, sym := range r.RHS {
				if int(sym) >= int(g.Symtab.NTokens) {
					if !g.Nullable.Has(int(sym)) {
						allNullable = false
						break
					}
				} else {
					allNullable = false
					break
				}
			}
			if allNullable {
				g.Nullable.Set(int(r.LHS))
				changed = true
			}
		}
	}
}

// RHS returns the right-hand-side symbols of rule r, re-sliced out of
// Ritem so callers needn't keep Rule.RHS duplicated once a Grammar is
// built; Rule.RHS remains authoritative pre-Build.
func (g *Grammar) RHS(r RuleID) []symtab.Index {
	start := g.Rules[r].Start
	var out []symtab.Index
	for i := start; g.Ritem[i] >= 0; i++ {
		out = append(out, symtab.Index(g.Ritem[i]))
	}
	return out
}
