// Package emit renders pipeline results to text: the generated parser
// tables header, the -l verbose state/grammar report, and the -g DOT
// graph of the canonical LR(0) automaton. Table layout in the verbose
// report uses github.com/dekarrin/rosed's InsertTableOpts, the same
// fixed-width table renderer internal/ictiobus/parse/lalr.go uses for its
// own String() debug dump.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/jlama/yacc/internal/yacc/action"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lalr"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/pack"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// Tables renders the packed action/goto tables as Go-syntax array
// literals suitable for inclusion in a generated parser's support file —
// the direct analogue of the C arrays original_source's output.c emits
// into y.tab.c. The goto arrays (yGotoBase/yGotoTable/yGotoCheck) and the
// per-rule yRlen/yRlhsRemap arrays give a reducer what it needs to pop the
// stack and find the next state after a reduction, the same pair output.c
// emits alongside the action table for yacc's generated yyparse.
func Tables(pk *pack.Tables, prefix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "var %sBase = %s\n", prefix, intSlice(pk.Base))
	fmt.Fprintf(&b, "var %sTable = %s\n", prefix, intSlice(pk.Table))
	fmt.Fprintf(&b, "var %sCheck = %s\n", prefix, intSlice(pk.Check))

	def := make([]int, len(pk.Default))
	for i, r := range pk.Default {
		if pk.HasDef[i] {
			def[i] = int(r)
		} else {
			def[i] = -1
		}
	}
	fmt.Fprintf(&b, "var %sDefault = %s\n", prefix, intSlice(def))

	fmt.Fprintf(&b, "var %sGotoBase = %s\n", prefix, intSlice(pk.GotoBase))
	fmt.Fprintf(&b, "var %sGotoTable = %s\n", prefix, intSlice(pk.GotoTable))
	fmt.Fprintf(&b, "var %sGotoCheck = %s\n", prefix, intSlice(pk.GotoCheck))
	fmt.Fprintf(&b, "var %sRlen = %s\n", prefix, intSlice(pk.RuleLen))
	fmt.Fprintf(&b, "var %sRlhsRemap = %s\n", prefix, intSlice(pk.RuleLHS))
	return b.String()
}

func intSlice(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return "[]int{" + strings.Join(parts, ", ") + "}"
}

// Verbose renders the -l human-readable report: one block per state
// listing its kernel items and its resolved actions, using a fixed-width
// table for the action summary the way internal/ictiobus/parse/lalr.go's
// String() does, followed by one closing list of every recorded conflict.
func Verbose(g *grammar.Grammar, aut *lr0.Automaton, la *lalr.Tables, act *action.Table) string {
	var b strings.Builder
	for _, st := range aut.States {
		fmt.Fprintf(&b, "state %d\n\n", st.ID)
		for _, it := range st.Kernel {
			fmt.Fprintf(&b, "\t%s\n", itemString(g, it))
		}
		b.WriteString("\n")

		row := act.Rows[st.ID]
		symSet := treeset.NewWith(utils.IntComparator)
		for sym := range row.Entries {
			symSet.Add(int(sym))
		}

		data := [][]string{{"symbol", "action"}}
		for _, v := range symSet.Values() {
			sym := symtab.Index(v.(int))
			e := row.Entries[sym]
			data = append(data, []string{g.Symtab.Symbols[sym].Name, actionString(e)})
		}
		if row.HasDefault {
			data = append(data, []string{"(default)", fmt.Sprintf("reduce by rule %d", row.Default)})
		}
		if len(data) > 1 {
			rendered := rosed.Edit("").
				InsertTableOpts(0, data, 60, rosed.Options{
					TableHeaders:             true,
					NoTrailingLineSeparators: true,
				}).
				String()
			b.WriteString(rendered)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(act.Conflicts) > 0 {
		b.WriteString("conflicts:\n")
		for _, c := range act.Conflicts {
			kind := "shift/reduce"
			if c.Kind == action.ReduceReduceConflict {
				kind = "reduce/reduce"
			}
			fmt.Fprintf(&b, "\tstate %d, symbol %s: %s conflict, resolved by rule %d\n",
				c.State, g.Symtab.Symbols[c.Sym].Name, kind, c.ReduceRule)
		}
	}

	return b.String()
}

func itemString(g *grammar.Grammar, it grammar.Item) string {
	rid := g.RuleOf(it)
	r := g.Rules[rid]
	var lhs string
	if rid == 0 {
		lhs = "$accept"
	} else {
		lhs = g.Symtab.Symbols[r.LHS].Name
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s :", lhs)
	for i, sym := range r.RHS {
		if grammar.Item(int(r.Start)+i) == it {
			sb.WriteString(" .")
		}
		fmt.Fprintf(&sb, " %s", g.Symtab.Symbols[sym].Name)
	}
	if it == grammar.Item(int(r.Start)+len(r.RHS)) {
		sb.WriteString(" .")
	}
	return sb.String()
}

func actionString(e action.Entry) string {
	switch e.Kind {
	case action.Shift:
		return fmt.Sprintf("shift, go to state %d", e.Next)
	case action.Reduce:
		return fmt.Sprintf("reduce by rule %d", e.Rule)
	case action.Accept:
		return "accept"
	default:
		return "error"
	}
}

// DOT renders the canonical LR(0) automaton as a Graphviz digraph, for -g.
func DOT(g *grammar.Grammar, aut *lr0.Automaton) string {
	var b strings.Builder
	b.WriteString("digraph LR0 {\n\trankdir=LR;\n")
	for _, st := range aut.States {
		fmt.Fprintf(&b, "\ts%d [shape=box, label=\"state %d\"];\n", st.ID, st.ID)
	}
	for _, st := range aut.States {
		for _, tr := range st.Transitions {
			label := g.Symtab.Symbols[tr.Symbol].Name
			fmt.Fprintf(&b, "\ts%d -> s%d [label=%q];\n", st.ID, tr.To, label)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
