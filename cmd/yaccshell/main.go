/*
Yaccshell loads a grammar file and opens an interactive console for
exploring the canonical LR(0)/LALR(1) automaton the way yacc would build
it: listing states, inspecting a state's closure items, transitions and
default reduction, walking a GOTO/shift edge, and listing every conflict
in the automaton.

Usage:

	yaccshell grammar-file

Once running, type "help" for the list of commands. Input is read through
a GNU-readline-backed console when running in a terminal, giving command
history and line editing; "quit" or EOF ends the session.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/jlama/yacc/internal/version"
	"github.com/jlama/yacc/internal/yacc/action"
	"github.com/jlama/yacc/internal/yacc/config"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/pipeline"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: yaccshell grammar-file")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
	result, err := pipeline.Run(f, pipeline.Options{Settings: config.Default()})
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      fmt.Sprintf("yaccshell(%s)> ", version.Current),
		HistoryFile: "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline console: %s\n", err.Error())
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%d states, %d conflicts. Type \"help\" for commands.\n",
		len(result.Automaton.States), len(result.Action.Conflicts))

	current := result.Automaton.Start
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "list":
			for _, st := range result.Automaton.States {
				fmt.Printf("state %d: %d kernel item(s), %d transition(s)\n",
					st.ID, len(st.Kernel), len(st.Transitions))
			}
		case "state":
			id, ok := parseState(fields, result)
			if !ok {
				continue
			}
			current = id
			describeState(result, id)
		case "goto":
			if len(fields) != 2 {
				fmt.Println("usage: goto SYMBOL")
				continue
			}
			st := result.Automaton.States[current]
			moved := false
			for _, tr := range st.Transitions {
				if result.Grammar.Symtab.Symbols[tr.Symbol].Name == fields[1] {
					current = tr.To
					describeState(result, current)
					moved = true
					break
				}
			}
			if !moved {
				fmt.Printf("no transition on %q from state %d\n", fields[1], current)
			}
		case "here":
			describeState(result, current)
		case "conflicts":
			for _, c := range result.Action.Conflicts {
				kind := "shift/reduce"
				if c.Kind == action.ReduceReduceConflict {
					kind = "reduce/reduce"
				}
				fmt.Printf("state %d, symbol %s: %s, resolved by rule %d\n",
					c.State, result.Grammar.Symtab.Symbols[c.Sym].Name, kind, c.ReduceRule)
			}
		default:
			fmt.Printf("unrecognized command %q; type \"help\" for commands\n", fields[0])
		}
	}
}

func parseState(fields []string, result *pipeline.Result) (lr0.StateID, bool) {
	if len(fields) != 2 {
		fmt.Println("usage: state N")
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 || n >= len(result.Automaton.States) {
		fmt.Printf("no such state %q\n", fields[1])
		return 0, false
	}
	return lr0.StateID(n), true
}

func describeState(result *pipeline.Result, id lr0.StateID) {
	st := result.Automaton.States[id]
	fmt.Printf("state %d\n", id)
	for _, it := range st.Closure {
		fmt.Printf("  %s\n", itemSummary(result, it))
	}
	for _, tr := range st.Transitions {
		fmt.Printf("  on %s -> state %d\n",
			result.Grammar.Symtab.Symbols[tr.Symbol].Name, tr.To)
	}
	row := result.Action.Rows[id]
	if row.HasDefault {
		fmt.Printf("  default: reduce by rule %d\n", row.Default)
	}
}

func itemSummary(result *pipeline.Result, it grammar.Item) string {
	g := result.Grammar
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

func printHelp() {
	fmt.Println(`commands:
  list               list every state with its item/transition counts
  state N            move to state N and describe it
  goto SYMBOL        follow the shift/goto edge on SYMBOL from the current state
  here               re-describe the current state
  conflicts          list every resolved shift/reduce and reduce/reduce conflict
  quit               exit`)
}
