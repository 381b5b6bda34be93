/*
Yacc reads an LALR(1) grammar specification and generates the tables and
support code for a parser recognizing that grammar.

Usage:

	yacc [flags] grammar-file

The flags are:

	-v, --version
		Give the current version of yacc and then exit.

	-o, --output FILE
		Write the generated parser to FILE instead of the default
		y.tab.go (or FILE_PREFIX.tab.go, if -b was given).

	-b, --file-prefix PREFIX
		Use PREFIX instead of "y" as the prefix for all generated file
		names.

	-d, --defines
		Also write the generated symbol definitions to a separate file.

	-g, --graph
		Also write a Graphviz DOT description of the canonical LR(0)
		automaton.

	-l, --verbose
		Also write a human-readable description of the states and any
		conflicts to FILE_PREFIX.output.

	-r, --cache
		Also write the packed parser tables, keyed by a digest of the
		grammar source, to FILE_PREFIX.cache. The cache is only written;
		a later run does not read it back.

	-s, --strict
		Treat unresolved shift/reduce and reduce/reduce conflicts as
		fatal errors rather than warnings.

	-e, --expect N
		Set the expected number of shift/reduce conflicts, overriding
		any %expect directive in the grammar file.

	-E, --expect-rr N
		Set the expected number of reduce/reduce conflicts, overriding
		any %expect-rr directive in the grammar file.

	-c, --config FILE
		Read project defaults from FILE instead of the default
		".yacc.toml" in the current directory.

	-t, --trace
		Print one progress line per pipeline stage to stderr as it runs.

Once tables are generated, run the interactive explorer, yaccshell, over
the same grammar file to step through the canonical LR(0) automaton by
hand.
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jlama/yacc/internal/version"
	"github.com/jlama/yacc/internal/yacc/config"
	"github.com/jlama/yacc/internal/yacc/pipeline"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitGrammarError
	ExitStrictConflicts
)

var (
	returnCode int = ExitSuccess

	flagVersion    = pflag.BoolP("version", "v", false, "Give the current version and exit")
	flagOutput     = pflag.StringP("output", "o", "", "Write the generated parser to FILE")
	flagPrefix     = pflag.StringP("file-prefix", "b", "", "Use PREFIX instead of \"y\" for generated file names")
	flagDefines    = pflag.BoolP("defines", "d", false, "Also write generated symbol definitions")
	flagGraph      = pflag.BoolP("graph", "g", false, "Also write a DOT graph of the LR(0) automaton")
	flagVerbose    = pflag.BoolP("verbose", "l", false, "Also write a human-readable states/conflicts report")
	flagCache      = pflag.BoolP("cache", "r", false, "Cache packed tables keyed by a grammar source digest")
	flagStrict     = pflag.BoolP("strict", "s", false, "Treat unresolved conflicts as fatal")
	flagExpect     = pflag.IntP("expect", "e", -1, "Expected number of shift/reduce conflicts")
	flagExpectRR   = pflag.IntP("expect-rr", "E", -1, "Expected number of reduce/reduce conflicts")
	flagConfigFile = pflag.StringP("config", "c", ".yacc.toml", "Project settings file")
	flagTrace      = pflag.BoolP("trace", "t", false, "Print one progress line per pipeline stage to stderr")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: expected exactly one grammar file argument")
		returnCode = ExitUsageError
		return
	}
	grammarPath := pflag.Arg(0)

	settings, err := config.Load(*flagConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}
	var verbose, strict *bool
	if pflag.CommandLine.Changed("verbose") {
		verbose = flagVerbose
	}
	if pflag.CommandLine.Changed("strict") {
		strict = flagStrict
	}
	settings = settings.Apply(config.Overrides{
		FileNamePrefix: strPtrIfSet(*flagPrefix),
		Verbose:        verbose,
		Strict:         strict,
		ExpectSR:       intPtrIfSet(*flagExpect),
		ExpectRR:       intPtrIfSet(*flagExpectRR),
	})

	f, err := os.Open(grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}
	defer f.Close()

	opts := pipeline.Options{Settings: settings}
	if *flagTrace {
		opts.Trace = func(msg string) { fmt.Fprintf(os.Stderr, "trace: %s\n", msg) }
	}
	result, err := pipeline.Run(f, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	for _, item := range result.Ledger.Items() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", item.Error())
	}
	if result.Ledger.HasFatal() {
		fmt.Fprintln(os.Stderr, "ERROR: unresolved conflicts are fatal under --strict")
		returnCode = ExitStrictConflicts
		return
	}

	prefix := settings.FileNamePrefix
	if prefix == "" {
		prefix = "y"
	}
	outPath := *flagOutput
	if outPath == "" {
		outPath = filepath.Join(settings.OutputDir, prefix+".tab.go")
	}
	if err := os.WriteFile(outPath, []byte(result.TablesText), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	if *flagDefines {
		defPath := filepath.Join(settings.OutputDir, prefix+".tab.h.go")
		if err := os.WriteFile(defPath, []byte(symbolDefinitions(result)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitGrammarError
			return
		}
	}
	if *flagGraph {
		dotPath := filepath.Join(settings.OutputDir, prefix+".dot")
		if err := os.WriteFile(dotPath, []byte(result.DOTText), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitGrammarError
			return
		}
	}
	if settings.Verbose {
		outPath := filepath.Join(settings.OutputDir, prefix+".output")
		if err := os.WriteFile(outPath, []byte(result.VerboseText), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitGrammarError
			return
		}
	}
	if *flagCache {
		cachePath := filepath.Join(settings.OutputDir, prefix+".cache")
		if err := pipeline.StoreCache(cachePath, result); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitGrammarError
			return
		}
	}
}

func strPtrIfSet(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtrIfSet(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}

func symbolDefinitions(res *pipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package main\n\nconst (\n")
	for _, sym := range res.Grammar.Symtab.Symbols[2:res.Grammar.Symtab.NTokens] {
		name := strings.ToUpper(strings.Map(func(r rune) rune {
			if r == '-' || r == '.' {
				return '_'
			}
			return r
		}, sym.Name))
		fmt.Fprintf(&b, "\t%s = %d\n", name, sym.Value)
	}
	b.WriteString(")\n")
	return b.String()
}
