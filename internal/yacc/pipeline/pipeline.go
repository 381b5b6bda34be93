// Package pipeline drives the whole generator run in the order
// original_source/main.c's main() sequences its own passes: read the
// grammar, build the LR(0) automaton, compute LALR(1) lookaheads, resolve
// the action table, pack it, then emit and optionally cache the result.
// Everything here is orchestration; the actual algorithms live in the
// sibling packages this imports.
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/jlama/yacc/internal/yacc/action"
	"github.com/jlama/yacc/internal/yacc/cache"
	"github.com/jlama/yacc/internal/yacc/config"
	"github.com/jlama/yacc/internal/yacc/diag"
	"github.com/jlama/yacc/internal/yacc/emit"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lalr"
	"github.com/jlama/yacc/internal/yacc/lr0"
	"github.com/jlama/yacc/internal/yacc/pack"
	"github.com/jlama/yacc/internal/yacc/reader"
)

// Options controls one pipeline run; it is the resolved form of
// config.File plus CLI overrides, not the raw file or flag set.
type Options struct {
	Settings config.File

	// Trace, if non-nil, receives one line per pipeline stage as it
	// starts. Mirrors the teacher's optional trace-listener shape
	// (parse/lr.go's notifyTrace) rather than pulling in a logging
	// dependency for what is, in this tool, a handful of progress lines.
	Trace func(string)
}

func (o Options) trace(msg string) {
	if o.Trace != nil {
		o.Trace(msg)
	}
}

// Result is everything a run produces, for a caller (cmd/yacc or a test)
// to write out or inspect.
type Result struct {
	Reader   *reader.Result
	Grammar  *grammar.Grammar
	Automaton *lr0.Automaton
	Lalr     *lalr.Tables
	Action   *action.Table
	Pack     *pack.Tables
	Ledger   *diag.Ledger

	TablesText  string
	VerboseText string
	DOTText     string
	Digest      string
}

// Run executes every stage over a grammar definition read from src.
func Run(src io.Reader, opts Options) (*Result, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(raw)

	ledger := &diag.Ledger{Strict: opts.Settings.Strict}

	opts.trace("reading grammar")
	rd, err := reader.Read(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	frozen, err := rd.Symtab.Finalize()
	if err != nil {
		return nil, err
	}

	rules, err := reader.Resolve(rd.Rules, frozen)
	if err != nil {
		return nil, err
	}

	opts.trace("building grammar")
	g, err := grammar.Build(frozen, rules)
	if err != nil {
		return nil, err
	}

	// Unreachable nonterminals and unused rules come from two independent
	// passes; collect both into one ordered list before reporting so the
	// ledger always emits unreachable-symbol warnings before unused-rule
	// warnings regardless of which pass finds more to say.
	type grammarWarning struct {
		kind diag.Kind
		msg  string
	}
	warnings := arraylist.New()
	for _, nt := range g.Unreachable() {
		warnings.Add(grammarWarning{diag.UnreachableSymbol,
			"nonterminal \"" + frozen.Symbols[nt].Name + "\" is unreachable from the start symbol"})
	}
	for _, rid := range g.UnusedRules() {
		warnings.Add(grammarWarning{diag.UnusedRule,
			fmt.Sprintf("rule %d is never used", rid)})
	}
	warnings.Each(func(_ int, v interface{}) {
		w := v.(grammarWarning)
		ledger.Warnf(w.kind, w.msg)
	})

	opts.trace("building LR(0) automaton")
	aut, err := lr0.Build(g)
	if err != nil {
		return nil, err
	}

	opts.trace("computing LALR(1) lookaheads")
	la := lalr.Compute(g, aut)

	expectSR := rd.ExpectSR
	if opts.Settings.ExpectSR >= 0 {
		expectSR = opts.Settings.ExpectSR
	}
	expectRR := rd.ExpectRR
	if opts.Settings.ExpectRR >= 0 {
		expectRR = opts.Settings.ExpectRR
	}

	opts.trace("resolving action table")
	act, err := action.Build(g, aut, la, expectSR, expectRR, ledger)
	if err != nil {
		return nil, err
	}

	opts.trace("packing tables")
	pk := pack.Build(g, aut, act)

	res := &Result{
		Reader:    rd,
		Grammar:   g,
		Automaton: aut,
		Lalr:      la,
		Action:    act,
		Pack:      pk,
		Ledger:    ledger,
		Digest:    hex.EncodeToString(digest[:]),
	}

	prefix := opts.Settings.FileNamePrefix
	if prefix == "" {
		prefix = "y"
	}
	res.TablesText = emit.Tables(pk, prefix)
	if opts.Settings.Verbose {
		res.VerboseText = emit.Verbose(g, aut, la, act)
	}
	res.DOTText = emit.DOT(g, aut)

	return res, nil
}

// StoreCache writes res's packed tables to a cache file at path.
func StoreCache(path string, res *Result) error {
	snap := cache.FromTables(res.Pack, int(res.Grammar.Symtab.NTokens), res.Digest)
	return cache.Store(path, snap)
}

// LoadCache reads a cache file and reports whether it matches digest.
func LoadCache(path, digest string) (*pack.Tables, bool, error) {
	snap, err := cache.Load(path)
	if err != nil {
		return nil, false, err
	}
	if snap.SourceDigest != digest {
		return nil, false, nil
	}
	return snap.ToTables(), true, nil
}
