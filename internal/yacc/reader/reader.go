// Package reader turns a token stream from lex into a symtab.Table and a
// rule list ready for grammar.Build: it processes the declarations section
// (%token, %left/%right/%nonassoc, %type, %start, %union, %destructor,
// %expect/%expect-rr), then the rules section, desugaring mid-rule actions
// into synthetic empty-RHS nonterminals along the way exactly as
// original_source's reader.c does (there, via its copy_action/mid-rule
// bookkeeping; this package follows the same "introduce a fresh
// nonterminal whose sole rule is the action, splice a reference to it in
// place" strategy).
//
// Rules are collected by symbol *name* during the scan, since symtab.Index
// values are not assigned until symtab.Table.Finalize runs; Resolve turns
// the raw, name-keyed rules into grammar.Rule values once a Frozen table
// is available.
package reader

import (
	"fmt"
	"io"

	"github.com/jlama/yacc/internal/yacc/diag"
	"github.com/jlama/yacc/internal/yacc/grammar"
	"github.com/jlama/yacc/internal/yacc/lex"
	"github.com/jlama/yacc/internal/yacc/symtab"
)

// RawRule is one production as scanned, before symbol names are resolved
// to indices.
type RawRule struct {
	LHS      string
	RHS      []string
	PrecSym  string // explicit %prec override, or ""
	Action   string
	Line     int
}

// Result is everything the reader stage recovers from a grammar file.
type Result struct {
	Symtab   *symtab.Table
	Rules    []RawRule
	Prologue string
	Epilogue string
	Union    string

	ExpectSR int // -1 if %expect was not given
	ExpectRR int // -1 if %expect-rr was not given
}

type reader struct {
	lx           *lex.Lexer
	tab          *symtab.Table
	tok          lex.Token
	rules        []RawRule
	midRuleCount int
}

// Read parses a complete grammar definition file.
func Read(r io.Reader) (*Result, error) {
	rd := &reader{lx: lex.New(r), tab: symtab.New()}
	res := &Result{Symtab: rd.tab, ExpectSR: -1, ExpectRR: -1}

	if err := rd.advance(); err != nil {
		return nil, err
	}
	if err := rd.declarations(res); err != nil {
		return nil, err
	}
	if rd.tok.Kind != lex.Mark {
		return nil, diag.At(diag.GrammarSyntaxError, rd.tok.Pos, "expected %%%% to begin the rules section")
	}
	if err := rd.advance(); err != nil {
		return nil, err
	}
	if err := rd.rulesSection(); err != nil {
		return nil, err
	}
	if rd.tok.Kind == lex.Mark {
		epilogue, err := rd.lx.ReadRemaining()
		if err != nil {
			return nil, err
		}
		res.Epilogue = epilogue
	}

	res.Rules = rd.rules
	return res, nil
}

func (r *reader) advance() error {
	tok, err := r.lx.Next()
	if err != nil {
		return err
	}
	r.tok = tok
	return nil
}

func (r *reader) expect(k lex.Kind, what string) (lex.Token, error) {
	if r.tok.Kind != k {
		return lex.Token{}, diag.At(diag.GrammarSyntaxError, r.tok.Pos, "expected %s, found %q", what, r.tok.Text)
	}
	tok := r.tok
	err := r.advance()
	return tok, err
}

func (r *reader) expect2(a, b lex.Kind, what string) (lex.Token, error) {
	if r.tok.Kind != a && r.tok.Kind != b {
		return lex.Token{}, diag.At(diag.GrammarSyntaxError, r.tok.Pos, "expected %s, found %q", what, r.tok.Text)
	}
	tok := r.tok
	err := r.advance()
	return tok, err
}

// declarations consumes every directive before the first %%.
func (r *reader) declarations(res *Result) error {
	for {
		switch r.tok.Kind {
		case lex.Mark, lex.EOF:
			return nil
		case lex.Code:
			res.Prologue += r.tok.Text
			if err := r.advance(); err != nil {
				return err
			}
		case lex.Token:
			if err := r.tokenDecl(); err != nil {
				return err
			}
		case lex.Left, lex.Right, lex.Nonassoc:
			if err := r.precDecl(); err != nil {
				return err
			}
		case lex.Type:
			if err := r.typeDecl(); err != nil {
				return err
			}
		case lex.Start:
			if err := r.advance(); err != nil {
				return err
			}
			name, err := r.expect(lex.Ident, "nonterminal name after %start")
			if err != nil {
				return err
			}
			r.tab.SetStart(name.Text)
		case lex.Union:
			if err := r.advance(); err != nil {
				return err
			}
			body, err := r.expect(lex.Action, "{ ... } after %union")
			if err != nil {
				return err
			}
			res.Union = body.Text
		case lex.Destructor:
			if err := r.destructorDecl(); err != nil {
				return err
			}
		case lex.Expect:
			if err := r.advance(); err != nil {
				return err
			}
			n, err := r.expect(lex.Number, "number after %expect")
			if err != nil {
				return err
			}
			res.ExpectSR = atoiSafe(n.Text)
		case lex.ExpectRR:
			if err := r.advance(); err != nil {
				return err
			}
			n, err := r.expect(lex.Number, "number after %expect-rr")
			if err != nil {
				return err
			}
			res.ExpectRR = atoiSafe(n.Text)
		case lex.Pure:
			if err := r.advance(); err != nil {
				return err
			}
		default:
			return diag.At(diag.GrammarSyntaxError, r.tok.Pos, "unexpected token %q in declarations section", r.tok.Text)
		}
	}
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// tokenDecl parses `%token [<tag>] NAME [NUMBER] (NAME [NUMBER])*`.
func (r *reader) tokenDecl() error {
	if err := r.advance(); err != nil {
		return err
	}
	tag, err := r.optionalTag()
	if err != nil {
		return err
	}
	for r.tok.Kind == lex.Ident || r.tok.Kind == lex.CharLit || r.tok.Kind == lex.StringLit {
		name := r.tok.Text
		if err := r.advance(); err != nil {
			return err
		}
		var explicit *int
		if r.tok.Kind == lex.Number {
			v := atoiSafe(r.tok.Text)
			explicit = &v
			if err := r.advance(); err != nil {
				return err
			}
		}
		if err := r.tab.DeclareToken(name, explicit); err != nil {
			return err
		}
		if tag != "" {
			r.tab.SetType(name, tag)
		}
	}
	return nil
}

// precDecl parses `%left|%right|%nonassoc [<tag>] SYM SYM ...`, assigning
// one shared precedence level to every symbol on the line.
func (r *reader) precDecl() error {
	var assoc symtab.Assoc
	switch r.tok.Kind {
	case lex.Left:
		assoc = symtab.Left
	case lex.Right:
		assoc = symtab.Right
	default:
		assoc = symtab.Nonassoc
	}
	if err := r.advance(); err != nil {
		return err
	}
	tag, err := r.optionalTag()
	if err != nil {
		return err
	}
	level := r.tab.NextPrecedenceLevel()
	for r.tok.Kind == lex.Ident || r.tok.Kind == lex.CharLit || r.tok.Kind == lex.StringLit {
		name := r.tok.Text
		if err := r.advance(); err != nil {
			return err
		}
		if r.tok.Kind == lex.Number {
			if err := r.advance(); err != nil {
				return err
			}
		}
		if err := r.tab.SetPrecedence(name, level, assoc); err != nil {
			return err
		}
		if tag != "" {
			r.tab.SetType(name, tag)
		}
	}
	return nil
}

func (r *reader) typeDecl() error {
	if err := r.advance(); err != nil {
		return err
	}
	tag, err := r.optionalTag()
	if err != nil {
		return err
	}
	for r.tok.Kind == lex.Ident || r.tok.Kind == lex.CharLit {
		name := r.tok.Text
		if err := r.advance(); err != nil {
			return err
		}
		r.tab.SetType(name, tag)
	}
	return nil
}

func (r *reader) destructorDecl() error {
	if err := r.advance(); err != nil {
		return err
	}
	body, err := r.expect(lex.Action, "{ ... } after %destructor")
	if err != nil {
		return err
	}
	for r.tok.Kind == lex.Ident || r.tok.Kind == lex.LAngle {
		if r.tok.Kind == lex.LAngle {
			if _, err := r.skipTag(); err != nil {
				return err
			}
			continue
		}
		name := r.tok.Text
		r.tab.SetDestructor(name, body.Text)
		if err := r.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) optionalTag() (string, error) {
	if r.tok.Kind != lex.LAngle {
		return "", nil
	}
	return r.skipTag()
}

func (r *reader) skipTag() (string, error) {
	if err := r.advance(); err != nil {
		return "", err
	}
	name, err := r.expect(lex.Ident, "type tag name")
	if err != nil {
		return "", err
	}
	if _, err := r.expect(lex.RAngle, "> to close type tag"); err != nil {
		return "", err
	}
	return name.Text, nil
}

// rulesSection parses `name : rhs (| rhs)* ;` productions until a second
// %% or EOF.
func (r *reader) rulesSection() error {
	for r.tok.Kind != lex.Mark && r.tok.Kind != lex.EOF {
		lhsTok, err := r.expect(lex.Ident, "nonterminal name to start a rule")
		if err != nil {
			return err
		}
		if err := r.tab.DeclareNonterminal(lhsTok.Text); err != nil {
			return err
		}
		if _, err := r.expect(lex.Colon, ": after rule name"); err != nil {
			return err
		}
		for {
			rhs, precSym, action, err := r.alternative()
			if err != nil {
				return err
			}
			r.rules = append(r.rules, RawRule{
				LHS:     lhsTok.Text,
				RHS:     rhs,
				PrecSym: precSym,
				Action:  action,
				Line:    lhsTok.Pos.Line,
			})

			if r.tok.Kind == lex.Pipe {
				if err := r.advance(); err != nil {
					return err
				}
				continue
			}
			break
		}
		if _, err := r.expect(lex.Semi, "; to end a rule"); err != nil {
			return err
		}
	}
	return nil
}

// alternative parses one `|`-separated right-hand side, splicing out
// mid-rule actions into synthetic nonterminal rules appended directly to
// r.rules and returning the trailing action (if any) plus an explicit
// %prec symbol name (if any).
func (r *reader) alternative() (rhs []string, precSym string, action string, err error) {
	for {
		switch r.tok.Kind {
		case lex.Ident, lex.CharLit, lex.StringLit:
			rhs = append(rhs, r.tok.Text)
			if err = r.advance(); err != nil {
				return nil, "", "", err
			}
		case lex.Action:
			body := r.tok.Text
			if err = r.advance(); err != nil {
				return nil, "", "", err
			}
			if r.isRHSContinuing() {
				r.midRuleCount++
				synthName := fmt.Sprintf("$$%d", r.midRuleCount)
				if err = r.tab.DeclareNonterminal(synthName); err != nil {
					return nil, "", "", err
				}
				r.rules = append(r.rules, RawRule{LHS: synthName, Action: body})
				rhs = append(rhs, synthName)
				continue
			}
			action = body
			return rhs, precSym, action, nil
		case lex.Prec:
			if err = r.advance(); err != nil {
				return nil, "", "", err
			}
			tok, perr := r.expect2(lex.Ident, lex.CharLit, "symbol name after %prec")
			if perr != nil {
				return nil, "", "", perr
			}
			precSym = tok.Text
		default:
			return rhs, precSym, action, nil
		}
	}
}

// isRHSContinuing reports whether the current token can still extend an
// RHS, so a just-consumed Action is known to be a mid-rule action rather
// than the alternative's trailing one.
func (r *reader) isRHSContinuing() bool {
	switch r.tok.Kind {
	case lex.Ident, lex.CharLit, lex.StringLit, lex.Action, lex.Prec:
		return true
	default:
		return false
	}
}

// Resolve converts name-keyed RawRules into index-keyed grammar.Rules once
// st has been finalized: symbol names are looked up, and each rule's
// precedence/associativity is set from its explicit %prec symbol, or, if
// none was given, from the rightmost terminal in its RHS, matching yacc's
// standard default.
func Resolve(rules []RawRule, st *symtab.Frozen) ([]grammar.Rule, error) {
	out := make([]grammar.Rule, 0, len(rules))
	for _, rr := range rules {
		lhs, ok := st.ByName(rr.LHS)
		if !ok {
			return nil, diag.New(diag.InternalInvariantViolation, "rule LHS %q was never interned", rr.LHS)
		}
		rhs := make([]symtab.Index, 0, len(rr.RHS))
		for _, name := range rr.RHS {
			idx, ok := st.ByName(name)
			if !ok {
				return nil, diag.New(diag.InternalInvariantViolation, "rule RHS symbol %q was never interned", name)
			}
			rhs = append(rhs, idx)
		}

		rule := grammar.Rule{
			LHS:    lhs,
			RHS:    rhs,
			Action: rr.Action,
			Line:   rr.Line,
		}

		var precName string
		if rr.PrecSym != "" {
			precName = rr.PrecSym
		} else {
			for i := len(rhs) - 1; i >= 0; i-- {
				if rhs[i] < st.NTokens {
					precName = rr.RHS[i]
					break
				}
			}
		}
		if precName != "" {
			if idx, ok := st.ByName(precName); ok {
				sym := st.Symbols[idx]
				rule.Precedence = sym.Precedence
				rule.Assoc = sym.Assoc
			}
		}

		out = append(out, rule)
	}
	return out, nil
}
