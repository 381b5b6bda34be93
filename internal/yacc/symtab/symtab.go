// Package symtab implements the symbol table: interning of token and
// nonterminal names into a single dense index space, plus the
// declarations (%token, %type, %left/%right/%nonassoc, %start, %destructor)
// that attach to a name before the table is frozen for use by grammar,
// lr0, and lalr.
//
// It generalizes the teacher's internal/util.SVSet hash-and-arena idiom
// (internal/util/set.go) from a bare string set to symbol records carrying
// class, precedence, associativity, a type tag and a destructor body —
// the same fields symtab.c's bucket struct in the original source holds.
package symtab

import (
	"fmt"

	"github.com/jlama/yacc/internal/yacc/diag"
)

// Class is the kind of a symbol, resolved the first time it is used in a
// rule (as a left-hand side, it is a Nonterminal; anywhere else, left as
// Unknown unless %token or a precedence declaration makes it a Terminal;
// Finalize numbers Unknown symbols as terminals).
type Class int

const (
	Unknown Class = iota
	Terminal
	Nonterminal
)

func (c Class) String() string {
	switch c {
	case Terminal:
		return "terminal"
	case Nonterminal:
		return "nonterminal"
	default:
		return "unknown"
	}
}

// Assoc is the declared associativity of a terminal, used to break
// shift/reduce ties during action table construction.
type Assoc int

const (
	NoAssoc Assoc = iota
	TokenAssoc
	Left
	Right
	Nonassoc
)

// Index is a dense symbol index. Index 0 is always the end-of-input
// marker; index 1 is always the error token, matching byacc's fixed
// low symbol numbers (main.c's NTBASE bookkeeping).
type Index int32

const (
	EndSymbol   Index = 0
	ErrorSymbol Index = 1
)

// Symbol is one entry in the table: a name plus every declaration that has
// been attached to it so far. Index is not assigned until Finalize, so
// code that runs before finalization must not depend on it.
type Symbol struct {
	Name       string
	Class      Class
	Index      Index
	Value      int
	Precedence int
	Assoc      Assoc
	Type       string
	Destructor string

	declaredValue bool
}

// Table is the mutable, pre-finalization symbol table. A grammar reader
// interns every name it encounters and records declarations against it;
// Finalize then partitions and numbers the symbols for the rest of the
// pipeline.
type Table struct {
	order  []string // first-seen order, for stable iteration and diagnostics
	byName map[string]*Symbol
	start  string

	precLevel int
}

// New returns an empty Table seeded with the two fixed symbols every
// grammar carries implicitly.
func New() *Table {
	t := &Table{byName: make(map[string]*Symbol)}
	end := t.Intern("$end")
	end.Class = Terminal
	end.Value = 0
	errSym := t.Intern("error")
	errSym.Class = Terminal
	errSym.Value = 256
	return t
}

// Intern returns the Symbol for name, creating it on first sight.
func (t *Table) Intern(name string) *Symbol {
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := &Symbol{Name: name, Value: -1}
	t.byName[name] = s
	t.order = append(t.order, name)
	return s
}

// Lookup returns the Symbol for name without creating it.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// DeclareToken records a %token declaration. If explicit is non-nil it
// fixes the symbol's external numeric value (the %token NAME 257 form);
// otherwise a value is assigned later, at Finalize.
func (t *Table) DeclareToken(name string, explicit *int) error {
	s := t.Intern(name)
	if s.Class == Nonterminal {
		return diag.New(diag.SymbolClassConflict,
			"%q was used as a nonterminal and cannot also be declared a token", name)
	}
	s.Class = Terminal
	if explicit != nil {
		if s.declaredValue && s.Value != *explicit {
			return diag.New(diag.DuplicateTokenNumber,
				"%q already has token number %d, cannot redeclare as %d", name, s.Value, *explicit)
		}
		s.Value = *explicit
		s.declaredValue = true
	}
	return nil
}

// DeclareNonterminal marks name as a nonterminal, used when a reader needs
// to force the class ahead of seeing the symbol on a left-hand side (e.g.
// via %type).
func (t *Table) DeclareNonterminal(name string) error {
	s := t.Intern(name)
	if s.Class == Terminal {
		return diag.New(diag.SymbolClassConflict,
			"%q was declared a token and cannot also be used as a nonterminal", name)
	}
	s.Class = Nonterminal
	return nil
}

// SetPrecedence records a %left/%right/%nonassoc entry. Successive calls
// with increasing level implement the usual yacc precedence-climbing
// declaration order; callers pass the next level counter in, since Table
// does not itself decide precedence-declaration order.
func (t *Table) SetPrecedence(name string, level int, assoc Assoc) error {
	s := t.Intern(name)
	if s.Class == Nonterminal {
		return diag.New(diag.SymbolClassConflict,
			"%q was used as a nonterminal and cannot carry a precedence declaration", name)
	}
	s.Class = Terminal
	s.Precedence = level
	s.Assoc = assoc
	return nil
}

// NextPrecedenceLevel returns the next unused precedence level, for a
// reader to hand to successive SetPrecedence calls within one %left/%right
// line and across lines in declaration order.
func (t *Table) NextPrecedenceLevel() int {
	t.precLevel++
	return t.precLevel
}

// SetType records a %type tag for a (possibly not yet created) symbol.
func (t *Table) SetType(name, tag string) {
	t.Intern(name).Type = tag
}

// SetDestructor records a %destructor body for a symbol.
func (t *Table) SetDestructor(name, text string) {
	t.Intern(name).Destructor = text
}

// SetStart records the %start declaration. The grammar reader calls this
// at most once; a second call overwrites rather than erroring, matching
// byacc's last-one-wins behavior for repeated directives.
func (t *Table) SetStart(name string) {
	t.start = name
}

// Frozen is the immutable, numbered symbol table handed to grammar and
// every later stage. Indices 0..NTokens-1 are terminals (with EndSymbol
// and ErrorSymbol fixed at 0 and 1); NTokens..NSyms-1 are nonterminals.
type Frozen struct {
	Symbols []Symbol // indexed by Index
	NTokens Index
	NSyms   Index
	Start   Index
}

// ByName finds a frozen symbol's index by name.
func (f *Frozen) ByName(name string) (Index, bool) {
	for i, s := range f.Symbols {
		if s.Name == name {
			return Index(i), true
		}
	}
	return 0, false
}

// Finalize partitions interned symbols into terminals and nonterminals,
// assigns dense indices (terminals first, $end and error pinned at 0 and
// 1), fills in any token values left unassigned by an explicit %token
// declaration, and resolves %start — defaulting to the first declared
// nonterminal when no %start directive was given, matching the original
// reader's fallback.
func (t *Table) Finalize() (*Frozen, error) {
	var terminals, nonterminals []string
	seenEnd, seenErr := false, false
	for _, name := range t.order {
		s := t.byName[name]
		switch {
		case name == "$end":
			seenEnd = true
			continue
		case name == "error":
			seenErr = true
			continue
		case s.Class == Nonterminal:
			nonterminals = append(nonterminals, name)
		default:
			// Anything never explicitly classed a nonterminal and never
			// appearing on a left-hand side defaults to terminal, exactly
			// as byacc treats an undeclared symbol used only in rule
			// bodies. A symbol that heads a rule must already have been
			// declared with DeclareNonterminal; nothing after Finalize
			// reclassifies it.
			terminals = append(terminals, name)
		}
	}
	if !seenEnd || !seenErr {
		return nil, diag.New(diag.InternalInvariantViolation,
			"symbol table lost its fixed $end/error entries")
	}

	f := &Frozen{}
	f.Symbols = append(f.Symbols, Symbol{}) // placeholder, filled below
	f.Symbols = append(f.Symbols, Symbol{})

	nextValue := 257
	usedValues := map[int]bool{0: true, 256: true}
	declaredBy := map[int]string{}
	for _, name := range terminals {
		s := t.byName[name]
		if !s.declaredValue {
			continue
		}
		if prior, ok := declaredBy[s.Value]; ok {
			return nil, diag.New(diag.DuplicateTokenNumber,
				"%q and %q both declare token number %d", prior, name, s.Value)
		}
		declaredBy[s.Value] = name
		usedValues[s.Value] = true
	}
	assignValue := func(s *Symbol) int {
		if s.declaredValue {
			return s.Value
		}
		for usedValues[nextValue] {
			nextValue++
		}
		usedValues[nextValue] = true
		v := nextValue
		nextValue++
		return v
	}

	endSym := *t.byName["$end"]
	endSym.Index = EndSymbol
	f.Symbols[EndSymbol] = endSym
	errSym := *t.byName["error"]
	errSym.Index = ErrorSymbol
	f.Symbols[ErrorSymbol] = errSym

	idx := Index(2)
	for _, name := range terminals {
		s := *t.byName[name]
		s.Value = assignValue(&s)
		s.Index = idx
		f.Symbols = append(f.Symbols, s)
		idx++
	}
	f.NTokens = idx

	for _, name := range nonterminals {
		s := *t.byName[name]
		s.Index = idx
		f.Symbols = append(f.Symbols, s)
		idx++
	}
	f.NSyms = idx

	if t.start != "" {
		si, ok := f.ByName(t.start)
		if !ok {
			return nil, diag.New(diag.UndefinedStart,
				"%%start names %q, which is not a declared nonterminal", t.start)
		}
		f.Start = si
	} else if len(nonterminals) > 0 {
		si, _ := f.ByName(nonterminals[0])
		f.Start = si
	} else {
		return nil, diag.New(diag.UndefinedStart, "grammar declares no nonterminals to start from")
	}

	return f, nil
}

// String renders a symbol for diagnostics, e.g. in verbose-mode reports.
func (s Symbol) String() string {
	return fmt.Sprintf("%s(#%d)", s.Name, s.Index)
}
