// Package diag implements the error taxonomy and warning ledger shared by
// every pipeline stage. It generalizes the teacher package's
// icterrors-style dedicated-constructor-per-failure-kind idiom
// (internal/ictiobus/parse's icterrors.NewSyntaxErrorFromToken) from a
// single parse-error type to the full kind enum spec.md §7 requires.
package diag

import "fmt"

// Kind identifies the taxonomy of a failure or warning as named in spec.md
// §7. It is not a Go error type itself; Error wraps a Kind with message and
// position detail.
type Kind int

const (
	GrammarSyntaxError Kind = iota
	SymbolClassConflict
	DuplicateTokenNumber
	UndeclaredNonterminal
	UndefinedStart
	UnreachableSymbol // warning
	UnusedRule        // warning
	UnexpectedConflicts
	IntegerOverflow
	InternalInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case GrammarSyntaxError:
		return "GrammarSyntaxError"
	case SymbolClassConflict:
		return "SymbolClassConflict"
	case DuplicateTokenNumber:
		return "DuplicateTokenNumber"
	case UndeclaredNonterminal:
		return "UndeclaredNonterminal"
	case UndefinedStart:
		return "UndefinedStart"
	case UnreachableSymbol:
		return "UnreachableSymbol"
	case UnusedRule:
		return "UnusedRule"
	case UnexpectedConflicts:
		return "UnexpectedConflicts"
	case IntegerOverflow:
		return "IntegerOverflow"
	case InternalInvariantViolation:
		return "InternalInvariantViolation"
	default:
		return "UnknownKind"
	}
}

// IsWarning reports whether Kind is, by default, a non-fatal finding.
// UnexpectedConflicts is a warning unless strict mode promotes it; callers
// needing that distinction should consult Ledger.Strict rather than this.
func (k Kind) IsWarning() bool {
	switch k {
	case UnreachableSymbol, UnusedRule, UnexpectedConflicts:
		return true
	default:
		return false
	}
}

// Position is a source location within the grammar input file, echoed
// verbatim from the lexer collaborator per spec.md §6.
type Position struct {
	Line, Col int
}

func (p Position) String() string {
	if p.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Error is the concrete error type returned by every package in this
// module for a failure named in the §7 taxonomy.
type Error struct {
	Kind Kind
	Msg  string
	Pos  Position
}

func (e *Error) Error() string {
	if e.Pos.Line != 0 {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an Error with no source position, for failures detected after
// the reader stage where no single source line is at fault.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At builds an Error with a source position, for failures the reader stage
// can pin to an exact line/column.
func At(kind Kind, pos Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// Ledger accumulates warnings across a pipeline run and renders them at the
// end, mirroring byacc's done()/report-at-exit discipline (main.c) instead
// of printing as each is discovered.
type Ledger struct {
	Strict bool
	items  []*Error
}

// Report records a finding. Fatal kinds (anything IsWarning reports false
// for) should instead be returned immediately by the stage that found them
// — the Ledger is for findings that accumulate without aborting the run.
func (l *Ledger) Report(e *Error) {
	l.items = append(l.items, e)
}

// Warnf is a convenience wrapper around Report for the common case of a
// formatted warning with no source position.
func (l *Ledger) Warnf(kind Kind, format string, args ...interface{}) {
	l.Report(New(kind, format, args...))
}

// Items returns every recorded finding in report order.
func (l *Ledger) Items() []*Error {
	return l.items
}

// HasFatal reports whether, under Strict mode, any recorded finding must
// turn the run's exit code nonzero (spec.md §6: "warnings do not affect
// exit code" except UnexpectedConflicts under strict mode).
func (l *Ledger) HasFatal() bool {
	if !l.Strict {
		return false
	}
	for _, e := range l.items {
		if e.Kind == UnexpectedConflicts {
			return true
		}
	}
	return false
}
