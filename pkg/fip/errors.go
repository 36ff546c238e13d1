package fip

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Severity is the diagnostic level a Diagnostic reports itself at, per the
// <file>:<line>:<column>: <severity>: <message> format the CLI and editor
// tooling consume.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Position is a 1-based line/column pair, as produced by the lexer for
// every token.
type Position struct {
	Line   int
	Column int
	Length int
}

// Location names the file a diagnostic originates from plus its position
// within it. File is empty when a location has no associated source (e.g.
// a synthetic error raised from a builtin with no call-site token handy).
type Location struct {
	File string
	Pos  Position
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Pos.Line, l.Pos.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Pos.Line, l.Pos.Column)
}

// Diagnostic is satisfied by every error kind in the taxonomy so the CLI
// can render any of them uniformly.
type Diagnostic interface {
	error
	Severity() Severity
	Location() Location
}

func diagString(kind string, loc Location, msg string) string {
	if loc.File == "" && loc.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", loc, kind, msg)
}

// LexError reports invalid characters or unterminated strings found while
// scanning source text.
type LexError struct {
	Loc     Location
	Message string
}

func (e *LexError) Error() string       { return diagString("lex error", e.Loc, e.Message) }
func (e *LexError) Severity() Severity  { return SeverityError }
func (e *LexError) Location() Location  { return e.Loc }

// ParseError reports an unexpected token or a missing bracket during
// parsing.
type ParseError struct {
	Loc     Location
	Message string
}

func (e *ParseError) Error() string      { return diagString("parse error", e.Loc, e.Message) }
func (e *ParseError) Severity() Severity { return SeverityError }
func (e *ParseError) Location() Location { return e.Loc }

// TypeMismatchError is the "doesn't make sense" error: an operator applied
// to operands of incompatible type.
type TypeMismatchError struct {
	Loc      Location
	Operator string
	Operands []string
}

func (e *TypeMismatchError) Error() string {
	return diagString("doesn't make sense", e.Loc, fmt.Sprintf(
		"%q doesn't make sense for %s", e.Operator, joinOperands(e.Operands)))
}
func (e *TypeMismatchError) Severity() Severity { return SeverityError }
func (e *TypeMismatchError) Location() Location { return e.Loc }

func joinOperands(operands []string) string {
	switch len(operands) {
	case 0:
		return "no operands"
	case 1:
		return operands[0]
	default:
		out := operands[0]
		for _, o := range operands[1:] {
			out += " and " + o
		}
		return out
	}
}

// SuffixError reports a violation of the §4.4 purity/predicate suffix
// discipline, raised at the point a function is defined.
type SuffixError struct {
	Loc     Location
	Name    string
	Message string
}

func (e *SuffixError) Error() string {
	return diagString("suffix error", e.Loc, fmt.Sprintf("%s: %s", e.Name, e.Message))
}
func (e *SuffixError) Severity() Severity { return SeverityError }
func (e *SuffixError) Location() Location { return e.Loc }

// MutationError reports an attempt to re-bind an already-present name in
// the same environment frame.
type MutationError struct {
	Loc  Location
	Name string
}

func (e *MutationError) Error() string {
	return diagString("mutation error", e.Loc, fmt.Sprintf("cannot redefine %q in the same scope", e.Name))
}
func (e *MutationError) Severity() Severity { return SeverityError }
func (e *MutationError) Location() Location { return e.Loc }

// RuntimeError covers every other failure enumerated in spec §7: undefined
// identifiers, arity overflow, non-callable calls, division by zero,
// property access on non-Object non-Null values, invalid spread sources,
// missing exports, import cycles, missing files, and awaiting a rejected
// Promise.
type RuntimeError struct {
	Loc     Location
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause)
	}
	return diagString("runtime error", e.Loc, msg)
}
func (e *RuntimeError) Severity() Severity { return SeverityError }
func (e *RuntimeError) Location() Location { return e.Loc }
func (e *RuntimeError) Unwrap() error      { return e.Cause }

func newRuntimeError(loc Location, format string, args ...any) *RuntimeError {
	return &RuntimeError{Loc: loc, Message: fmt.Sprintf(format, args...)}
}

// wrapBuiltinPanic recovers a panicking native builtin body and turns it
// into a RuntimeError, preserving the panic's stack via pkg/errors so the
// cause survives the boundary.
func wrapBuiltinPanic(loc Location, name string, r any) error {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	return &RuntimeError{
		Loc:     loc,
		Message: fmt.Sprintf("builtin %q panicked", name),
		Cause:   pkgerrors.WithStack(err),
	}
}
