// Package syntax defines the single error taxonomy for the Spindle
// front end. Every violation discovered while tokenizing, structuring,
// or classifying a document surfaces as a *syntax.Error carrying a
// human-readable message and the 1-based source line it points at.
// Collaborator failures (expression parsing, import resolution) are
// re-wrapped into the same shape at their call sites, so callers only
// ever observe one error kind.
package syntax

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel all front-end errors unwrap to, for use
// with errors.Is.
var ErrSyntax = errors.New("spindle syntax error")

// Error represents a syntax error in a Spindle document.
type Error struct {
	// Message is the human-readable description of the violation
	Message string

	// Line is the 1-based source line the error points at
	Line int

	// Filename is the source file, when known; attached by the
	// top-level caller at the parse boundary
	Filename string

	// Offset is the starting line number of the parse, for errors
	// raised while parsing an embedded fragment
	Offset int
}

func (e *Error) Error() string {
	where := fmt.Sprintf("line %d", e.Line)
	if e.Filename != "" {
		where = fmt.Sprintf("%s, %s", e.Filename, where)
	}
	return fmt.Sprintf("%s (%s)", e.Message, where)
}

func (e *Error) Unwrap() error {
	return ErrSyntax
}

// NewError creates a syntax error at the given 1-based line.
func NewError(message string, line int) *Error {
	return &Error{Message: message, Line: line}
}

// Errorf creates a syntax error at the given 1-based line with a
// formatted message.
func Errorf(line int, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Line: line}
}

// Wrap converts any error into a *Error stamped with the given line.
// A *Error passes through unchanged so an already-attributed line is
// never overwritten; other errors contribute their message verbatim.
func Wrap(err error, line int) *Error {
	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	return &Error{Message: err.Error(), Line: line}
}
