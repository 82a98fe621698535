package material

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package is derived from one of these with
// [Error.With] or [Error.Wrap], so callers can test the category with
// [errors.Is] and recover the offending names from the attributes.
var (
	ErrGrammar          = NewError("grammar error")
	ErrStructure        = NewError("malformed token")
	ErrUnresolvedBase   = NewError("unresolved inheritance base")
	ErrDuplicateBlock   = NewError("duplicate block")
	ErrInheritanceCycle = NewError("inheritance cycle")
	ErrUnknownPredicate = NewError("unknown query predicate")
	ErrInvalidQuery     = NewError("invalid query")
	ErrInvalidFilter    = NewError("invalid filter expression")
	ErrMaxDepthExceeded = NewError("maximum block depth exceeded")
	ErrReadInput        = NewError("failed to read input")
	ErrImportNotFound   = NewError("import source not found")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	pos   *Position   // Source position, if known
	base  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> (<attrs>) at <pos>: <err>"
	//   2. "<msg> (<attrs>)"
	//   3. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		var head strings.Builder

		head.WriteString(e.msg)

		if len(e.attrs) > 0 {
			head.WriteString(" (")

			for i, a := range e.attrs {
				if i > 0 {
					head.WriteString(", ")
				}

				head.WriteString(a.Key)
				head.WriteByte('=')
				head.WriteString(a.Value.String())
			}

			head.WriteByte(')')
		}

		if e.pos != nil {
			head.WriteString(" at ")
			head.WriteString(e.pos.String())
		}

		part = append(part, head.String())
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e.base == nil {
		return false
	}

	return e.base == t || e.base == t.base
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		pos:   e.pos,
		base:  e.base,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		pos:   e.pos,
		base:  e.base,
	}
}

// WithPosition returns a copy of e that records the source position.
func (e *Error) WithPosition(pos Position) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs,
		pos:   &pos,
		base:  e.base,
	}
}

// Position returns the source position recorded on e, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Attr returns the value of the first attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// FormatSnippet renders the source line at pos with a caret under the
// offending column, e.g.:
//
//	  3 | material Foo }
//	                   ^
func FormatSnippet(source string, pos Position) string {
	lines := strings.Split(source, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(strings.TrimRight(lines[pos.Line-1], "\r"))
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}
