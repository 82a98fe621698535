package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/matscript/material"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg     string
	err     error
	attrs   []slog.Attr
	snippet string // source excerpt locating the cause, if any
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a command error with the same message, so
// that errors derived from a sentinel match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t != nil && t.msg == e.msg && t.err == nil
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:     e.msg,
		err:     err,
		attrs:   e.attrs,
		snippet: e.snippet,
	}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:     e.msg,
		err:     e.err,
		attrs:   newAttrs,
		snippet: e.snippet,
	}
}

// withSource records the excerpt of source at the position of the wrapped
// script error, if it has one.
func (e *Error) withSource(source string) *Error {
	var merr *material.Error
	if source == "" || !errors.As(e.err, &merr) {
		return e
	}

	pos, ok := merr.Position()
	if !ok {
		return e
	}

	c := *e
	c.snippet = material.FormatSnippet(source, pos)

	return &c
}

// Snippet returns the source excerpt recorded on the first command error in
// the chain of err, or "" if there is none.
func Snippet(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.snippet
	}

	return ""
}

var (
	ErrLoadScript      = NewError("load material script")
	ErrUnknownMaterial = NewError("unknown material")
	ErrYAMLMarshal     = NewError("marshal YAML")
	ErrWriteConfig     = NewError("write configuration file")
	ErrFileExists      = NewError("file exists (use --force to overwrite)")
)
