// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrUnbalancedParens    = errors.New("unbalanced parentheses")
	ErrUnbalancedComment   = errors.New("unbalanced comment brackets")
	ErrUnterminatedQuote   = errors.New("invalid quoting")
	ErrUnterminatedComment = errors.New("invalid comment nesting")
	ErrMismatchedParens    = errors.New("different number of opening and closing braces")
	ErrInvalidLabel        = errors.New("invalid label")
	ErrInvalidValue        = errors.New("invalid value")
	ErrNotLeaf             = errors.New("prune only accepts leaf nodes")
)

// maxFragment limits how much of the offending input is quoted in an error.
const maxFragment = 100

// SyntaxError is returned when the input is not well-formed Newick.
// It wraps one of the Err* sentinels so callers can use errors.Is.
type SyntaxError struct {
	Err      error  // sentinel describing the class of failure
	Msg      string // optional detail
	Span     Span   // where in the input it occurred
	Fragment string // offending input, truncated
}

func newSyntaxError(err error, toks []*Token, format string, args ...any) *SyntaxError {
	fragment := []rune(textOf(toks))
	if len(fragment) > maxFragment {
		fragment = fragment[:maxFragment]
	}
	return &SyntaxError{
		Err:      err,
		Msg:      fmt.Sprintf(format, args...),
		Span:     spanFromTokenSlice(toks),
		Fragment: string(fragment),
	}
}

func (e *SyntaxError) Error() string {
	msg := e.Err.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Span.Line == 0 {
		return fmt.Sprintf("%s: %q", msg, e.Fragment)
	}
	return fmt.Sprintf("%d:%d: %s: %q", e.Span.Line, e.Span.Column, msg, e.Fragment)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error into a printable Diagnostic.
func (e *SyntaxError) Diagnostic() Diagnostic {
	d := Diagnostic{
		Severity: slog.LevelError,
		Message:  e.Err.Error(),
		Span:     e.Span,
	}
	if e.Msg != "" {
		d.Notes = append(d.Notes, e.Msg)
	}
	return d
}

// ValueError is returned when a name or raw branch length is assigned a
// value that cannot be written as Newick without quoting.
type ValueError struct {
	Field  string // "name" or "length"
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}
