// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"errors"
	"fmt"

	"github.com/mdhender/newick"
)

// ErrReadFile is returned when file I/O operations fail.
type ErrReadFile struct {
	Op   string // glob, read, stat
	Path string
	Err  error
}

func (e *ErrReadFile) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ErrReadFile) Unwrap() error {
	return e.Err
}

// ErrDatabase is returned when database operations fail.
type ErrDatabase struct {
	Op  string
	Err error
}

func (e *ErrDatabase) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ErrDatabase) Unwrap() error {
	return e.Err
}

// ErrParseSyntax is returned when a document is not valid Newick.
type ErrParseSyntax struct {
	Name string
	Err  error
}

func (e *ErrParseSyntax) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ErrParseSyntax) Unwrap() error {
	return e.Err
}

// Line returns the line of the syntax error, or zero if it is not known.
func (e *ErrParseSyntax) Line() int {
	var se *newick.SyntaxError
	if errors.As(e.Err, &se) {
		return se.Span.Line
	}
	return 0
}

// Error code constants for database storage.
const (
	ErrCodeReadFile    = "READ_FILE"
	ErrCodeDatabase    = "DATABASE"
	ErrCodeParseSyntax = "PARSE_SYNTAX_ERROR"
	ErrCodeUnknown     = "UNKNOWN"
)

// ErrorCode returns the error code string for a given error.
func ErrorCode(err error) string {
	switch err.(type) {
	case *ErrReadFile:
		return ErrCodeReadFile
	case *ErrDatabase:
		return ErrCodeDatabase
	case *ErrParseSyntax:
		return ErrCodeParseSyntax
	default:
		return ErrCodeUnknown
	}
}
