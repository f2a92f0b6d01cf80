// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Diagnostic represents a parse error or warning with a span in the
// original source.
type Diagnostic struct {
	Severity slog.Level // Error, Warning, Info
	Message  string     // "unbalanced parentheses"
	Span     Span       // where in the file it occurred
	Notes    []string   // optional additional help messages
}

// PrintDiagnostic writes the diagnostic, the source line it starts on and
// a caret under the starting column. Multi-line spans are underlined on
// their first line only.
func PrintDiagnostic(w io.Writer, diag Diagnostic, filename string, src []byte) {
	// Header: file:line:column: error: message
	span := diag.Span
	_, _ = fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		filename, span.Line, span.Column,
		strings.ToLower(diag.Severity.String()), diag.Message)

	line := findLine(src, span.Start, len(src))
	_, _ = fmt.Fprintf(w, "    %s\n", line)

	// caret underline
	caretCount := utf8.RuneCount(line[:runeColumnOffset(span.Column-1, line)])
	_, _ = fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", caretCount))

	for _, note := range diag.Notes {
		_, _ = fmt.Fprintf(w, "    note: %s\n", note)
	}
}

// findLine returns the line containing the start byte.
// It searches backwards from start to find the start of the line,
// then forward until it hits end, end of input, or finds a new-line.
// The returned line does not include the new-line. If there is
// no line, returns an empty slice.
func findLine(src []byte, start, end int) []byte {
	if start >= len(src) {
		if len(src) == 0 {
			return []byte{}
		}
		start = len(src) - 1
	}
	if end > len(src) {
		end = len(src)
	}

	lineStart := 0
	for i := start; i >= 0; i-- {
		if src[i] == '\n' && i != start {
			lineStart = i + 1
			break
		}
	}

	lineEnd := end
	for i := lineStart; i < end; i++ {
		if src[i] == '\n' || src[i] == '\r' {
			lineEnd = i
			break
		}
	}
	if lineStart >= lineEnd {
		return []byte{}
	}
	return src[lineStart:lineEnd]
}

// runeColumnOffset returns the byte offset of the given 0-based rune column.
func runeColumnOffset(column int, b []byte) (offset int) {
	for column > 0 && len(b) != 0 {
		// b is not empty, so DecodeRune will always return a width of 1 or more
		_, w := utf8.DecodeRune(b)
		offset += w
		b = b[w:]
		column--
	}
	return offset
}
