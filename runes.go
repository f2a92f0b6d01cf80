// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"unicode"
	"unicode/utf8"
)

const (
	// CR is 0x0D or '\r'
	CR rune = rune(13)

	// LF is 0x0A or '\n'
	LF rune = rune(10)

	// EOF is a sentinel for end of input
	EOF rune = rune(-1)
)

// ReservedPunctuation lists the characters that may not appear in an
// unquoted name or a raw branch length.
const ReservedPunctuation = ":;,()"

func init() {
	for _, ch := range []byte(ReservedPunctuation) {
		reserved[ch] = true
	}
	// characters that force quoting when auto-quote is enabled
	for _, ch := range []byte(ReservedPunctuation + "'[]") {
		quotable[ch] = true
	}
}

var (
	reserved = [256]bool{}
	quotable = [256]bool{}
)

func isreserved(ch rune) bool {
	if 0 <= ch && ch < utf8.RuneSelf {
		return reserved[byte(ch)]
	}
	return false
}

func isquotable(ch rune) bool {
	if 0 <= ch && ch < utf8.RuneSelf {
		return quotable[byte(ch)] || isspace(ch)
	}
	return isspace(ch)
}

// isspace treats every unicode space, including end of line, as blank.
// Newick is free-form, so line breaks carry no meaning.
func isspace(ch rune) bool {
	return unicode.IsSpace(ch)
}
