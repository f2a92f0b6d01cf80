// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

// Kind classifies the syntactic role of a single token.
//
// The structural kinds (COMMA, COLON, SEMICOLON, LEFTPAREN and RIGHTPAREN)
// are only assigned to regular characters, i.e. characters outside of
// quoted labels and comments. A comma inside 'A,B' is a Quoted token and
// never splits siblings.
type Kind int

const (
	UNKNOWN Kind = iota

	COLON
	COMMA
	LEFTPAREN
	RIGHTPAREN
	SEMICOLON
	SPACE // regular whitespace, including end of line

	Comment // any character inside [...], brackets included
	Quoted  // any character inside '...', quotes included
	Text    // any other regular character

	EndOfInput
)

func (k Kind) String() string {
	switch k {
	case COLON:
		return "COLON"
	case COMMA:
		return "COMMA"
	case LEFTPAREN:
		return "LEFTPAREN"
	case RIGHTPAREN:
		return "RIGHTPAREN"
	case SEMICOLON:
		return "SEMICOLON"
	case SPACE:
		return "SPACE"
	case Comment:
		return "Comment"
	case Quoted:
		return "Quoted"
	case Text:
		return "Text"
	case EndOfInput:
		return "EndOfInput"
	}
	return "UNKNOWN"
}
