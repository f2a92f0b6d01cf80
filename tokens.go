// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

// Token is a single annotated character from the input.
//
// The lexer emits exactly one token per rune, so the token stream can be
// sliced into statements and sibling groups without re-scanning.
type Token struct {
	Position

	// End is the byte offset in the original input slice.
	// It is exclusive: input[Start:End] is the token's lexeme.
	End int

	Rune rune
	Kind Kind

	// InQuote is true for every character of a quoted label, including
	// the opening and closing quotes.
	InQuote bool

	// CommentDepth is the comment nesting level of the character.
	// The outermost '[' and ']' of a comment have depth 1.
	CommentDepth int

	// Depth is the parenthesis nesting level. A '(' records the level
	// outside of the group it opens, and a ')' the level it returns to,
	// so the contents of a group are always one deeper than its parens.
	Depth int

	// Pending is true when a quote or comment is still open after this
	// token. A statement may not end on a pending token.
	Pending bool
}

// Is reports whether tok.Kind matches the provided kind.
//
// It returns false if tok is nil.
func (tok *Token) Is(kind Kind) bool {
	if tok == nil {
		return false
	}
	return tok.Kind == kind
}

// IsOneOf reports whether tok.Kind matches any of the provided kinds.
//
// It returns false if tok is nil.
func (tok *Token) IsOneOf(kinds ...Kind) bool {
	if tok == nil {
		return false
	}
	for _, kind := range kinds {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

// IsRegular reports whether the token is outside of quotes and comments.
// Only regular characters carry Newick syntax.
func (tok *Token) IsRegular() bool {
	return tok != nil && !tok.InQuote && tok.CommentDepth == 0
}

// IsStructural reports whether the token is a regular comma, colon,
// semicolon or parenthesis.
func (tok *Token) IsStructural() bool {
	return tok.IsOneOf(COLON, COMMA, LEFTPAREN, RIGHTPAREN, SEMICOLON)
}

// opensComment is true for the outermost '[' of a comment.
func (tok *Token) opensComment() bool {
	return tok.Kind == Comment && tok.CommentDepth == 1 && tok.Rune == '['
}

// closesComment is true for the outermost ']' of a comment.
func (tok *Token) closesComment() bool {
	return tok.Kind == Comment && tok.CommentDepth == 1 && tok.Rune == ']'
}

// Lexeme is a helper to return the original text of the token.
func (tok *Token) Lexeme(input []byte) []byte {
	return input[tok.Position.Start:tok.End]
}

// Position represents a position in the original source code.
// All fields are 1-based where applicable.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, character column
	Start  int // byte index into input (0-based); always required
}

// Span represents a range in the source: [Start, End).
type Span struct {
	// Byte offsets into the original input slice.
	// End is exclusive: input[Start:End] is the spanned text.
	Start int
	End   int

	// 1-based line and column of the *start* of the span.
	Line   int
	Column int
}

// Text is a helper to return the original text of the span.
func (s Span) Text(input []byte) []byte {
	return input[s.Start:s.End]
}

// spanFromToken creates a Span that covers a single token.
func spanFromToken(tok *Token) Span {
	return Span{
		Start:  tok.Position.Start,
		End:    tok.End,
		Line:   tok.Position.Line,
		Column: tok.Position.Column,
	}
}

// spanFromTokenSlice creates a Span from a slice of tokens (assumed non-empty).
func spanFromTokenSlice(toks []*Token) Span {
	if len(toks) == 0 {
		return Span{} // caller should avoid this
	}
	first, last := toks[0], toks[len(toks)-1]
	return Span{
		Start:  first.Position.Start,
		End:    last.End,
		Line:   first.Position.Line,
		Column: first.Position.Column,
	}
}

// textOf concatenates the runes of a token slice.
// A line break the lexer merged from "\r\n" is written back as both bytes.
func textOf(toks []*Token) string {
	buf := make([]rune, 0, len(toks))
	for _, tok := range toks {
		if tok.Rune == LF && tok.End-tok.Start == 2 {
			buf = append(buf, CR)
		}
		buf = append(buf, tok.Rune)
	}
	return string(buf)
}
