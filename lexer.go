// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Lexer invariants and coordinate system
//
// The lexer treats input as an immutable UTF-8 byte slice and emits one
// Token per rune. Alongside the rune cursor it threads three independent
// counters through a single linear scan:
//
//   inQuote      - inside a '...' label. '' and \' are escaped quotes and
//                  do not terminate the label.
//   commentDepth - nesting of [...] comments. Comments may nest, and quotes
//                  and parentheses inside a comment mean nothing.
//   depth        - nesting of (...) groups, tracked only for regular
//                  characters (outside of quotes and comments).
//
// Cursor fields:
//   r           - the current rune, or EOF when we have read past the end.
//                 "\r\n" is seen as a single "\n" rune.
//   posCurrRune - index into input of the first byte of r,
//                 or length when r == EOF.
//   posNextRune - index into input of the first byte of the *next* rune,
//                 or length when r == EOF.
//
// Invariants (must always hold):
//   0 <= posCurrRune <= posNextRune <= length
//   r == EOF  <=> posCurrRune == posNextRune == length
//
// A closing ')' or ']' that would take its counter below zero is an error
// reported at the offending rune; the scan stops there.

type Lexer struct {
	name        string // name of the input source
	r           rune   // current rune
	line        int    // line number of current rune
	column      int    // column number of current rune
	posCurrRune int    // position of current rune
	posNextRune int    // position of next rune
	length      int    // length of input buffer
	input       []byte

	inQuote      bool
	escape       bool // current rune is the second half of '' or \'
	commentDepth int
	depth        int

	// index of the first token of the current statement, for error fragments
	statementStart int

	logger     *slog.Logger
	tokenCount int
}

func NewLexer(path string, input []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		name:   path,
		input:  input,
		length: len(input),
		line:   1,
		column: 0,
		logger: logger,
	}
	// read the first character to initialize the lexer.
	l.advance()
	return l
}

// Tokenize scans the entire input and returns one token per rune.
func (l *Lexer) Tokenize() ([]*Token, error) {
	toks := make([]*Token, 0, l.length)
	for !l.iseof() {
		tok, err := l.scan(toks)
		if err != nil {
			l.debug("tokenize: %v", err)
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Is(SEMICOLON) && tok.Depth == 0 {
			l.statementStart = len(toks)
		}
	}
	l.tokenCount = len(toks)
	l.debug("tokenize: %d tokens, depth %d, comment depth %d, in quote %v", l.tokenCount, l.depth, l.commentDepth, l.inQuote)
	return toks, nil
}

// scan annotates the current rune and advances past it.
// toks is only used to report the statement fragment on error.
func (l *Lexer) scan(toks []*Token) (*Token, error) {
	tok := &Token{
		Position: Position{
			Line:   l.line,
			Column: l.column,
			Start:  l.posCurrRune,
		},
		Rune:  l.r,
		Depth: l.depth,
	}

	ch := l.r
	switch {
	case l.inQuote:
		tok.Kind, tok.InQuote = Quoted, true
		if l.escape {
			l.escape = false
		} else if (ch == '\'' || ch == '\\') && l.peekCharN(1) == '\'' {
			l.escape = true
		} else if ch == '\'' {
			l.inQuote = false
		}
	case l.commentDepth > 0:
		tok.Kind = Comment
		switch ch {
		case '[':
			l.commentDepth++
			tok.CommentDepth = l.commentDepth
		case ']':
			tok.CommentDepth = l.commentDepth
			l.commentDepth--
		default:
			tok.CommentDepth = l.commentDepth
		}
	default:
		switch ch {
		case '\'':
			tok.Kind, tok.InQuote = Quoted, true
			l.inQuote = true
		case '[':
			tok.Kind, tok.CommentDepth = Comment, 1
			l.commentDepth = 1
		case ']':
			l.advance()
			tok.End = l.posCurrRune
			return nil, newSyntaxError(ErrUnbalancedComment, trimSpace(append(toks[l.statementStart:], tok)), "unexpected ']'")
		case '(':
			tok.Kind = LEFTPAREN
			l.depth++
		case ')':
			if l.depth == 0 {
				l.advance()
				tok.End = l.posCurrRune
				return nil, newSyntaxError(ErrUnbalancedParens, trimSpace(append(toks[l.statementStart:], tok)), "unexpected ')'")
			}
			l.depth--
			tok.Kind, tok.Depth = RIGHTPAREN, l.depth
		case ',':
			tok.Kind = COMMA
		case ':':
			tok.Kind = COLON
		case ';':
			tok.Kind = SEMICOLON
		default:
			if isspace(ch) {
				tok.Kind = SPACE
			} else {
				tok.Kind = Text
			}
		}
	}
	tok.Pending = l.inQuote || l.commentDepth > 0

	l.advance()
	tok.End = l.posCurrRune
	return tok, nil
}

// peekCharN returns the nth character without advancing the input.
// peekCharN(0) is the same as the current rune.
func (l *Lexer) peekCharN(numberOfChars int) rune {
	if numberOfChars < 0 {
		panic("assert(numberOfChars >= 0)")
	}
	ch := l.r

	posPeekRune := l.posNextRune
	for numberOfChars > 0 && posPeekRune < l.length {
		r, w := rune(l.input[posPeekRune]), 1
		if r == CR && posPeekRune+1 < l.length && rune(l.input[posPeekRune+1]) == LF {
			ch, w = LF, 2
		} else if r >= utf8.RuneSelf {
			ch, w = utf8.DecodeRune(l.input[posPeekRune:])
		} else {
			ch = r
		}
		posPeekRune += w
		numberOfChars--
	}

	if numberOfChars > 0 {
		// we reached end of input before peeking the requested number of characters
		ch = EOF
	}

	return ch
}

// advance moves to the next rune and updates line/col.
// It normalizes "\r\n" into a single LF rune.
// On end of input, it sets r == EOF and both positions to length and returns.
func (l *Lexer) advance() {
	// already at or past the end?
	if l.posNextRune >= l.length {
		if l.r == LF {
			l.line++
			l.column = 1
		} else if l.r != EOF {
			l.column++
		}
		l.posCurrRune, l.posNextRune = l.length, l.length
		l.r = EOF
		return
	}

	// update line/col wrt the *current* rune before stepping
	if l.r == LF {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.posCurrRune = l.posNextRune

	// read the next rune, optimizing for ASCII input.
	r, w := rune(l.input[l.posCurrRune]), 1
	if r == CR && l.posCurrRune+1 < l.length && rune(l.input[l.posCurrRune+1]) == LF {
		// merge CR+LF into a single LF rune, but consume both bytes
		r, w = LF, 2
	} else if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(l.input[l.posCurrRune:])
	}
	l.posNextRune = l.posCurrRune + w
	l.r = r
}

func (l *Lexer) iseof() bool {
	return l.r == EOF
}

func (l *Lexer) debug(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf("%s:%d:%d %s", l.name, l.line, l.column, fmt.Sprintf(format, args...)))
}
