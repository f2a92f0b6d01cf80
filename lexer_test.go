// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick_test

import (
	"errors"
	"testing"

	"github.com/mdhender/newick"
)

func tokenize(t *testing.T, input string) []*newick.Token {
	t.Helper()
	toks, err := newick.NewLexer("", []byte(input), nil).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", input, err)
	}
	return toks
}

func TestLexer_OneTokenPerRune(t *testing.T) {
	input := "(Fäß,'x y')[c];"
	toks := tokenize(t, input)
	if got, want := len(toks), len([]rune(input)); got != want {
		t.Fatalf("len(toks) = %d, want %d", got, want)
	}
	for _, tok := range toks {
		if got := string(tok.Lexeme([]byte(input))); got != string(tok.Rune) {
			t.Errorf("%d:%d: lexeme %q, rune %q", tok.Line, tok.Column, got, string(tok.Rune))
		}
	}
}

func TestLexer_Kinds(t *testing.T) {
	input := "(A:1,'B;,:'[c,;:])C;"
	want := []struct {
		kind         newick.Kind
		inQuote      bool
		commentDepth int
		depth        int
	}{
		{newick.LEFTPAREN, false, 0, 0},
		{newick.Text, false, 0, 1},
		{newick.COLON, false, 0, 1},
		{newick.Text, false, 0, 1},
		{newick.COMMA, false, 0, 1},
		{newick.Quoted, true, 0, 1},
		{newick.Quoted, true, 0, 1},
		{newick.Quoted, true, 0, 1},
		{newick.Quoted, true, 0, 1},
		{newick.Quoted, true, 0, 1},
		{newick.Quoted, true, 0, 1},
		{newick.Comment, false, 1, 1},
		{newick.Comment, false, 1, 1},
		{newick.Comment, false, 1, 1},
		{newick.Comment, false, 1, 1},
		{newick.Comment, false, 1, 1},
		{newick.Comment, false, 1, 1},
		{newick.RIGHTPAREN, false, 0, 0},
		{newick.Text, false, 0, 0},
		{newick.SEMICOLON, false, 0, 0},
	}
	toks := tokenize(t, input)
	if len(toks) != len(want) {
		t.Fatalf("len(toks) = %d, want %d", len(toks), len(want))
	}
	for i, tok := range toks {
		w := want[i]
		if tok.Kind != w.kind || tok.InQuote != w.inQuote || tok.CommentDepth != w.commentDepth || tok.Depth != w.depth {
			t.Errorf("%d: %q: got {%s %v %d %d}, want {%s %v %d %d}", i, tok.Rune,
				tok.Kind, tok.InQuote, tok.CommentDepth, tok.Depth,
				w.kind, w.inQuote, w.commentDepth, w.depth)
		}
		if tok.IsRegular() == (tok.InQuote || tok.CommentDepth != 0) {
			t.Errorf("%d: %q: IsRegular = %v", i, tok.Rune, tok.IsRegular())
		}
	}
}

func TestLexer_QuoteEscapes(t *testing.T) {
	for _, input := range []string{`'A''B'`, `'A\'B'`, `'''A'`, `'A'''`} {
		toks := tokenize(t, input)
		for i, tok := range toks {
			if !tok.InQuote {
				t.Errorf("%s: %d: InQuote = false", input, i)
			}
			if pending := i != len(toks)-1; tok.Pending != pending {
				t.Errorf("%s: %d: Pending = %v, want %v", input, i, tok.Pending, pending)
			}
		}
	}
}

func TestLexer_NestedComments(t *testing.T) {
	toks := tokenize(t, "[a[b]c]d")
	depths := []int{1, 1, 2, 2, 2, 1, 1, 0}
	for i, tok := range toks {
		if tok.CommentDepth != depths[i] {
			t.Errorf("%d: %q: CommentDepth = %d, want %d", i, tok.Rune, tok.CommentDepth, depths[i])
		}
	}
	if !toks[5].Pending || toks[6].Pending {
		t.Errorf("Pending: want true before the last ']' and false after")
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := tokenize(t, "(A,\r\nB)")
	// \r\n is a single token
	if got, want := len(toks), 6; got != want {
		t.Fatalf("len(toks) = %d, want %d", got, want)
	}
	b := toks[4]
	if b.Rune != 'B' || b.Line != 2 || b.Column != 1 || b.Start != 5 {
		t.Errorf("B: got %q at %d:%d (%d)", b.Rune, b.Line, b.Column, b.Start)
	}
	if nl := toks[3]; nl.Kind != newick.SPACE || nl.End-nl.Start != 2 {
		t.Errorf("newline: got %s spanning %d bytes", nl.Kind, nl.End-nl.Start)
	}
}

func TestLexer_Unbalanced(t *testing.T) {
	for input, want := range map[string]error{
		")":         newick.ErrUnbalancedParens,
		"(A));":     newick.ErrUnbalancedParens,
		"A];":       newick.ErrUnbalancedComment,
		"[A]]":      newick.ErrUnbalancedComment,
		"A;\n B)C":  newick.ErrUnbalancedParens,
		"'A)'[)]);": newick.ErrUnbalancedParens,
	} {
		_, err := newick.NewLexer("", []byte(input), nil).Tokenize()
		if !errors.Is(err, want) {
			t.Errorf("Tokenize(%q): got %v, want %v", input, err, want)
		}
	}

	// quotes and comments hide brackets
	for _, input := range []string{"')'", "[)]", "[']'", "'['"} {
		if _, err := newick.NewLexer("", []byte(input), nil).Tokenize(); err != nil {
			t.Errorf("Tokenize(%q): %v", input, err)
		}
	}
}
