// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

// splitStatements splits the token stream on regular semicolons at depth
// zero. Each statement is trimmed of blanks, empty statements are dropped
// and the terminating semicolon is not included. A trailing statement
// without a semicolon is still returned.
//
// When stripComments is set, comment tokens are dropped from each statement.
func splitStatements(toks []*Token, stripComments bool) ([][]*Token, error) {
	var statements [][]*Token
	start := 0
	for i := 0; i <= len(toks); i++ {
		if i < len(toks) && !(toks[i].Is(SEMICOLON) && toks[i].Depth == 0) {
			continue
		}
		group := trimSpace(toks[start:i])
		start = i + 1
		if len(group) == 0 {
			continue
		}
		if err := checkStatement(group); err != nil {
			return nil, err
		}
		if stripComments {
			group = trimSpace(withoutComments(group))
			if len(group) == 0 {
				continue
			}
		}
		statements = append(statements, group)
	}
	return statements, nil
}

func withoutComments(toks []*Token) []*Token {
	kept := make([]*Token, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind != Comment {
			kept = append(kept, tok)
		}
	}
	return kept
}

// checkStatement verifies that a statement closes every group and every
// quote or comment it opens.
func checkStatement(toks []*Token) error {
	last := toks[len(toks)-1]
	if depth := depthAfter(last); depth != 0 {
		return newSyntaxError(ErrMismatchedParens, toks, "statement ends at depth %d", depth)
	}
	if last.Pending {
		if last.InQuote {
			return newSyntaxError(ErrUnterminatedQuote, toks, "statement ends inside a quoted label")
		}
		return newSyntaxError(ErrUnterminatedComment, toks, "statement ends inside a comment")
	}
	return nil
}

// depthAfter returns the nesting level following the token.
func depthAfter(tok *Token) int {
	if tok.Is(LEFTPAREN) {
		return tok.Depth + 1
	}
	return tok.Depth
}

// splitSiblings splits the contents of a group on regular commas at the
// given depth. It always returns at least one sibling; an empty sibling is
// an unnamed leaf.
func splitSiblings(toks []*Token, depth int) [][]*Token {
	var siblings [][]*Token
	start := 0
	for i, tok := range toks {
		if tok.Is(COMMA) && tok.Depth == depth {
			siblings = append(siblings, toks[start:i])
			start = i + 1
		}
	}
	return append(siblings, toks[start:])
}

// trimSpace removes leading and trailing blanks.
func trimSpace(toks []*Token) []*Token {
	for len(toks) != 0 && toks[0].Is(SPACE) {
		toks = toks[1:]
	}
	for len(toks) != 0 && toks[len(toks)-1].Is(SPACE) {
		toks = toks[:len(toks)-1]
	}
	return toks
}
