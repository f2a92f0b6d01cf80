// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"slices"
)

// builder turns the tokens of one statement into a tree of nodes.
// Every node it creates shares the builder's policy.
type builder struct {
	policy *Policy
}

// build returns the node for a trimmed group of tokens.
//
// A group starting with '(' has children. The children are built first,
// then the tokens following the matching ')' are parsed as the node's
// label. Any other group is a leaf and all of its tokens are the label.
// Comments in front of a node's '(' are discarded.
func (b *builder) build(toks []*Token) (*Node, error) {
	for i, tok := range toks {
		if tok.Is(SPACE) || tok.Is(Comment) {
			continue
		} else if tok.Is(LEFTPAREN) {
			toks = toks[i:]
		}
		break
	}

	n := newNode(b.policy)
	label := toks
	if len(toks) != 0 && toks[0].Is(LEFTPAREN) {
		depth := toks[0].Depth
		end := slices.IndexFunc(toks, func(tok *Token) bool {
			return tok.Is(RIGHTPAREN) && tok.Depth == depth
		})
		if end < 0 {
			return nil, newSyntaxError(ErrMismatchedParens, toks, "missing ')'")
		}
		for _, sibling := range splitSiblings(toks[1:end], depth+1) {
			child, err := b.build(trimSpace(sibling))
			if err != nil {
				return nil, err
			}
			n.AddDescendant(child)
		}
		label = toks[end+1:]
	}

	if err := parseLabel(n, trimSpace(label)); err != nil {
		return nil, err
	}
	return n, nil
}

// labelPart collects the text of the name or the length of a label.
type labelPart struct {
	toks   []*Token
	text   bool // non-blank text has been seen
	closed bool // a comment followed the text; no more text is allowed
}

// parseLabel splits a label into name, comments and length.
//
// The first regular colon separates the name from the length. Comments
// may appear on either side of the colon and on either side of the text
// of the name or length. The placement is recorded in the node's layout
// so that the label is written back the way it was read.
func parseLabel(n *Node, toks []*Token) error {
	var name, length labelPart
	part := &name
	var comments []string
	var comment []*Token
	colonAt, lengthAt := -1, -1

	for _, tok := range toks {
		switch {
		case tok.Is(Comment):
			if tok.opensComment() {
				comment = []*Token{}
			} else if tok.closesComment() {
				comments = append(comments, textOf(comment))
				comment = nil
				if part.text {
					part.closed = true
				}
			} else {
				comment = append(comment, tok)
			}
		case tok.Is(COLON):
			if part == &length {
				return newSyntaxError(ErrInvalidLabel, toks, "more than one ':'")
			}
			part, colonAt = &length, len(comments)
		case tok.IsStructural():
			return newSyntaxError(ErrInvalidLabel, toks, "unexpected %q", tok.Rune)
		case tok.Is(SPACE):
			part.toks = append(part.toks, tok)
		default:
			if part.closed {
				return newSyntaxError(ErrInvalidLabel, toks, "text after comment")
			}
			if part == &length && !part.text {
				lengthAt = len(comments)
			}
			part.text = true
			part.toks = append(part.toks, tok)
		}
	}

	nameToks := trimSpace(name.toks)
	if err := checkName(nameToks, toks); err != nil {
		return err
	}
	lengthToks := trimSpace(length.toks)
	for _, tok := range lengthToks {
		if !tok.Is(Text) {
			return newSyntaxError(ErrInvalidLabel, toks, "invalid length %q", textOf(lengthToks))
		}
	}

	if colonAt < 0 {
		colonAt = len(comments)
	}
	if lengthAt < 0 {
		lengthAt = len(comments)
	}
	n.name = textOf(nameToks)
	n.length = textOf(lengthToks)
	n.comments = comments
	n.layout = labelLayout{parsed: true, comments: len(comments), colonAt: colonAt, lengthAt: lengthAt}
	return nil
}

// checkName rejects a name that is neither a single quoted label nor a
// run of unquoted characters without blanks.
func checkName(name, label []*Token) error {
	if len(name) == 0 {
		return nil
	}
	quoted := name[0].InQuote
	for _, tok := range name {
		if quoted && !tok.InQuote {
			return newSyntaxError(ErrInvalidLabel, label, "text after quoted name")
		} else if !quoted && tok.InQuote {
			return newSyntaxError(ErrInvalidLabel, label, "quote inside unquoted name")
		} else if tok.Is(SPACE) {
			return newSyntaxError(ErrInvalidLabel, label, "blank inside unquoted name")
		}
	}
	return nil
}
