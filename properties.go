// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"strings"
)

// nhxPrefix starts a New Hampshire eXtended annotation.
const nhxPrefix = "&&NHX:"

// Properties returns the key=value pairs found in the node's comments.
//
// NHX comments ("&&NHX:k1=v1:k2=v2") are split on colons. Any other
// comment has a leading '&' removed and is split on commas that are not
// inside braces, so a value like {0.1,0.2} stays whole. Pieces without an
// '=' are ignored, and a later key replaces an earlier one.
func (n *Node) Properties() map[string]string {
	props := map[string]string{}
	for _, comment := range n.comments {
		var pairs []string
		if rest, ok := strings.CutPrefix(comment, nhxPrefix); ok {
			pairs = strings.Split(rest, ":")
		} else {
			pairs = splitOutsideBraces(strings.TrimPrefix(comment, "&"))
		}
		for _, pair := range pairs {
			if key, value, ok := strings.Cut(pair, "="); ok {
				props[key] = value
			}
		}
	}
	return props
}

// splitOutsideBraces splits s on commas that are not nested in {...}.
func splitOutsideBraces(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, ch := range s {
		switch ch {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
