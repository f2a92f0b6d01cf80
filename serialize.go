// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
	"io"
	"strings"
)

// Newick returns the subtree rooted at n as Newick text, without the
// terminating semicolon.
func (n *Node) Newick() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

// write renders the subtree without recursion, so that deep trees do not
// exhaust the stack.
func (n *Node) write(sb *strings.Builder) {
	type frame struct {
		node *Node
		next int
	}
	stack := []frame{{node: n}}
	for len(stack) != 0 {
		top := &stack[len(stack)-1]
		if len(top.node.descendants) == 0 {
			top.node.writeLabel(sb)
			stack = stack[:len(stack)-1]
			continue
		}
		if top.next == 0 {
			sb.WriteByte('(')
		} else if top.next < len(top.node.descendants) {
			sb.WriteByte(',')
		}
		if top.next < len(top.node.descendants) {
			child := top.node.descendants[top.next]
			top.next++
			stack = append(stack, frame{node: child})
			continue
		}
		sb.WriteByte(')')
		top.node.writeLabel(sb)
		stack = stack[:len(stack)-1]
	}
}

// writeLabel renders the name, comments and length of the node.
//
// A parsed label whose comments have not changed is written with the
// colon and the length in their original places among the comments.
// Otherwise the comments are joined into a single [c1|c2] block written
// before the colon.
func (n *Node) writeLabel(sb *strings.Builder) {
	sb.WriteString(n.name)
	if n.layout.parsed && n.layout.comments == len(n.comments) {
		for i := 0; i <= len(n.comments); i++ {
			if n.length != "" {
				if i == n.layout.colonAt {
					sb.WriteByte(':')
				}
				if i == n.layout.lengthAt {
					sb.WriteString(n.length)
				}
			}
			if i < len(n.comments) {
				sb.WriteByte('[')
				sb.WriteString(n.comments[i])
				sb.WriteByte(']')
			}
		}
		return
	}

	// a label parsed with every comment after the colon keeps that order
	colonBeforeComment := n.layout.parsed && n.layout.comments != 0 && n.layout.colonAt == 0
	colonDone := false
	if len(n.comments) != 0 {
		if n.length != "" && colonBeforeComment {
			sb.WriteByte(':')
			colonDone = true
		}
		sb.WriteByte('[')
		sb.WriteString(strings.Join(n.comments, "|"))
		sb.WriteByte(']')
	}
	if n.length != "" {
		if !colonDone {
			sb.WriteByte(':')
		}
		sb.WriteString(n.length)
	}
}

// Dumps returns the trees as a Newick document, one tree per line, each
// terminated by a semicolon.
func Dumps(trees ...*Node) string {
	var sb strings.Builder
	for i, tree := range trees {
		if i != 0 {
			sb.WriteString("\n")
		}
		tree.write(&sb)
		sb.WriteByte(';')
	}
	if len(trees) == 0 {
		sb.WriteByte(';')
	}
	return sb.String()
}

// Dump writes the trees to w as a Newick document.
func Dump(w io.Writer, trees ...*Node) error {
	if _, err := io.WriteString(w, Dumps(trees...)); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	return nil
}
