// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
)

// Prune removes nodes from the subtree rooted at n.
//
// Without inverse, every node in nodes is removed along with its subtree.
// With inverse, every leaf not in nodes is removed, and internal nodes
// left without children are then removed in turn. The root is never
// removed.
func (n *Node) Prune(nodes []*Node, inverse bool) {
	set := make(map[*Node]bool, len(nodes))
	for _, node := range nodes {
		set[node] = true
	}
	n.Visit(func(node *Node) {
		node.ancestor.RemoveDescendant(node)
	}, func(node *Node) bool {
		if node == n || node.ancestor == nil {
			return false
		}
		if inverse {
			return node.IsLeaf() && !set[node]
		}
		return set[node]
	}, PostOrder)
}

// PruneByNames is Prune for the first node found with each name.
func (n *Node) PruneByNames(names []string, inverse bool) {
	var nodes []*Node
	for _, name := range names {
		if node := n.GetNode(name); node != nil {
			nodes = append(nodes, node)
		}
	}
	n.Prune(nodes, inverse)
}

// PruneLeaves is Prune restricted to leaves.
// It returns ErrNotLeaf without changing the tree if any node is not a leaf.
func (n *Node) PruneLeaves(nodes []*Node, inverse bool) error {
	for _, node := range nodes {
		if !node.IsLeaf() {
			return fmt.Errorf("%s: %w", node, ErrNotLeaf)
		}
	}
	n.Prune(nodes, inverse)
	return nil
}

// RemoveRedundantNodes removes every node with a single child, attaching
// the child to the removed node's parent. Chains of single-child nodes
// collapse completely. When the root has a single child, the root takes
// over that child's children.
//
// With preserveLengths, the length of a removed node is added to the
// length of the child that replaces it. With keepLeafName, the surviving
// node takes the name of the child; otherwise the name of the node closer
// to the root is kept.
//
// If preserveLengths is set, every length in the subtree must parse, and
// the tree is not changed when one does not.
func (n *Node) RemoveRedundantNodes(preserveLengths, keepLeafName bool) error {
	if preserveLengths {
		for _, node := range n.Walk() {
			if _, err := node.Length(); err != nil {
				return err
			}
		}
	}

	for _, node := range n.PostOrder() {
		for node != n && node.ancestor != nil && len(node.ancestor.descendants) == 1 {
			father := node.ancestor
			if preserveLengths {
				if err := node.addLength(father); err != nil {
					return err
				}
			}
			if keepLeafName {
				father.name = node.name
			}

			if father != n {
				grandfather := father.ancestor
				grandfather.RemoveDescendant(father)
				grandfather.AddDescendant(node)
				continue
			}

			// the root stays, its only child is replaced by its grandchildren
			father.RemoveDescendant(node)
			for _, child := range node.Descendants() {
				father.AddDescendant(child)
			}
			if preserveLengths {
				father.length = node.length
			}
		}
	}
	return nil
}

// addLength adds the length of other to the length of n.
func (n *Node) addLength(other *Node) error {
	a, err := n.Length()
	if err != nil {
		return err
	}
	b, err := other.Length()
	if err != nil {
		return err
	}
	return n.SetLength(a + b)
}

// ResolvePolytomies makes the subtree binary. A node with more than two
// children keeps its first child; the others are moved, last child first,
// under a new node with a zero length, which becomes the second child.
// The new node is resolved in turn.
func (n *Node) ResolvePolytomies() {
	n.Visit(func(node *Node) {
		resolved := newNode(node.policy)
		resolved.length = node.policy.format(0)
		for len(node.descendants) > 1 {
			resolved.AddDescendant(node.descendants[len(node.descendants)-1])
		}
		node.AddDescendant(resolved)
	}, func(node *Node) bool {
		return len(node.descendants) > 2
	}, PreOrder)
}

// RemoveNames clears the name of every node in the subtree.
func (n *Node) RemoveNames() {
	n.Visit((*Node).ClearName, nil, PreOrder)
}

// RemoveInternalNames clears the name of every internal node in the subtree.
func (n *Node) RemoveInternalNames() {
	n.Visit((*Node).ClearName, func(node *Node) bool { return !node.IsLeaf() }, PreOrder)
}

// RemoveLeafNames clears the name of every leaf in the subtree.
func (n *Node) RemoveLeafNames() {
	n.Visit((*Node).ClearName, (*Node).IsLeaf, PreOrder)
}

// RemoveLengths clears the length of every node in the subtree.
func (n *Node) RemoveLengths() {
	n.Visit((*Node).ClearLength, nil, PreOrder)
}

// StripComments removes the comments of every node in the subtree.
func (n *Node) StripComments() {
	n.Visit(func(node *Node) {
		node.SetComments()
	}, nil, PreOrder)
}

// Rename replaces every name that is a key in mapping with its value.
// Names are matched as stored. New names are validated as with SetName;
// if any is invalid, no node is renamed.
func (n *Node) Rename(mapping map[string]string) error {
	type rename struct {
		node *Node
		name string
	}
	var renames []rename
	for _, node := range n.Walk() {
		if to, ok := mapping[node.name]; ok && node.name != "" {
			name, err := node.policy.checkName(to)
			if err != nil {
				return err
			}
			renames = append(renames, rename{node: node, name: name})
		}
	}
	for _, r := range renames {
		r.node.name = r.name
	}
	return nil
}
