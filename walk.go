// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"slices"
)

// WalkMode selects the order in which a subtree is visited.
type WalkMode int

const (
	// PreOrder visits a node, then the subtree of each child from left
	// to right.
	PreOrder WalkMode = iota
	// PostOrder visits a node after all of its descendants.
	PostOrder
)

// Walk returns the nodes of the subtree rooted at n in pre-order.
func (n *Node) Walk() []*Node {
	var nodes []*Node
	stack := []*Node{n}
	for len(stack) != 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, node)
		for i := len(node.descendants) - 1; i >= 0; i-- {
			stack = append(stack, node.descendants[i])
		}
	}
	return nodes
}

// PostOrder returns the nodes of the subtree rooted at n, each node
// following all of its descendants.
//
// The order is computed before anything is returned, so callers may
// restructure the tree while ranging over the result.
func (n *Node) PostOrder() []*Node {
	type frame struct {
		node *Node
		next int // index of the next child to descend into
	}
	var nodes []*Node
	stack := []frame{{node: n}}
	for len(stack) != 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.descendants) {
			child := top.node.descendants[top.next]
			top.next++
			stack = append(stack, frame{node: child})
			continue
		}
		nodes = append(nodes, top.node)
		stack = stack[:len(stack)-1]
	}
	return nodes
}

// Visit calls visitor for every node in the subtree that matches the
// predicate. A nil predicate matches every node.
//
// In PreOrder mode a node's children are read after the visitor returns,
// so the visitor may change them. In PostOrder mode the order is fixed
// before the first call.
func (n *Node) Visit(visitor func(*Node), predicate func(*Node) bool, mode WalkMode) {
	if predicate == nil {
		predicate = func(*Node) bool { return true }
	}
	if mode == PostOrder {
		for _, node := range n.PostOrder() {
			if predicate(node) {
				visitor(node)
			}
		}
		return
	}
	stack := []*Node{n}
	for len(stack) != 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if predicate(node) {
			visitor(node)
		}
		for i := len(node.descendants) - 1; i >= 0; i-- {
			stack = append(stack, node.descendants[i])
		}
	}
}

// Leaves returns the leaves of the subtree in pre-order.
func (n *Node) Leaves() []*Node {
	return slices.DeleteFunc(n.Walk(), func(node *Node) bool {
		return !node.IsLeaf()
	})
}

// LeafNames returns the names of the leaves of the subtree in pre-order.
func (n *Node) LeafNames() []string {
	var names []string
	for _, leaf := range n.Leaves() {
		names = append(names, leaf.name)
	}
	return names
}

// GetNode returns the first node in pre-order whose name equals label,
// or nil if there is no such node. The label is compared with the name
// as stored, so a quoted name must be given with its quotes.
func (n *Node) GetNode(label string) *Node {
	for _, node := range n.Walk() {
		if node.name == label {
			return node
		}
	}
	return nil
}

// IsBinary reports whether every node in the subtree has zero or two children.
func (n *Node) IsBinary() bool {
	for _, node := range n.Walk() {
		if len(node.descendants) != 0 && len(node.descendants) != 2 {
			return false
		}
	}
	return true
}
