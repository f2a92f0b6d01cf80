// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
	"slices"
	"strings"
)

// Policy is the length and naming policy shared by the nodes of a tree.
type Policy struct {
	ParseLength  LengthParser
	FormatLength LengthFormatter
	AutoQuote    bool
}

var defaultPolicy = &Policy{ParseLength: ParseLength, FormatLength: FormatLength}

func (p *Policy) parse(raw string) (float64, error) {
	if p == nil || p.ParseLength == nil {
		return ParseLength(raw)
	}
	return p.ParseLength(raw)
}

func (p *Policy) format(length float64) string {
	if p == nil || p.FormatLength == nil {
		return FormatLength(length)
	}
	return p.FormatLength(length)
}

// Node is a tree, a subtree or a leaf.
//
// The descendants list owns the children. The ancestor link is only used
// to navigate upwards and is cleared whenever a node is removed from its
// parent.
type Node struct {
	name        string // stored quoted if it was quoted; "" is no name
	length      string // raw text; "" is no length
	comments    []string
	layout      labelLayout
	descendants []*Node
	ancestor    *Node
	policy      *Policy
}

// labelLayout records where the colon sat among the comments of a parsed
// label, so that the label is written back exactly as it was read.
type labelLayout struct {
	parsed   bool
	comments int // number of comments in the parsed label
	colonAt  int // number of comments before the colon
	lengthAt int // number of comments before the length
}

// NewNode returns a node with the given name and raw length.
// Both are validated as if assigned with SetName and SetRawLength.
func NewNode(name, length string, options ...Option) (*Node, error) {
	cfg, err := NewConfig(options...)
	if err != nil {
		return nil, err
	}
	n := newNode(cfg.Policy())
	if err := n.SetName(name); err != nil {
		return nil, err
	}
	if err := n.SetRawLength(length); err != nil {
		return nil, err
	}
	return n, nil
}

func newNode(policy *Policy) *Node {
	if policy == nil {
		policy = defaultPolicy
	}
	return &Node{policy: policy}
}

// String implements the fmt.Stringer interface.
func (n *Node) String() string {
	return fmt.Sprintf("Node(%q)", n.name)
}

// Name returns the name as stored, including quotes if it is quoted.
func (n *Node) Name() string {
	return n.name
}

// HasName reports whether the node is named.
func (n *Node) HasName() bool {
	return n.name != ""
}

// UnquotedName returns the name with the outer quotes removed and
// escaped quotes restored.
func (n *Node) UnquotedName() string {
	return unquote(n.name)
}

// SetName assigns a name. A quoted name is stored as given.
// An unquoted name containing reserved punctuation or whitespace is
// quoted when the policy allows it and rejected otherwise.
func (n *Node) SetName(name string) error {
	name, err := n.policy.checkName(name)
	if err != nil {
		return err
	}
	n.name = name
	return nil
}

// ClearName removes the name.
func (n *Node) ClearName() {
	n.name = ""
}

// Length converts the raw length with the node's length parser.
// A node without a length has a length of 0.0 under the default policy.
func (n *Node) Length() (float64, error) {
	return n.policy.parse(n.length)
}

// RawLength returns the length text as stored.
func (n *Node) RawLength() string {
	return n.length
}

// HasLength reports whether the node has a branch length.
func (n *Node) HasLength() bool {
	return n.length != ""
}

// SetLength stores length formatted with the node's length formatter.
func (n *Node) SetLength(length float64) error {
	return n.SetRawLength(n.policy.format(length))
}

// SetRawLength stores the text of a length verbatim.
func (n *Node) SetRawLength(raw string) error {
	if strings.ContainsFunc(raw, func(ch rune) bool { return isreserved(ch) || isspace(ch) }) {
		return &ValueError{Field: "length", Value: raw, Reason: "must not contain " + ReservedPunctuation + " or whitespace"}
	}
	n.length = raw
	return nil
}

// ClearLength removes the branch length.
func (n *Node) ClearLength() {
	n.length = ""
}

// Comments returns a copy of the node's comments.
func (n *Node) Comments() []string {
	return slices.Clone(n.comments)
}

// Comment returns the first comment, or "" if there are none.
func (n *Node) Comment() string {
	if len(n.comments) == 0 {
		return ""
	}
	return n.comments[0]
}

// AddComment appends a comment.
func (n *Node) AddComment(comment string) {
	n.comments = append(n.comments, comment)
}

// SetComments replaces all comments.
func (n *Node) SetComments(comments ...string) {
	n.comments = slices.Clone(comments)
	n.layout = labelLayout{}
}

// Policy returns the node's length and naming policy.
func (n *Node) Policy() *Policy {
	return n.policy
}

// Ancestor returns the parent, or nil for a root.
func (n *Node) Ancestor() *Node {
	return n.ancestor
}

// Descendants returns a copy of the list of children.
func (n *Node) Descendants() []*Node {
	return slices.Clone(n.descendants)
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.descendants) == 0
}

// AddDescendant appends child to the list of children.
// A child that already has a parent is removed from it first.
func (n *Node) AddDescendant(child *Node) {
	if child.ancestor != nil {
		child.ancestor.RemoveDescendant(child)
	}
	child.ancestor = n
	n.descendants = append(n.descendants, child)
}

// RemoveDescendant removes child from the list of children.
// It returns false if child is not a child of n.
func (n *Node) RemoveDescendant(child *Node) bool {
	i := slices.Index(n.descendants, child)
	if i < 0 {
		return false
	}
	n.descendants = slices.Delete(n.descendants, i, i+1)
	child.ancestor = nil
	return true
}

// Clone returns a deep copy of the subtree rooted at n.
// The copy shares the policy of n and has no ancestor.
func (n *Node) Clone() *Node {
	c := &Node{
		name:     n.name,
		length:   n.length,
		comments: slices.Clone(n.comments),
		layout:   n.layout,
		policy:   n.policy,
	}
	for _, child := range n.descendants {
		cc := child.Clone()
		cc.ancestor = c
		c.descendants = append(c.descendants, cc)
	}
	return c
}

// checkName returns the name to store for the requested name.
func (p *Policy) checkName(name string) (string, error) {
	if name == "" || isQuoted(name) {
		return name, nil
	}
	if p != nil && p.AutoQuote {
		if strings.ContainsFunc(name, isquotable) {
			return quote(name), nil
		}
		return name, nil
	}
	if strings.ContainsFunc(name, func(ch rune) bool { return isreserved(ch) || isspace(ch) }) {
		return "", &ValueError{Field: "name", Value: name, Reason: "must not contain " + ReservedPunctuation + " or whitespace"}
	}
	return name, nil
}

// isQuoted is true if s starts and ends with a single quote.
func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func unquote(s string) string {
	if !isQuoted(s) {
		return s
	}
	s = s[1 : len(s)-1]
	s = strings.ReplaceAll(s, "''", "'")
	return strings.ReplaceAll(s, `\'`, "'")
}
