// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick_test

import (
	"errors"
	"testing"

	"github.com/mdhender/newick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, name, length string, options ...newick.Option) *newick.Node {
	t.Helper()
	n, err := newick.NewNode(name, length, options...)
	require.NoError(t, err)
	return n
}

func TestNode_Empty(t *testing.T) {
	n := mustNode(t, "", "")
	assert.False(t, n.HasName())
	length, err := n.Length()
	require.NoError(t, err)
	assert.Equal(t, 0.0, length)
	assert.Equal(t, "", n.Newick())
	assert.Empty(t, n.Descendants())
	assert.Nil(t, n.Ancestor())
}

func TestNode_Name(t *testing.T) {
	for _, name := range []string{"()", "A)", "a b", "x;y", "a,b", "a:b"} {
		_, err := newick.NewNode(name, "")
		var ve *newick.ValueError
		if !errors.As(err, &ve) {
			t.Errorf("NewNode(%q): want *ValueError, got %v", name, err)
			continue
		}
		assert.ErrorIs(t, err, newick.ErrInvalidValue)
		assert.Equal(t, "name", ve.Field)
	}

	n := mustNode(t, "a'b", "", newick.WithAutoQuote(true))
	assert.Equal(t, "'a''b'", n.Name())
	assert.Equal(t, "a'b", n.UnquotedName())

	require.NoError(t, n.SetName(":"))
	assert.Equal(t, "':'", n.Name())

	require.NoError(t, n.SetName("A"))
	assert.Equal(t, n.UnquotedName(), n.Name())
	assert.Equal(t, `Node("A")`, n.String())

	// already quoted names are taken as they are
	plain := mustNode(t, "'x y'", "")
	assert.Equal(t, "'x y'", plain.Name())
	assert.Equal(t, "x y", plain.UnquotedName())
}

func TestNode_Length(t *testing.T) {
	_, err := newick.NewNode("", ":")
	assert.ErrorIs(t, err, newick.ErrInvalidValue)

	n := mustNode(t, "A", "3")
	length, err := n.Length()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, length, 1e-12)
	assert.Equal(t, "A:3", n.Newick())

	n = mustNode(t, "", "10")
	length, _ = n.Length()
	assert.Equal(t, 10.0, length)
	require.NoError(t, n.SetRawLength("12"))
	length, _ = n.Length()
	assert.Equal(t, 12.0, length)

	assert.Error(t, n.SetRawLength("1 2"))
	assert.Equal(t, "12", n.RawLength())

	require.NoError(t, n.SetLength(2))
	assert.Equal(t, "2.0", n.RawLength())

	n.ClearLength()
	assert.False(t, n.HasLength())

	n = mustNode(t, "", "abc")
	_, err = n.Length()
	assert.ErrorIs(t, err, newick.ErrInvalidValue)
}

func TestNode_CustomLength(t *testing.T) {
	n := mustNode(t, "", "1e2", newick.WithLengthParser(func(raw string) (float64, error) {
		return 42, nil
	}))
	length, err := n.Length()
	require.NoError(t, err)
	assert.Equal(t, 42.0, length)
	assert.Equal(t, ":1e2", n.Newick())

	n = mustNode(t, "", "", newick.WithLengthFormatter(func(float64) string { return "5" }))
	require.NoError(t, n.SetLength(10))
	length, err = n.Length()
	require.NoError(t, err)
	assert.Equal(t, 5.0, length)

	n = mustNode(t, "", "", newick.WithLengthFormatter(func(f float64) string {
		return newick.FormatLength(f / 100)
	}))
	require.NoError(t, n.SetLength(100))
	assert.Equal(t, ":1.0", n.Newick())

	root := mustParseOne(t, "((a:1.e2,b:3j),(c:0x0BEFD6B0,d:003))")
	assert.Equal(t, "((a:1.e2,b:3j),(c:0x0BEFD6B0,d:003))", root.Newick())
}

func TestNode_Comments(t *testing.T) {
	n := mustNode(t, "A", "")
	n.SetComments("first", "second")
	assert.Equal(t, "A[first|second]", n.Newick())

	n = mustNode(t, "A", "")
	n.AddComment("first")
	n.AddComment("second")
	assert.Equal(t, "A[first|second]", n.Newick())
	assert.Equal(t, "first", n.Comment())

	// Comments returns a copy
	n.Comments()[0] = "changed"
	assert.Equal(t, "first", n.Comment())
}

func TestNode_Descendants(t *testing.T) {
	for _, names := range [][]string{{"D1.1", "D1.2", "D1.3"}, {"D", "", ""}, {"", "", ""}} {
		d1 := mustNode(t, names[0], "2.0")
		d2 := mustNode(t, names[1], "3.0")
		d3 := mustNode(t, names[2], "4.0")
		d1.AddDescendant(d2)
		d1.AddDescendant(d3)
		root := mustNode(t, "A", "1.0")
		root.AddDescendant(d1)

		want := "((" + names[1] + ":3.0," + names[2] + ":4.0)" + names[0] + ":2.0)A:1.0"
		assert.Equal(t, want, root.Newick())
		assert.Equal(t, []*newick.Node{d1}, root.Descendants())
		assert.Same(t, root, d1.Ancestor())
	}
}

func TestNode_AddDescendantMovesChild(t *testing.T) {
	a, b, c := mustNode(t, "A", ""), mustNode(t, "B", ""), mustNode(t, "C", "")
	a.AddDescendant(c)
	b.AddDescendant(c)
	assert.True(t, a.IsLeaf())
	assert.Same(t, b, c.Ancestor())
	assert.Equal(t, "(C)B", b.Newick())

	assert.True(t, b.RemoveDescendant(c))
	assert.Nil(t, c.Ancestor())
	assert.False(t, b.RemoveDescendant(c))
}

func TestNode_Clone(t *testing.T) {
	tree := mustParseOne(t, "(A,B,(C,D)E[c]:1)F")
	clone := tree.Clone()
	assert.Equal(t, tree.Newick(), clone.Newick())
	assert.Nil(t, clone.Ancestor())
	assert.Same(t, tree.Policy(), clone.Policy())

	clone.GetNode("E").AddComment("d")
	clone.RemoveNames()
	assert.Equal(t, "(A,B,(C,D)E[c]:1)F", tree.Newick())
	assert.Equal(t, "(,,(,)[c|d]:1)", clone.Newick())

	for _, n := range clone.Walk()[1:] {
		assert.NotNil(t, n.Ancestor())
	}
}

// building a tree node by node gives the same text as parsing it
func TestNode_Assemble(t *testing.T) {
	const text = "(A,B,(C,D)E)F"
	tree := mustParseOne(t, text)

	var clone func(n *newick.Node) *newick.Node
	clone = func(n *newick.Node) *newick.Node {
		c := mustNode(t, n.Name(), "")
		for _, d := range n.Descendants() {
			c.AddDescendant(clone(d))
		}
		return c
	}
	assert.Equal(t, text, clone(tree).Newick())
}
