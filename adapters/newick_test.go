// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package adapters_test

import (
	"testing"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeToRows(t *testing.T) {
	trees, err := newick.Parse("(A:1,'B C'[x],(D,E)F)G;")
	require.NoError(t, err)

	rows := adapters.TreeToRows(trees[0])
	require.Len(t, rows, 6)

	var got []string
	var parents []int
	for _, row := range rows {
		got = append(got, row.UnquotedName)
		parents = append(parents, row.ParentSeq)
	}
	assert.Equal(t, []string{"G", "A", "B C", "F", "D", "E"}, got)
	assert.Equal(t, []int{0, 1, 1, 1, 4, 4}, parents)
	assert.Equal(t, "'B C'", rows[2].Name)
	assert.Equal(t, []string{"x"}, rows[2].Comments)
	assert.Equal(t, "1", rows[1].Length)
	assert.True(t, rows[1].IsLeaf)
	assert.False(t, rows[0].IsLeaf)
}

func TestTreeToRows_Subtree(t *testing.T) {
	trees, err := newick.Parse("(A,(B,C)D)E;")
	require.NoError(t, err)

	rows := adapters.TreeToRows(trees[0].GetNode("D"))
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].ParentSeq)
	assert.Equal(t, 1, rows[1].ParentSeq)
}

func TestRowsToTree(t *testing.T) {
	const text = "(A:1,'B C'[x],(D,E)F)G"
	trees, err := newick.Parse(text)
	require.NoError(t, err)

	tree, err := adapters.RowsToTree(adapters.TreeToRows(trees[0]))
	require.NoError(t, err)
	assert.Equal(t, text, tree.Newick())

	_, err = adapters.RowsToTree(nil)
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	a := adapters.Checksum([]byte("(A,B);"))
	assert.Len(t, a, 16)
	assert.Equal(t, a, adapters.Checksum([]byte("(A,B);")))
	assert.NotEqual(t, a, adapters.Checksum([]byte("(A,C);")))

	doc := adapters.TextToDocument("x.nwk", []byte("(A,B);"))
	assert.Equal(t, a, doc.Checksum)
	assert.Equal(t, "(A,B);", doc.Text)
}
