// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package adapters converts between parsed Newick trees and the model types
// used by the stores.
package adapters

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mdhender/newick"
	"github.com/mdhender/newick/model"
)

// Checksum returns the hex encoded xxhash of the document text.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// TextToDocument returns a new, unsaved document for the text.
func TextToDocument(name string, data []byte) *model.Document {
	return &model.Document{
		Name:      name,
		Checksum:  Checksum(data),
		Text:      string(data),
		CreatedAt: time.Now().UTC(),
	}
}

// TreeToRows flattens a tree into node rows in pre-order.
// Seq numbers start at 1 and ParentSeq is zero for the root.
// TreeID is left for the caller to assign.
func TreeToRows(tree *newick.Node) []model.NodeRow {
	nodes := tree.Walk()
	seqOf := make(map[*newick.Node]int, len(nodes))
	rows := make([]model.NodeRow, 0, len(nodes))
	for i, n := range nodes {
		seq := i + 1
		seqOf[n] = seq
		row := model.NodeRow{
			Seq:          seq,
			Name:         n.Name(),
			UnquotedName: n.UnquotedName(),
			Length:       n.RawLength(),
			Comments:     n.Comments(),
			IsLeaf:       n.IsLeaf(),
		}
		// the root of a subtree may have an ancestor outside the walk
		if n != tree {
			row.ParentSeq = seqOf[n.Ancestor()]
		}
		rows = append(rows, row)
	}
	return rows
}

// RowsToTree rebuilds a tree from node rows in pre-order.
// Comment placement within labels is not preserved.
func RowsToTree(rows []model.NodeRow, options ...newick.Option) (*newick.Node, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	bySeq := make(map[int]*newick.Node, len(rows))
	var root *newick.Node
	for _, row := range rows {
		n, err := newick.NewNode(row.Name, row.Length, options...)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", row.Seq, err)
		}
		if len(row.Comments) != 0 {
			n.SetComments(row.Comments...)
		}
		bySeq[row.Seq] = n
		if row.ParentSeq == 0 {
			if root != nil {
				return nil, fmt.Errorf("node %d: second root", row.Seq)
			}
			root = n
			continue
		}
		parent, ok := bySeq[row.ParentSeq]
		if !ok {
			return nil, fmt.Errorf("node %d: parent %d not found", row.Seq, row.ParentSeq)
		}
		parent.AddDescendant(n)
	}
	if root == nil {
		return nil, fmt.Errorf("no root")
	}
	return root, nil
}
