// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/adapters"
	"github.com/mdhender/newick/model"
)

// InsertDocument inserts a document unless one with the same checksum exists.
// It returns the ID of the stored document and reports whether it was inserted.
func (s *SQLiteStore) InsertDocument(ctx context.Context, doc *model.Document) (int64, bool, error) {
	const query = `
		INSERT INTO documents (name, checksum, text, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (checksum) DO NOTHING
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		doc.Name,
		doc.Checksum,
		doc.Text,
		timestamp(doc.CreatedAt),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := s.GetDocumentByChecksum(ctx, doc.Checksum)
		if err != nil {
			return 0, false, err
		} else if existing == nil {
			return 0, false, fmt.Errorf("insert document: checksum %s: conflict without row", doc.Checksum)
		}
		doc.ID = existing.ID
		return existing.ID, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("insert document: %w", err)
	}
	doc.ID = id
	return id, true, nil
}

const documentColumns = `id, name, checksum, text, created_at`

// GetDocumentByID returns a document by ID, or nil if not found.
func (s *SQLiteStore) GetDocumentByID(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get document by id: %w", err)
	}
	return doc, nil
}

// GetDocumentByChecksum returns a document by checksum, or nil if not found.
func (s *SQLiteStore) GetDocumentByChecksum(ctx context.Context, checksum string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE checksum = ?`, checksum)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get document by checksum: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all documents with their tree counts, without their text.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	const query = `
		SELECT d.id, d.name, d.checksum, d.created_at, COUNT(t.id)
		FROM documents d
		LEFT JOIN trees t ON t.document_id = d.id
		GROUP BY d.id
		ORDER BY d.id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var createdAt string
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Checksum, &createdAt, &doc.Trees); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CreatedAt = parseTime(createdAt)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// InsertTrees replaces the trees of a document, storing the Newick text of
// each tree and one row per node. It returns the number of nodes stored.
func (s *SQLiteStore) InsertTrees(ctx context.Context, documentID int64, trees []*newick.Node) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trees WHERE document_id = ?`, documentID); err != nil {
		return 0, fmt.Errorf("delete trees: %w", err)
	}

	const insertTree = `INSERT INTO trees (document_id, seq, newick) VALUES (?, ?, ?)`
	const insertNode = `
		INSERT INTO nodes (tree_id, seq, parent_seq, name, unquoted_name, length, comments, is_leaf)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	count := 0
	for i, tree := range trees {
		result, err := tx.ExecContext(ctx, insertTree, documentID, i+1, tree.Newick())
		if err != nil {
			return 0, fmt.Errorf("insert tree %d: %w", i+1, err)
		}
		treeID, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("get tree id: %w", err)
		}
		for _, row := range adapters.TreeToRows(tree) {
			comments, err := json.Marshal(row.Comments)
			if err != nil {
				return 0, fmt.Errorf("tree %d: node %d: comments: %w", i+1, row.Seq, err)
			}
			if _, err := tx.ExecContext(ctx, insertNode,
				treeID,
				row.Seq,
				nullInt(row.ParentSeq),
				row.Name,
				row.UnquotedName,
				row.Length,
				string(comments),
				boolToInt(row.IsLeaf),
			); err != nil {
				return 0, fmt.Errorf("tree %d: insert node %d: %w", i+1, row.Seq, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count, nil
}

// LoadTrees parses the stored trees of a document, in document order.
func (s *SQLiteStore) LoadTrees(ctx context.Context, documentID int64, options ...newick.Option) ([]*newick.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, newick FROM trees WHERE document_id = ? ORDER BY seq`, documentID)
	if err != nil {
		return nil, fmt.Errorf("load trees: %w", err)
	}
	defer rows.Close()

	var trees []*newick.Node
	for rows.Next() {
		var seq int
		var text string
		if err := rows.Scan(&seq, &text); err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		parsed, err := newick.Parse(text, options...)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", seq, err)
		}
		trees = append(trees, parsed...)
	}
	return trees, rows.Err()
}

// FindNodes returns every stored node with the given unquoted name.
func (s *SQLiteStore) FindNodes(ctx context.Context, unquotedName string) ([]model.NodeRow, error) {
	const query = `
		SELECT id, tree_id, seq, parent_seq, name, unquoted_name, length, comments, is_leaf
		FROM nodes
		WHERE unquoted_name = ?
		ORDER BY tree_id, seq
	`
	rows, err := s.db.QueryContext(ctx, query, unquotedName)
	if err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	defer rows.Close()

	var nodes []model.NodeRow
	for rows.Next() {
		var row model.NodeRow
		var parentSeq sql.NullInt64
		var comments string
		var isLeaf int64
		if err := rows.Scan(&row.ID, &row.TreeID, &row.Seq, &parentSeq, &row.Name, &row.UnquotedName, &row.Length, &comments, &isLeaf); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		row.ParentSeq = int(parentSeq.Int64)
		row.IsLeaf = isLeaf != 0
		if err := json.Unmarshal([]byte(comments), &row.Comments); err != nil {
			return nil, fmt.Errorf("node %d: comments: %w", row.ID, err)
		}
		nodes = append(nodes, row)
	}
	return nodes, rows.Err()
}

// NodeNames returns the distinct unquoted node names in the store.
func (s *SQLiteStore) NodeNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT unquoted_name FROM nodes WHERE unquoted_name != '' ORDER BY unquoted_name`)
	if err != nil {
		return nil, fmt.Errorf("node names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanDocument(row *sql.Row) (*model.Document, error) {
	var doc model.Document
	var createdAt string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Checksum, &doc.Text, &createdAt); err != nil {
		return nil, err
	}
	doc.CreatedAt = parseTime(createdAt)
	return &doc, nil
}
