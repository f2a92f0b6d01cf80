// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import (
	"context"

	"github.com/mdhender/newick"
)

// Store is the interface for persisting documents and their trees.
type Store interface {
	// documents

	InsertDocument(ctx context.Context, doc *Document) (int64, bool, error)
	GetDocumentByID(ctx context.Context, id int64) (*Document, error)
	GetDocumentByChecksum(ctx context.Context, checksum string) (*Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)

	// trees

	InsertTrees(ctx context.Context, documentID int64, trees []*newick.Node) (int, error)
	LoadTrees(ctx context.Context, documentID int64, options ...newick.Option) ([]*newick.Node, error)
	FindNodes(ctx context.Context, unquotedName string) ([]NodeRow, error)

	// stages

	InsertWork(ctx context.Context, work *Work) (int64, error)
	ClaimWork(ctx context.Context, stage, workerID string) (*Work, error)
	FinishWork(ctx context.Context, id int64, status, errorCode, errorMsg string) error
	ResetFailedWork(ctx context.Context, stage string, documentIDs ...int64) (int, error)
	GetFailedWork(ctx context.Context, stage string) ([]Work, error)
	GetDocumentWork(ctx context.Context, documentID int64) ([]Work, error)
	GetWorkSummary(ctx context.Context) (map[string]map[string]int, error)
	GetDocumentStatus(ctx context.Context, stage string) ([]DocumentStatus, error)

	Stats() Stats
}

// Stats holds store statistics.
type Stats struct {
	Documents int `json:"documents"`
	Trees     int `json:"trees"`
	Nodes     int `json:"nodes"`
}
