// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import (
	"time"
)

// Document is one ingested Newick file. Documents are unique by checksum.
type Document struct {
	ID        int64     `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"` // original path or label
	Checksum  string    `json:"checksum"  db:"checksum"`
	Text      string    `json:"text"      db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Trees     int       `json:"trees"     db:"-"` // number of stored trees, set by listings
}

// Tree is one statement of a document, stored as serialized Newick text.
type Tree struct {
	ID         int64  `json:"id"         db:"id"`
	DocumentID int64  `json:"documentId" db:"document_id"`
	Seq        int    `json:"seq"        db:"seq"` // 1-based position in the document
	Newick     string `json:"newick"     db:"newick"`
}

// NodeRow is the flattened form of a tree node.
// Seq is the pre-order position of the node in its tree, starting at 1.
// ParentSeq is zero for the root.
type NodeRow struct {
	ID           int64    `json:"id"           db:"id"`
	TreeID       int64    `json:"treeId"       db:"tree_id"`
	Seq          int      `json:"seq"          db:"seq"`
	ParentSeq    int      `json:"parentSeq"    db:"parent_seq"`
	Name         string   `json:"name"         db:"name"`
	UnquotedName string   `json:"unquotedName" db:"unquoted_name"`
	Length       string   `json:"length"       db:"length"` // raw text
	Comments     []string `json:"comments"     db:"comments"`
	IsLeaf       bool     `json:"isLeaf"       db:"is_leaf"`
}

// Work is one queued pipeline job for a document.
type Work struct {
	ID           int64      `json:"id"           db:"id"`
	DocumentID   int64      `json:"documentId"   db:"document_id"`
	Stage        string     `json:"stage"        db:"stage"`
	Status       string     `json:"status"       db:"status"`
	Attempt      int        `json:"attempt"      db:"attempt"`
	AvailableAt  time.Time  `json:"availableAt"  db:"available_at"`
	LockedBy     *string    `json:"lockedBy"     db:"locked_by"`
	LockedAt     *time.Time `json:"lockedAt"     db:"locked_at"`
	StartedAt    *time.Time `json:"startedAt"    db:"started_at"`
	FinishedAt   *time.Time `json:"finishedAt"   db:"finished_at"`
	ErrorCode    *string    `json:"errorCode"    db:"error_code"`
	ErrorMessage *string    `json:"errorMessage" db:"error_message"`
}

// Pipeline stages.
const (
	WorkStageParse = "parse"
)

// Work statuses.
const (
	WorkStatusQueued  = "queued"
	WorkStatusRunning = "running"
	WorkStatusOk      = "ok"
	WorkStatusFailed  = "failed"
)

// DocumentStatus is the latest work on a document for one stage.
// Status is empty when the document was never queued for the stage.
type DocumentStatus struct {
	DocumentID   int64   `json:"documentId"`
	Name         string  `json:"name"`
	Trees        int     `json:"trees"`
	Status       string  `json:"status"`
	Attempt      int     `json:"attempt"`
	ErrorCode    *string `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
}
