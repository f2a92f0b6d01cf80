// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdhender/newick/model"
)

const workColumns = `id, document_id, stage, status, attempt, available_at,
	locked_by, locked_at, started_at, finished_at, error_code, error_message`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// InsertWork queues a job for a document and returns its ID.
func (s *SQLiteStore) InsertWork(ctx context.Context, work *model.Work) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO work (document_id, stage, status, attempt, available_at) VALUES (?, ?, ?, ?, ?)`,
		work.DocumentID, work.Stage, work.Status, work.Attempt, timestamp(work.AvailableAt))
	if err != nil {
		return 0, fmt.Errorf("insert work: document %d: %w", work.DocumentID, err)
	}
	return result.LastInsertId()
}

// ClaimWork marks the oldest available queued job for the stage as running
// and returns it. It returns nil when the queue is empty. The claim is a
// single statement, so two workers never get the same job.
func (s *SQLiteStore) ClaimWork(ctx context.Context, stage, workerID string) (*model.Work, error) {
	now := timestamp(time.Now())
	query := `
		UPDATE work
		SET status = ?, locked_by = ?, locked_at = ?,
		    started_at = COALESCE(started_at, ?), attempt = attempt + 1
		WHERE id = (
			SELECT id FROM work
			WHERE stage = ? AND status = ? AND available_at <= ?
			ORDER BY available_at, id
			LIMIT 1
		)
		RETURNING ` + workColumns
	row := s.db.QueryRowContext(ctx, query,
		model.WorkStatusRunning, workerID, now, now,
		stage, model.WorkStatusQueued, now)
	work, err := scanWork(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("claim work: %w", err)
	}
	return work, nil
}

// FinishWork records the outcome of a job and releases its lock.
// Empty error values are stored as NULL.
func (s *SQLiteStore) FinishWork(ctx context.Context, id int64, status, errorCode, errorMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE work
		SET status = ?, finished_at = ?, error_code = ?, error_message = ?,
		    locked_by = NULL, locked_at = NULL
		WHERE id = ?`,
		status, timestamp(time.Now()), nullString(errorCode), nullString(errorMsg), id)
	if err != nil {
		return fmt.Errorf("finish work %d: %w", id, err)
	}
	return nil
}

// ResetFailedWork queues the failed jobs of a stage again and returns how
// many were reset. When documentIDs are given, only their jobs are reset.
func (s *SQLiteStore) ResetFailedWork(ctx context.Context, stage string, documentIDs ...int64) (int, error) {
	query := `
		UPDATE work
		SET status = ?, available_at = ?,
		    locked_by = NULL, locked_at = NULL, finished_at = NULL,
		    error_code = NULL, error_message = NULL
		WHERE stage = ? AND status = ?`
	args := []any{model.WorkStatusQueued, timestamp(time.Now()), stage, model.WorkStatusFailed}
	if len(documentIDs) != 0 {
		query += ` AND document_id IN (?` + strings.Repeat(`, ?`, len(documentIDs)-1) + `)`
		for _, id := range documentIDs {
			args = append(args, id)
		}
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset failed work: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset failed work: %w", err)
	}
	return int(n), nil
}

// GetFailedWork returns the failed jobs of a stage, oldest first.
func (s *SQLiteStore) GetFailedWork(ctx context.Context, stage string) ([]model.Work, error) {
	return s.queryWork(ctx, `SELECT `+workColumns+` FROM work WHERE stage = ? AND status = ? ORDER BY id`,
		stage, model.WorkStatusFailed)
}

// GetDocumentWork returns every job for a document, newest first.
func (s *SQLiteStore) GetDocumentWork(ctx context.Context, documentID int64) ([]model.Work, error) {
	return s.queryWork(ctx, `SELECT `+workColumns+` FROM work WHERE document_id = ? ORDER BY id DESC`, documentID)
}

func (s *SQLiteStore) queryWork(ctx context.Context, query string, args ...any) ([]model.Work, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query work: %w", err)
	}
	defer rows.Close()

	var list []model.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		list = append(list, *work)
	}
	return list, rows.Err()
}

// GetWorkSummary returns job counts as map[stage]map[status]count.
func (s *SQLiteStore) GetWorkSummary(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage, status, COUNT(*) FROM work GROUP BY stage, status`)
	if err != nil {
		return nil, fmt.Errorf("get work summary: %w", err)
	}
	defer rows.Close()

	summary := map[string]map[string]int{}
	for rows.Next() {
		var stage, status string
		var count int
		if err := rows.Scan(&stage, &status, &count); err != nil {
			return nil, fmt.Errorf("scan work summary: %w", err)
		}
		if summary[stage] == nil {
			summary[stage] = map[string]int{}
		}
		summary[stage][status] = count
	}
	return summary, rows.Err()
}

// GetDocumentStatus returns, for every document, its tree count and the
// latest job of the stage.
func (s *SQLiteStore) GetDocumentStatus(ctx context.Context, stage string) ([]model.DocumentStatus, error) {
	const query = `
		SELECT d.id, d.name,
		       (SELECT COUNT(*) FROM trees t WHERE t.document_id = d.id),
		       COALESCE(w.status, ''), COALESCE(w.attempt, 0), w.error_code, w.error_message
		FROM documents d
		LEFT JOIN work w ON w.id = (
			SELECT MAX(id) FROM work WHERE document_id = d.id AND stage = ?
		)
		ORDER BY d.id`
	rows, err := s.db.QueryContext(ctx, query, stage)
	if err != nil {
		return nil, fmt.Errorf("get document status: %w", err)
	}
	defer rows.Close()

	var list []model.DocumentStatus
	for rows.Next() {
		var ds model.DocumentStatus
		var errorCode, errorMessage sql.NullString
		if err := rows.Scan(&ds.DocumentID, &ds.Name, &ds.Trees, &ds.Status, &ds.Attempt, &errorCode, &errorMessage); err != nil {
			return nil, fmt.Errorf("scan document status: %w", err)
		}
		ds.ErrorCode, ds.ErrorMessage = nullStringPtr(errorCode), nullStringPtr(errorMessage)
		list = append(list, ds)
	}
	return list, rows.Err()
}

func scanWork(row scanner) (*model.Work, error) {
	var w model.Work
	var availableAt string
	var lockedBy, lockedAt, startedAt, finishedAt, errorCode, errorMessage sql.NullString
	if err := row.Scan(&w.ID, &w.DocumentID, &w.Stage, &w.Status, &w.Attempt, &availableAt,
		&lockedBy, &lockedAt, &startedAt, &finishedAt, &errorCode, &errorMessage); err != nil {
		return nil, err
	}
	w.AvailableAt = parseTime(availableAt)
	w.LockedBy, w.LockedAt = nullStringPtr(lockedBy), parseTimePtr(lockedAt)
	w.StartedAt, w.FinishedAt = parseTimePtr(startedAt), parseTimePtr(finishedAt)
	w.ErrorCode, w.ErrorMessage = nullStringPtr(errorCode), nullStringPtr(errorMessage)
	return &w, nil
}

// timestamp formats t in UTC for the TEXT time columns.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
