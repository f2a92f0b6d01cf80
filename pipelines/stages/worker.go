// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/model"
	"golang.org/x/sync/errgroup"
)

// WorkerService claims and executes pipeline jobs.
type WorkerService struct {
	store    WorkerStore
	workerID string
	options  []newick.Option
	logger   *slog.Logger
}

// WorkerStore defines the store operations needed by WorkerService.
type WorkerStore interface {
	ClaimWork(ctx context.Context, stage, workerID string) (*model.Work, error)
	FinishWork(ctx context.Context, id int64, status, errorCode, errorMsg string) error
	GetDocumentByID(ctx context.Context, id int64) (*model.Document, error)

	// For parsing stage - persist parsed trees
	InsertTrees(ctx context.Context, documentID int64, trees []*newick.Node) (int, error)
}

// NewWorkerService creates a new WorkerService.
// The options are passed to the parser.
func NewWorkerService(store WorkerStore, workerID string, options ...newick.Option) *WorkerService {
	if workerID == "" {
		hostname, _ := os.Hostname()
		workerID = fmt.Sprintf("%s:%d", hostname, os.Getpid())
	}
	return &WorkerService{
		store:    store,
		workerID: workerID,
		options:  options,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger.
func (w *WorkerService) SetLogger(logger *slog.Logger) {
	w.logger = logger
}

// WorkResult represents the outcome of executing a job.
type WorkResult struct {
	Success      bool
	ErrorCode    string
	ErrorMessage string
}

// ClaimJob atomically claims a queued job for the given stage.
// Returns nil if no work is available.
func (w *WorkerService) ClaimJob(ctx context.Context, stage string) (*model.Work, error) {
	return w.store.ClaimWork(ctx, stage, w.workerID)
}

// ExecuteParse parses the text of a document and stores its trees.
// A document that is not valid Newick stores no trees.
func (w *WorkerService) ExecuteParse(ctx context.Context, job *model.Work, doc *model.Document) error {
	trees, err := newick.ParseBytes(doc.Name, []byte(doc.Text), w.options...)
	if err != nil {
		return &ErrParseSyntax{Name: doc.Name, Err: err}
	}

	nodes, err := w.store.InsertTrees(ctx, doc.ID, trees)
	if err != nil {
		return &ErrDatabase{Op: "persist parse result", Err: err}
	}

	w.logger.Debug("parse", "job", job.ID, "document", doc.ID, "trees", len(trees), "nodes", nodes)
	return nil
}

// FinishJob marks a job as completed (ok or failed) based on the result.
func (w *WorkerService) FinishJob(ctx context.Context, job *model.Work, result WorkResult) error {
	status := model.WorkStatusOk
	errorCode := ""
	errorMsg := ""

	if !result.Success {
		status = model.WorkStatusFailed
		errorCode = result.ErrorCode
		errorMsg = result.ErrorMessage
	}

	return w.store.FinishWork(ctx, job.ID, status, errorCode, errorMsg)
}

// ProcessJob claims, executes, and finishes a single job for the given stage.
// Returns (jobProcessed, error). jobProcessed is true if a job was claimed.
func (w *WorkerService) ProcessJob(ctx context.Context, stage string) (bool, error) {
	job, err := w.ClaimJob(ctx, stage)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	doc, err := w.store.GetDocumentByID(ctx, job.DocumentID)
	if err != nil {
		w.FinishJob(ctx, job, WorkResult{
			Success:      false,
			ErrorCode:    ErrCodeDatabase,
			ErrorMessage: fmt.Sprintf("get document: %v", err),
		})
		return true, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		w.FinishJob(ctx, job, WorkResult{
			Success:      false,
			ErrorCode:    ErrCodeDatabase,
			ErrorMessage: "document not found",
		})
		return true, fmt.Errorf("document %d not found", job.DocumentID)
	}

	var execErr error
	switch stage {
	case model.WorkStageParse:
		execErr = w.ExecuteParse(ctx, job, doc)
	default:
		execErr = fmt.Errorf("unknown stage: %s", stage)
	}

	if execErr != nil {
		w.FinishJob(ctx, job, WorkResult{
			Success:      false,
			ErrorCode:    ErrorCode(execErr),
			ErrorMessage: execErr.Error(),
		})
		return true, execErr
	}

	if err := w.FinishJob(ctx, job, WorkResult{Success: true}); err != nil {
		return true, fmt.Errorf("finish job: %w", err)
	}

	return true, nil
}

// Drain runs workers goroutines that process jobs for the stage until the
// queue is empty. Failed jobs are recorded in the store and logged. It
// returns the number of jobs processed, failed ones included.
func (w *WorkerService) Drain(ctx context.Context, stage string, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}
	var processed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				ok, err := w.ProcessJob(ctx, stage)
				if !ok {
					// err is set only when the queue itself failed
					return err
				}
				processed.Add(1)
				if err != nil {
					w.logger.Error("work", "worker", w.workerID, "stage", stage, "code", ErrorCode(err), "err", err)
				}
			}
			return ctx.Err()
		})
	}
	err := g.Wait()
	return int(processed.Load()), err
}
