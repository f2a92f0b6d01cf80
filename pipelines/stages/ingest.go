// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mdhender/newick/adapters"
	"github.com/mdhender/newick/model"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// IngestService handles file ingestion into the pipeline.
type IngestService struct {
	store  IngestStore
	fs     afero.Fs
	limit  int
	logger *slog.Logger
}

// IngestStore defines the store operations needed by IngestService.
type IngestStore interface {
	InsertDocument(ctx context.Context, doc *model.Document) (int64, bool, error)
	InsertWork(ctx context.Context, work *model.Work) (int64, error)
}

// NewIngestService creates a new IngestService.
func NewIngestService(store IngestStore) *IngestService {
	return &IngestService{
		store:  store,
		fs:     afero.NewOsFs(),
		limit:  4,
		logger: slog.Default(),
	}
}

// SetFS sets the filesystem for testing.
func (s *IngestService) SetFS(fs afero.Fs) {
	s.fs = fs
}

// SetLimit sets the number of files read concurrently by IngestGlob.
func (s *IngestService) SetLimit(n int) {
	if n < 1 {
		n = 1
	}
	s.limit = n
}

// SetLogger sets the logger.
func (s *IngestService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// IngestRequest contains the parameters for ingesting a file.
type IngestRequest struct {
	Name string // original path
	Data []byte // file content
}

// IngestResult contains the result of an ingest operation.
type IngestResult struct {
	Name       string
	DocumentID int64
	WorkID     int64
	Duplicate  bool   // true if the document was already ingested (idempotent no-op)
	ErrorCode  string // set when the file could not be ingested
	Err        error
}

// IngestFile stores a document and queues it for parsing.
// Returns IngestResult with Duplicate=true if the document already exists.
func (s *IngestService) IngestFile(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	doc := adapters.TextToDocument(req.Name, req.Data)
	docID, inserted, err := s.store.InsertDocument(ctx, doc)
	if err != nil {
		return nil, &ErrDatabase{Op: "insert document", Err: err}
	}
	if !inserted {
		return &IngestResult{
			Name:       req.Name,
			DocumentID: docID,
			Duplicate:  true,
		}, nil
	}

	work := &model.Work{
		DocumentID:  docID,
		Stage:       model.WorkStageParse,
		Status:      model.WorkStatusQueued,
		Attempt:     0,
		AvailableAt: time.Now().UTC(),
	}
	workID, err := s.store.InsertWork(ctx, work)
	if err != nil {
		return nil, &ErrDatabase{Op: "insert work", Err: err}
	}

	return &IngestResult{
		Name:       req.Name,
		DocumentID: docID,
		WorkID:     workID,
	}, nil
}

// IngestPath reads a file from the filesystem and ingests it.
func (s *IngestService) IngestPath(ctx context.Context, path string) (*IngestResult, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, &ErrReadFile{Op: "read", Path: path, Err: err}
	}
	return s.IngestFile(ctx, IngestRequest{Name: path, Data: data})
}

// IngestGlob ingests every file matching the patterns, which may use "**".
// Files are ingested concurrently. A file that fails does not stop the
// others; its result carries the error. The results are sorted by name.
// The returned error is set only for a bad pattern or a cancelled context.
func (s *IngestService) IngestGlob(ctx context.Context, patterns ...string) ([]IngestResult, error) {
	var paths []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := s.glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	sort.Strings(paths)

	results := make([]IngestResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.IngestPath(ctx, path)
			if err != nil {
				s.logger.Error("ingest", "path", path, "code", ErrorCode(err), "err", err)
				results[i] = IngestResult{Name: path, ErrorCode: ErrorCode(err), Err: err}
				return nil
			}
			s.logger.Debug("ingest", "path", path, "document", result.DocumentID, "duplicate", result.Duplicate)
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// glob walks the fixed prefix of the pattern and returns the files that match.
func (s *IngestService) glob(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, &ErrReadFile{Op: "glob", Path: pattern, Err: doublestar.ErrBadPattern}
	}
	base, _ := doublestar.SplitPattern(pattern)
	if ok, err := afero.Exists(s.fs, base); err != nil {
		return nil, &ErrReadFile{Op: "stat", Path: base, Err: err}
	} else if !ok {
		return nil, nil
	}

	var matches []string
	err := afero.Walk(s.fs, base, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		} else if info.IsDir() {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, &ErrReadFile{Op: "glob", Path: pattern, Err: err}
	}
	return matches, nil
}

// String implements fmt.Stringer for log and CLI output.
func (r IngestResult) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %s: %v", r.Name, r.ErrorCode, r.Err)
	case r.Duplicate:
		return fmt.Sprintf("%s: duplicate of document %d", r.Name, r.DocumentID)
	}
	return fmt.Sprintf("%s: document %d queued as work %d", r.Name, r.DocumentID, r.WorkID)
}
