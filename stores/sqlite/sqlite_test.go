// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/adapters"
	"github.com/mdhender/newick/model"
	store "github.com/mdhender/newick/stores/sqlite"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertDocument(t *testing.T, s *store.SQLiteStore, name, text string) int64 {
	t.Helper()
	id, inserted, err := s.InsertDocument(context.Background(), adapters.TextToDocument(name, []byte(text)))
	if err != nil {
		t.Fatalf("insert document: %v", err)
	}
	if !inserted {
		t.Fatalf("insert document %q: want inserted", name)
	}
	return id
}

func TestInsertDocument_Dedupe(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := insertDocument(t, s, "a.nwk", "(A,B);")
	again, inserted, err := s.InsertDocument(ctx, adapters.TextToDocument("b.nwk", []byte("(A,B);")))
	if err != nil {
		t.Fatalf("insert duplicate: %v", err)
	}
	if inserted {
		t.Errorf("duplicate: want not inserted")
	}
	if again != id {
		t.Errorf("duplicate: got id %d, want %d", again, id)
	}

	doc, err := s.GetDocumentByID(ctx, id)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got, want := doc.Name, "a.nwk"; got != want {
		t.Errorf("name: got %q, want %q", got, want)
	}
	if got, want := doc.Text, "(A,B);"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}

	missing, err := s.GetDocumentByID(ctx, id+100)
	if err != nil {
		t.Fatalf("get missing document: %v", err)
	}
	if missing != nil {
		t.Errorf("missing document: got %+v, want nil", missing)
	}
}

func TestInsertTrees_LoadTrees(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	const text = "(A:1,'B C'[x],(D,E)F)G;\n[&R] (H,I)J[&k=v]:2;"
	id := insertDocument(t, s, "trees.nwk", text)
	trees, err := newick.Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	count, err := s.InsertTrees(ctx, id, trees)
	if err != nil {
		t.Fatalf("insert trees: %v", err)
	}
	if got, want := count, 9; got != want {
		t.Errorf("nodes: got %d, want %d", got, want)
	}

	loaded, err := s.LoadTrees(ctx, id)
	if err != nil {
		t.Fatalf("load trees: %v", err)
	}
	if got, want := newick.Dumps(loaded...), newick.Dumps(trees...); got != want {
		t.Errorf("load trees: got %q, want %q", got, want)
	}

	// replacing the trees does not duplicate rows
	if _, err := s.InsertTrees(ctx, id, trees[:1]); err != nil {
		t.Fatalf("replace trees: %v", err)
	}
	if got, want := s.Stats(), (model.Stats{Documents: 1, Trees: 1, Nodes: 6}); got != want {
		t.Errorf("stats: got %+v, want %+v", got, want)
	}
}

func TestFindNodes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := insertDocument(t, s, "trees.nwk", "(A,'B C'[x]:2)G;(B,'B C')H;")
	trees, err := newick.Parse("(A,'B C'[x]:2)G;(B,'B C')H;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := s.InsertTrees(ctx, id, trees); err != nil {
		t.Fatalf("insert trees: %v", err)
	}

	rows, err := s.FindNodes(ctx, "B C")
	if err != nil {
		t.Fatalf("find nodes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("find nodes: got %d rows, want 2", len(rows))
	}
	if got, want := rows[0].Name, "'B C'"; got != want {
		t.Errorf("name: got %q, want %q", got, want)
	}
	if got, want := rows[0].Length, "2"; got != want {
		t.Errorf("length: got %q, want %q", got, want)
	}
	if len(rows[0].Comments) != 1 || rows[0].Comments[0] != "x" {
		t.Errorf("comments: got %q, want [x]", rows[0].Comments)
	}
	if got, want := rows[0].ParentSeq, 1; got != want {
		t.Errorf("parent: got %d, want %d", got, want)
	}
	if !rows[0].IsLeaf {
		t.Errorf("leaf: got false, want true")
	}

	names, err := s.NodeNames(ctx)
	if err != nil {
		t.Fatalf("node names: %v", err)
	}
	if got, want := len(names), 5; got != want {
		t.Errorf("node names: got %q, want %d names", names, want)
	}
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := insertDocument(t, s, "one.nwk", "A;B;")
	insertDocument(t, s, "two.nwk", "C;")
	trees, _ := newick.Parse("A;B;")
	if _, err := s.InsertTrees(ctx, id, trees); err != nil {
		t.Fatalf("insert trees: %v", err)
	}

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("list documents: got %d, want 2", len(docs))
	}
	if docs[0].Trees != 2 || docs[1].Trees != 0 {
		t.Errorf("tree counts: got %d and %d, want 2 and 0", docs[0].Trees, docs[1].Trees)
	}

	stats, err := s.TableStats(ctx)
	if err != nil {
		t.Fatalf("table stats: %v", err)
	}
	if stats["documents"] != 2 || stats["trees"] != 2 || stats["nodes"] != 2 {
		t.Errorf("table stats: got %v", stats)
	}
}

func TestClaimWork_AtomicLocking(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := insertDocument(t, s, "a.nwk", "A;")
	if _, err := s.InsertWork(ctx, &model.Work{
		DocumentID:  id,
		Stage:       model.WorkStageParse,
		Status:      model.WorkStatusQueued,
		AvailableAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert work: %v", err)
	}

	const numWorkers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			work, err := s.ClaimWork(ctx, model.WorkStageParse, "worker-"+string(rune('A'+workerID)))
			if err != nil {
				t.Errorf("worker %d: claim error: %v", workerID, err)
				return
			}
			if work != nil {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if claimed != 1 {
		t.Errorf("expected exactly 1 worker to claim the job, got %d", claimed)
	}
}

func TestResetFailedWork(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := insertDocument(t, s, "a.nwk", "A;")
	workID, err := s.InsertWork(ctx, &model.Work{
		DocumentID:  id,
		Stage:       model.WorkStageParse,
		Status:      model.WorkStatusQueued,
		AvailableAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert work: %v", err)
	}
	if err := s.FinishWork(ctx, workID, model.WorkStatusFailed, "PARSE_SYNTAX_ERROR", "syntax error"); err != nil {
		t.Fatalf("finish work: %v", err)
	}

	failed, err := s.GetFailedWork(ctx, model.WorkStageParse)
	if err != nil {
		t.Fatalf("get failed work: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorCode == nil || *failed[0].ErrorCode != "PARSE_SYNTAX_ERROR" {
		t.Fatalf("failed work: got %+v", failed)
	}

	n, err := s.ResetFailedWork(ctx, model.WorkStageParse)
	if err != nil {
		t.Fatalf("reset failed work: %v", err)
	}
	if n != 1 {
		t.Errorf("reset: got %d, want 1", n)
	}

	summary, err := s.GetWorkSummary(ctx)
	if err != nil {
		t.Fatalf("work summary: %v", err)
	}
	if got := summary[model.WorkStageParse][model.WorkStatusQueued]; got != 1 {
		t.Errorf("summary: got %d queued, want 1", got)
	}

	work, err := s.ClaimWork(ctx, model.WorkStageParse, "worker")
	if err != nil {
		t.Fatalf("claim work: %v", err)
	}
	if work == nil || work.Attempt != 1 {
		t.Errorf("claim after reset: got %+v, want attempt 1", work)
	}
}

func TestDocumentStatus(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	queue := func(id int64) int64 {
		t.Helper()
		workID, err := s.InsertWork(ctx, &model.Work{
			DocumentID:  id,
			Stage:       model.WorkStageParse,
			Status:      model.WorkStatusQueued,
			AvailableAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("insert work: %v", err)
		}
		return workID
	}

	good := insertDocument(t, s, "good.nwk", "(A,B);")
	bad := insertDocument(t, s, "bad.nwk", "(A,B;")
	idle := insertDocument(t, s, "idle.nwk", "C;")

	goodWork, badWork := queue(good), queue(bad)
	trees, err := newick.Parse("(A,B);")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := s.InsertTrees(ctx, good, trees); err != nil {
		t.Fatalf("insert trees: %v", err)
	}
	if err := s.FinishWork(ctx, goodWork, model.WorkStatusOk, "", ""); err != nil {
		t.Fatalf("finish work: %v", err)
	}
	if err := s.FinishWork(ctx, badWork, model.WorkStatusFailed, "PARSE_SYNTAX_ERROR", "unbalanced"); err != nil {
		t.Fatalf("finish work: %v", err)
	}

	list, err := s.GetDocumentStatus(ctx, model.WorkStageParse)
	if err != nil {
		t.Fatalf("document status: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("document status: got %d rows, want 3", len(list))
	}
	for _, tc := range []struct {
		got    model.DocumentStatus
		id     int64
		trees  int
		status string
	}{
		{list[0], good, 1, model.WorkStatusOk},
		{list[1], bad, 0, model.WorkStatusFailed},
		{list[2], idle, 0, ""},
	} {
		if tc.got.DocumentID != tc.id || tc.got.Trees != tc.trees || tc.got.Status != tc.status {
			t.Errorf("document %d: got %+v, want trees %d status %q", tc.id, tc.got, tc.trees, tc.status)
		}
	}
	if list[1].ErrorCode == nil || *list[1].ErrorCode != "PARSE_SYNTAX_ERROR" {
		t.Errorf("bad document: got error code %v", list[1].ErrorCode)
	}

	// only the named documents are reset
	if n, err := s.ResetFailedWork(ctx, model.WorkStageParse, good, idle); err != nil || n != 0 {
		t.Errorf("reset other documents: got %d, %v, want 0", n, err)
	}
	if n, err := s.ResetFailedWork(ctx, model.WorkStageParse, bad); err != nil || n != 1 {
		t.Errorf("reset bad document: got %d, %v, want 1", n, err)
	}

	work, err := s.GetDocumentWork(ctx, bad)
	if err != nil {
		t.Fatalf("document work: %v", err)
	}
	if len(work) != 1 || work[0].Status != model.WorkStatusQueued || work[0].ErrorCode != nil {
		t.Errorf("document work after reset: got %+v", work)
	}
}

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newick.db")
	if err := store.InitDatabase(path); err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := store.InitDatabase(path); err == nil {
		t.Errorf("init existing database: want error")
	}

	s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: path})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	id, _, err := s.InsertDocument(context.Background(), adapters.TextToDocument("a.nwk", []byte("A;")))
	if err != nil || id == 0 {
		t.Fatalf("insert document: %d %v", id, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.CompactDatabase(path); err != nil {
		t.Fatalf("compact database: %v", err)
	}

	if _, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: filepath.Join(t.TempDir(), "missing.db")}); err == nil {
		t.Errorf("open missing database: want error")
	}
}
