// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package handlers serves the tree store over HTTP.
package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/model"
	"github.com/mdhender/newick/pipelines/stages"
	"github.com/mdhender/newick/renderer"
	store "github.com/mdhender/newick/stores/sqlite"
)

// maxUploadSize limits the size of an uploaded Newick file.
const maxUploadSize = 1 << 20

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store    *store.SQLiteStore
	ingest   *stages.IngestService
	worker   *stages.WorkerService
	renderer *renderer.Renderer
	options  []newick.Option
}

// New creates a new Handlers with the given store.
// The options are used when parsing uploads and stored trees.
func New(s *store.SQLiteStore, r *renderer.Renderer, options ...newick.Option) *Handlers {
	return &Handlers{
		store:    s,
		ingest:   stages.NewIngestService(s),
		worker:   stages.NewWorkerService(s, "", options...),
		renderer: r,
		options:  options,
	}
}

// Routes registers the handlers on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /documents", h.Documents)
	mux.HandleFunc("GET /documents/{id}", h.DocumentTrees)
	mux.HandleFunc("GET /documents/{id}/ascii", h.DocumentASCII)
	mux.HandleFunc("GET /nodes", h.Nodes)
	mux.HandleFunc("POST /upload", h.Upload)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Name       string `json:"name"`
	DocumentID int64  `json:"documentId"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Trees      int    `json:"trees"`
	ErrorCode  string `json:"errorCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode: %v", err)
	}
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// Index reports the version and the size of the store.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Version string      `json:"version"`
		Stats   model.Stats `json:"stats"`
	}{
		Version: newick.Version().String(),
		Stats:   h.store.Stats(),
	})
}

// Documents lists the stored documents.
func (h *Handlers) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDocuments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// loadTrees returns the trees of the document named in the path.
// It writes the error response and returns false when it fails.
func (h *Handlers) loadTrees(w http.ResponseWriter, r *http.Request) ([]*newick.Node, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid document id"})
		return nil, false
	}
	doc, err := h.store.GetDocumentByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	} else if doc == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "document not found"})
		return nil, false
	}
	trees, err := h.store.LoadTrees(r.Context(), id, h.options...)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}
	return trees, true
}

// DocumentTrees writes the trees of a document as Newick text.
func (h *Handlers) DocumentTrees(w http.ResponseWriter, r *http.Request) {
	trees, ok := h.loadTrees(w, r)
	if !ok {
		return
	}
	writeText(w, newick.Dumps(trees...)+"\n")
}

// DocumentASCII draws the trees of a document.
func (h *Handlers) DocumentASCII(w http.ResponseWriter, r *http.Request) {
	trees, ok := h.loadTrees(w, r)
	if !ok {
		return
	}
	var text string
	for i, tree := range trees {
		if i != 0 {
			text += "\n"
		}
		text += h.renderer.Render(tree) + "\n"
	}
	writeText(w, text)
}

// Nodes finds stored nodes by their unquoted name, given as ?name=.
func (h *Handlers) Nodes(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}
	rows, err := h.store.FindNodes(r.Context(), name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if rows == nil {
		rows = []model.NodeRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Upload stores a Newick file sent as the "file" field of a multipart
// form and parses it before responding.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to parse form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read file: " + err.Error()})
		return
	}

	result, err := h.ingest.IngestFile(r.Context(), stages.IngestRequest{Name: header.Filename, Data: data})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Name: header.Filename, ErrorCode: stages.ErrorCode(err), Error: err.Error()})
		return
	}
	resp := uploadResponse{Name: header.Filename, DocumentID: result.DocumentID, Duplicate: result.Duplicate}

	if !result.Duplicate {
		if _, err := h.worker.Drain(r.Context(), model.WorkStageParse, 1); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
	}

	// a duplicate reports the outcome of the original upload
	work, err := h.store.GetDocumentWork(r.Context(), result.DocumentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	for _, job := range work {
		if job.Stage != model.WorkStageParse {
			continue
		}
		if job.Status == model.WorkStatusFailed {
			if job.ErrorCode != nil {
				resp.ErrorCode = *job.ErrorCode
			}
			if job.ErrorMessage != nil {
				resp.Error = *job.ErrorMessage
			}
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		break
	}

	trees, err := h.store.LoadTrees(r.Context(), result.DocumentID, h.options...)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	resp.Trees = len(trees)

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}
