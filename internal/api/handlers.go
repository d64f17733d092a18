package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/docservice"
	"github.com/starford/dagaz/internal/engine"
	"github.com/starford/dagaz/internal/graph"
	"github.com/starford/dagaz/internal/query"
)

// Handler holds API route handlers.
type Handler struct {
	eng  *engine.Engine
	docs *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(eng *engine.Engine, docs *docservice.Service) *Handler {
	return &Handler{eng: eng, docs: docs}
}

// snapshot returns the current snapshot or replies 503 when the engine has
// not completed its first build.
func (h *Handler) snapshot(w http.ResponseWriter) *engine.Snapshot {
	snap := h.eng.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("repository not scanned yet"))
	}
	return snap
}

// docPath extracts the document path from the URL (everything after
// /api/docs/). Supports encoded slashes (e.g. guides%2Fintro.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocs handles GET /api/docs with optional ?tag= filtering.
func (h *Handler) ListDocs(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	docs := snap.Collection.All()
	if tag := r.URL.Query().Get("tag"); tag != "" {
		docs = query.ByTag(snap.Collection, tag)
	}
	items := make([]DocListItem, len(docs))
	for i, doc := range docs {
		items[i] = listItem(doc)
	}
	writeJSON(w, http.StatusOK, DocListResponse{Docs: items, Total: len(items)})
}

// GetDoc handles GET /api/docs/*.
func (h *Handler) GetDoc(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	sum, err := query.Summarize(snap.Collection, snap.Graph, snap.Report, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get doc failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	doc := sum.Document
	writeJSON(w, http.StatusOK, DocDetail{
		Path:      doc.Path,
		Title:     doc.Title,
		Category:  doc.Category,
		Status:    doc.Status,
		Tags:      nonNilSlice(doc.Tags),
		Created:   doc.Created,
		Updated:   doc.Updated,
		Body:      doc.Body,
		Outbound:  nonNilSlice(sum.Outbound),
		Backlinks: nonNilSlice(sum.Backlinks),
		Issues:    nonNilSlice(sum.Issues),
	})
}

// CreateDoc handles POST /api/docs.
func (h *Handler) CreateDoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	rel, err := h.docs.New(req.Category, req.Title, time.Now())
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("document already exists"))
		} else {
			slog.Error("create doc failed", slog.String("title", req.Title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		}
		return
	}
	if _, err := h.eng.Rebuild(r.Context()); err != nil {
		slog.Error("rebuild after create failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": rel})
}

// ArchiveDoc handles POST /api/docs/archive.
func (h *Handler) ArchiveDoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ArchiveDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	dest, err := h.docs.Archive(req.Path, req.Reason, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("archive destination already exists"))
		default:
			slog.Error("archive doc failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if _, err := h.eng.Rebuild(r.Context()); err != nil {
		slog.Error("rebuild after archive failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": dest})
}

// Report handles GET /api/report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.Report)
}

// Listings handles GET /api/listings.
func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.Listings)
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	nodes := make([]GraphNode, 0, snap.Collection.Len())
	for _, doc := range snap.Collection.All() {
		nodes = append(nodes, GraphNode{ID: doc.Path, Title: doc.Title})
	}
	edges := snap.Graph.Edges()
	links := make([]GraphLink, 0, len(edges))
	for _, e := range edges {
		links = append(links, GraphLink{
			Source:      e.Source,
			Target:      e.Target,
			Ref:         e.Ref,
			Kind:        edgeKind(e.Kind),
			Occurrences: e.Occurrences,
		})
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	docs := query.ByKeyword(snap.Collection, q)
	results := make([]DocListItem, len(docs))
	for i, doc := range docs {
		results[i] = listItem(doc)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	errs, warns, infos := snap.Report.Counts()
	writeJSON(w, http.StatusOK, StatusResponse{
		Docs:       snap.Collection.Len(),
		Failures:   len(snap.Failures),
		Errors:     errs,
		Warnings:   warns,
		Infos:      infos,
		Categories: query.Counts(snap.Collection),
		BuiltAt:    snap.BuiltAt,
	})
}

// Rescan handles POST /api/rescan.
func (h *Handler) Rescan(w http.ResponseWriter, r *http.Request) {
	snap, err := h.eng.Rebuild(r.Context())
	if err != nil {
		slog.Error("rescan failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("rescan failed"))
		return
	}
	errs, warns, infos := snap.Report.Counts()
	writeJSON(w, http.StatusOK, StatusResponse{
		Docs:     snap.Collection.Len(),
		Failures: len(snap.Failures),
		Errors:   errs,
		Warnings: warns,
		Infos:    infos,
		BuiltAt:  snap.BuiltAt,
	})
}

func edgeKind(k graph.EdgeKind) string {
	switch k {
	case graph.EdgeResolved:
		return "resolved"
	case graph.EdgeBroken:
		return "broken"
	case graph.EdgeAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}
