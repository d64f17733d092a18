package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/docservice"
	"github.com/starford/dagaz/internal/engine"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(eng *engine.Engine, docs *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(eng, docs)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents.
	r.Get("/docs", h.ListDocs)
	r.Post("/docs", h.CreateDoc)
	r.Post("/docs/archive", h.ArchiveDoc)
	r.Get("/docs/*", h.GetDoc)

	// Derived views.
	r.Get("/report", h.Report)
	r.Get("/listings", h.Listings)
	r.Get("/graph", h.Graph)
	r.Get("/status", h.Status)

	// Search.
	r.Get("/search", h.Search)

	// Maintenance.
	r.Post("/rescan", h.Rescan)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
