package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Indexed nodes.
	r.Get("/nodes", h.ListNodes)
	r.Get("/nodes/{id}", h.GetNode)

	// Vault notes.
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/identify/*", h.EnsureIdentifier)
	r.Get("/notes/*", h.GetNote)

	// Search.
	r.Get("/search", h.Search)

	// Graph.
	r.Get("/graph", h.Graph)

	// Reconciliation audits.
	r.Get("/audit/unlinked", h.AuditUnlinked)
	r.Get("/audit/linked", h.AuditLinked)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
