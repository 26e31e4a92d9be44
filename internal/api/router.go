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
	ih := NewImageHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Canvas CRUD.
	r.Post("/canvas", h.CreateCanvas)
	r.Get("/canvas/{id}", h.GetCanvas)
	r.Put("/canvas/{id}", h.UpdateCanvas)
	r.Delete("/canvas/{id}", h.DeleteCanvas)

	// Tree.
	r.Get("/tree", h.GetTree)
	r.Put("/tree", h.UpdateTree)

	// Images.
	r.Post("/upload", ih.Upload)
	r.Get("/images/{filename}", ih.ServeFile)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
