package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/harvest/internal/sessionservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *sessionservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/farms", h.ListFarms)
	r.Get("/farms/{name}", h.GetFarm)
	r.Get("/tags", h.ListTags)

	// Sessions.
	r.Post("/sessions", h.StartSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.EndSession)
		r.Put("/query", h.SetQuery)
		r.Post("/tags/{tag}", h.ToggleTag)
		r.Delete("/tags", h.ClearFilters)
		r.Put("/view-mode", h.SetViewMode)
		r.Post("/view-mode/toggle", h.ToggleViewMode)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
