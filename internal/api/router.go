// Package api exposes the pokedex service over HTTP: introspection
// endpoints at the root, data and admin endpoints under /api.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pokedexapi/pkg/pokedex"
)

// NewRouter builds the HTTP handler for the service.
func NewRouter(svc *pokedex.Service) http.Handler {
	h := newHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Data reads answer 503 instead of queueing behind a running refresh.
		r.Group(func(r chi.Router) {
			r.Use(h.busyGuard)
			r.Get("/pokedex", h.listSummaries)
			r.Get("/pokemon/{ident}", h.getPokemon)
			r.Get("/generations", h.listGenerations)
			r.Get("/types", h.listTypes)
		})

		r.Post("/refresh/{artifact}", h.refresh)
	})

	return r
}
