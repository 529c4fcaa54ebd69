package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/tgupload/internal/metrics"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", metrics.Handler())

	// Status endpoints require auth and are not mounted without it.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.logger))
			r.Get("/status", g.handleStatus())
			r.Get("/status/jobs/{id}", g.handleJob())
		})
	}

	return r
}
