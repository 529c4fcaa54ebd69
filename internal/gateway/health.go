package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"` // "ok" or "degraded"
	Pending int    `json:"pending"`
	Busy    int    `json:"busy"`
	Journal string `json:"journal,omitempty"`
}

// pinger is implemented by persistent journal stores.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when the journal answers, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.queue != nil {
			resp.Pending = g.queue.Pending()
			resp.Busy = g.queue.Busy()
		}

		if p, ok := g.journal.(pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Journal = err.Error()
			} else {
				resp.Journal = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
