package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/tgupload/internal/journal"
)

const maxStatusLimit = 500

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds int64         `json:"uptime_seconds"`
	Pending       int           `json:"pending"`
	Busy          int           `json:"busy"`
	Jobs          []journal.Job `json:"jobs"`
}

// JobResponse is the JSON response for GET /status/jobs/{id}.
type JobResponse struct {
	Job   journal.Job    `json:"job"`
	Files []journal.File `json:"files"`
}

// handleStatus returns an http.HandlerFunc for GET /status. The optional
// limit query parameter bounds the number of recent jobs.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := g.config.StatusLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxStatusLimit)
		}

		resp := StatusResponse{
			UptimeSeconds: int64(time.Since(g.startedAt).Seconds()),
			Jobs:          []journal.Job{},
		}
		if g.queue != nil {
			resp.Pending = g.queue.Pending()
			resp.Busy = g.queue.Busy()
		}
		if g.journal != nil {
			jobs, err := g.journal.Recent(r.Context(), limit)
			if err != nil {
				g.logger.Error("gateway: list recent jobs", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "journal unavailable")
				return
			}
			if jobs != nil {
				resp.Jobs = jobs
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// handleJob returns an http.HandlerFunc for GET /status/jobs/{id}.
func (g *Gateway) handleJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.journal == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "journal not available")
			return
		}

		id := chi.URLParam(r, "id")
		job, err := g.journal.Job(r.Context(), id)
		if errors.Is(err, journal.ErrJobNotFound) {
			writeJSONError(w, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			g.logger.Error("gateway: load job", "job", id, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "journal unavailable")
			return
		}

		files, err := g.journal.Files(r.Context(), id)
		if err != nil {
			g.logger.Error("gateway: load job files", "job", id, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "journal unavailable")
			return
		}
		if files == nil {
			files = []journal.File{}
		}
		writeJSON(w, http.StatusOK, JobResponse{Job: job, Files: files})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
