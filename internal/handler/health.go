package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker is the subset of the store the health endpoint needs.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// JobCounter reports background jobs by status.
type JobCounter interface {
	JobCounts(ctx context.Context) (map[string]int64, error)
}

type HealthHandler struct {
	db     HealthChecker
	jobs   JobCounter
	logger *slog.Logger
}

func NewHealthHandler(db HealthChecker, jobs JobCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		jobs:   jobs,
		logger: logger,
	}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

type healthResponse struct {
	Status string           `json:"status"`
	Jobs   map[string]int64 `json:"jobs,omitempty"`
}

// Health reports 503 when the database is unreachable. Job counts are
// informational and never fail the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	resp := healthResponse{Status: "ok"}
	if h.jobs != nil {
		counts, err := h.jobs.JobCounts(ctx)
		if err != nil {
			h.logger.Warn("failed to count jobs", "error", err)
		} else {
			resp.Jobs = counts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
