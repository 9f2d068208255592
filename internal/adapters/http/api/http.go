// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sentinela-io/sentinela/internal/adapters/repository"
	"github.com/sentinela-io/sentinela/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord and Unrecord back job idempotency.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes a job for async evaluation. Returns false on backpressure.
	Enqueue(ctx context.Context, j model.Job) bool

	// Read operations expose evaluation data.
	Result(ctx context.Context, jobID string) (*model.EvaluationResult, error)
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// Entry mirrors the read shape returned by watchboard queries.
type Entry = repository.Entry

// Server wires HTTP routes for the surveillance API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluationsHandler *EvaluationsHandler
	watchboardHandler  *WatchboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxWatchboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		evaluationsHandler: NewEvaluationsHandler(deps),
		watchboardHandler:  NewWatchboardHandler(deps, maxWatchboardLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("/evaluations/", MetricsMiddleware(s.evaluationsHandler.HandleGetEvaluation, "evaluation"))
	mux.HandleFunc("/watchboard", MetricsMiddleware(s.watchboardHandler.HandleGetWatchboard, "watchboard"))
}

type ackResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
