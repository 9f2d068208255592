// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
)

// WatchboardDependencies defines the interface for watchboard operations.
type WatchboardDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// WatchboardHandler handles watchboard requests.
type WatchboardHandler struct {
	deps     WatchboardDependencies
	maxLimit int
}

// NewWatchboardHandler creates a new watchboard handler.
func NewWatchboardHandler(deps WatchboardDependencies, maxLimit int) *WatchboardHandler {
	return &WatchboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetWatchboard handles GET /watchboard?limit=N requests.
func (h *WatchboardHandler) HandleGetWatchboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_watchboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
