// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sentinela-io/sentinela/internal/adapters/repository"
	"github.com/sentinela-io/sentinela/internal/domain/model"
	"github.com/sentinela-io/sentinela/internal/domain/series"
)

const dateLayout = "2006-01-02"

// EvaluationsHandler handles evaluation submissions and lookups.
type EvaluationsHandler struct {
	deps Dependencies
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps Dependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

// evaluationRequest mirrors the wire schema for POST /evaluations.
type evaluationRequest struct {
	JobID     string               `json:"job_id"`
	Region    string               `json:"region"`
	Timeframe string               `json:"timeframe"`
	Dates     []string             `json:"dates"`
	Series    map[string][]float64 `json:"series"`
	Roles     model.Roles          `json:"roles"`
}

func (e evaluationRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Region) == "":
		return errors.New("missing region")
	case strings.TrimSpace(e.Roles.Target) == "":
		return errors.New("missing roles.target")
	case len(e.Series) == 0:
		return errors.New("missing series")
	}
	length := -1
	for term, values := range e.Series {
		if length == -1 {
			length = len(values)
		}
		if len(values) != length {
			return errors.New("series " + term + " length differs from the others")
		}
	}
	if length == 0 {
		return errors.New("series must not be empty")
	}
	if len(e.Dates) > 0 && len(e.Dates) != length {
		return errors.New("dates length differs from series length")
	}
	return nil
}

// toJob converts the request into a domain job with a bound series table.
func (e evaluationRequest) toJob() (model.Job, error) {
	var dates []time.Time
	for _, d := range e.Dates {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return model.Job{}, errors.New("invalid date " + d + "; must be YYYY-MM-DD")
		}
		dates = append(dates, t)
	}

	table := series.NewTable(dates)
	for term, values := range e.Series {
		if err := table.Add(term, values); err != nil {
			return model.Job{}, err
		}
	}
	if err := e.Roles.Validate(table); err != nil {
		return model.Job{}, err
	}

	jobID := strings.TrimSpace(e.JobID)
	if jobID == "" {
		jobID = uuid.NewString()
	}
	return model.Job{
		ID:        jobID,
		Region:    e.Region,
		Timeframe: e.Timeframe,
		Table:     table,
		Roles:     e.Roles,
	}, nil
}

// HandlePostEvaluation handles POST /evaluations requests.
func (h *EvaluationsHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	job, err := req.toJob()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), job.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", JobID: job.ID, Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), job); !ok {
		// Roll back the "seen" status since enqueue failed.
		h.deps.Unrecord(r.Context(), job.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", JobID: job.ID, Duplicate: false})
}

// HandleGetEvaluation handles GET /evaluations/{job_id} requests.
func (h *EvaluationsHandler) HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/evaluations/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	result, err := h.deps.Result(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
