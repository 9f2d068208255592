// Package repository defines the watchboard store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/sentinela-io/sentinela/internal/domain/indices"
	"github.com/sentinela-io/sentinela/internal/domain/model"
)

// Entry is one watchboard row: the latest evaluation for a (region, term)
// pair, ranked by population-adjusted impact.
type Entry struct {
	Rank            int                    `json:"rank"`
	Region          string                 `json:"region"`
	TargetTerm      string                 `json:"target_term"`
	NormalizedScore float64                `json:"normalized_score"`
	Classification  indices.Classification `json:"classification"`
	JobID           string                 `json:"job_id"`
	EvaluatedAt     time.Time              `json:"evaluated_at"`
}

// Store provides read/write access to evaluation results and the ranked
// watchboard derived from them.
type Store interface {
	// Record stores a finished evaluation and refreshes the watchboard row
	// for its (region, target term) pair.
	Record(ctx context.Context, result *model.EvaluationResult) error

	// Get returns a stored evaluation by job ID.
	// Returns ErrNotFound when the job is unknown.
	Get(ctx context.Context, jobID string) (*model.EvaluationResult, error)

	// TopN returns the top-N watchboard rows ordered by normalized score
	// descending. Returns ErrInvalidLimit when n is not positive.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of (region, term) pairs on the watchboard.
	Count(ctx context.Context) int
}
