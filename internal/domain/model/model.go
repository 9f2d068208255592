// Package model contains the domain objects passed between layers.
package model

import (
	"fmt"
	"time"

	"github.com/sentinela-io/sentinela/internal/domain/impact"
	"github.com/sentinela-io/sentinela/internal/domain/indices"
	"github.com/sentinela-io/sentinela/internal/domain/lagcorr"
	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// Roles binds term names to their semantic roles in an evaluation. The
// binding is explicit by name: the pipeline never guesses roles from list
// position, which silently mis-binds the moment a caller reorders terms.
//
// Target is mandatory. The others are optional; indices that depend on a
// missing role degrade to their documented sentinel readings.
type Roles struct {
	Target          string `json:"target"`
	Clinical        string `json:"clinical"`
	Pharmacological string `json:"pharmacological"`
	News            string `json:"news"`
	Control         string `json:"control"`
}

// Validate checks that the target is bound and that every bound role names
// a series present in the table.
func (r Roles) Validate(t *series.Table) error {
	if r.Target == "" {
		return fmt.Errorf("%w: no target term bound", series.ErrInvalidInput)
	}
	for role, term := range map[string]string{
		"target":          r.Target,
		"clinical":        r.Clinical,
		"pharmacological": r.Pharmacological,
		"news":            r.News,
		"control":         r.Control,
	} {
		if term == "" {
			continue
		}
		if _, ok := t.Series(term); !ok {
			return fmt.Errorf("%w: role %s bound to %q, which is not in the table",
				series.ErrInvalidInput, role, term)
		}
	}
	return nil
}

// Job is one evaluation request: a fetched series table plus the scalar
// configuration the pipeline needs to interpret it.
type Job struct {
	ID        string
	Region    string
	Timeframe string
	Table     *series.Table
	Roles     Roles
}

// EvaluationResult is the terminal aggregate of one pipeline run. It is
// created once per invocation and never mutated afterwards; the
// presentation layer consumes it read-only.
type EvaluationResult struct {
	JobID       string    `json:"job_id"`
	Region      string    `json:"region"`
	Timeframe   string    `json:"timeframe"`
	TargetTerm  string    `json:"target_term"`
	EvaluatedAt time.Time `json:"evaluated_at"`

	LatestRaw         float64 `json:"latest_raw"`
	LatestSmoothed    float64 `json:"latest_smoothed"`
	LatestBaseline    float64 `json:"latest_baseline"`
	LatestThreshold   float64 `json:"latest_threshold"`
	ThresholdExceeded bool    `json:"threshold_exceeded"`

	Lag     lagcorr.Result    `json:"lag"`
	Impact  impact.Score      `json:"impact"`
	Indices indices.Composite `json:"indices"`

	// Intermediate series, kept for charting and export by the caller.
	Smoothed     *series.Table  `json:"-"`
	Baseline     *series.Series `json:"-"`
	Threshold    *series.Series `json:"-"`
	Velocity     *series.Series `json:"-"`
	Acceleration *series.Series `json:"-"`
}
