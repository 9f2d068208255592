// Package baseline computes the endemic channel: a robust, look-ahead-free
// alert threshold over a raw interest series.
//
// The estimator is shifted by one day before any statistic is computed, so
// the threshold for a date depends only on values strictly before it. A
// same-day estimator would let an outbreak raise its own "normal range" and
// suppress the very alert it should trigger. Median/MAD replace mean/sigma
// so a single viral-news day in the training window cannot drag the channel.
package baseline

import (
	"fmt"
	"math"

	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// madConsistency rescales MAD to a consistent estimator of the standard
// deviation under normality, making k*MAD comparable to k*sigma.
const madConsistency = 1.4826

// defaultMultiplier is the default number of (rescaled) MADs above the
// baseline at which the channel alerts.
const defaultMultiplier = 3.0

// Estimator derives baseline and threshold series from raw input.
type Estimator struct {
	window     int
	multiplier float64
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithMultiplier sets the MAD multiplier for the alert threshold.
func WithMultiplier(k float64) Option {
	return func(e *Estimator) {
		if k > 0 {
			e.multiplier = k
		}
	}
}

// New creates an estimator with the given smoothing window. The training
// window for each date is 2*window shifted samples.
func New(window int, opts ...Option) (*Estimator, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: baseline window %d, must be >= 1", series.ErrInvalidWindow, window)
	}
	e := &Estimator{window: window, multiplier: defaultMultiplier}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Channel holds the derived endemic-channel series. Baseline and Threshold
// have the same length as the input; index 0 is NaN because no shifted
// history exists there, and callers must treat NaN as "undefined".
type Channel struct {
	Baseline  *series.Series
	Threshold *series.Series
}

// Compute derives the endemic channel for a raw series. For each date i it
// takes the up-to-2*window values ending at i-1, uses their median as the
// baseline and median + k*1.4826*MAD as the threshold. Zero MAD collapses
// the threshold onto the baseline, a degenerate but defined reading.
func (e *Estimator) Compute(s *series.Series) (*Channel, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series for endemic channel", series.ErrInsufficientData)
	}

	span := 2 * e.window
	baseline := s.Copy()
	baseline.Name = s.Name + "_baseline"
	threshold := s.Copy()
	threshold.Name = s.Name + "_threshold"

	for i := 0; i < s.Len(); i++ {
		if i == 0 {
			baseline.Values[i] = math.NaN()
			threshold.Values[i] = math.NaN()
			continue
		}
		lo := i - span
		if lo < 0 {
			lo = 0
		}
		window := s.Values[lo:i] // ends at i-1: the one-day backward shift
		med := series.Median(window)
		mad := series.MAD(window)
		baseline.Values[i] = med
		threshold.Values[i] = med + e.multiplier*madConsistency*mad
	}

	return &Channel{Baseline: baseline, Threshold: threshold}, nil
}

// Exceeded reports whether the latest raw value crossed the latest defined
// threshold. An undefined (NaN) threshold never counts as exceeded.
func (c *Channel) Exceeded(latest float64) bool {
	t := c.Threshold.Last()
	if math.IsNaN(t) || math.IsNaN(latest) {
		return false
	}
	return latest > t
}
