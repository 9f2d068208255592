// Package lagcorr estimates the lead time between a predictor series and a
// target series by exhaustive cross-correlation scan over a bounded lag
// window. The relationship it looks for is weak and noisy (symptom searches
// preceding disease-name searches over at most ~90 points), so a bounded
// scan is preferred over a closed-form estimator that would overfit.
package lagcorr

import (
	"fmt"

	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// Mode selects the input transform applied before correlating.
type Mode string

const (
	// ModeRaw correlates the level series as-is.
	ModeRaw Mode = "raw"
	// ModeDifferenced correlates first differences, removing slow shared
	// trends that inflate the correlation of two series that are both
	// simply rising. This is the scientifically preferred mode.
	ModeDifferenced Mode = "differenced"
)

// ParseMode validates a mode label.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaw, ModeDifferenced:
		return Mode(s), nil
	case "":
		return ModeDifferenced, nil
	default:
		return "", fmt.Errorf("%w: unknown lag mode %q", series.ErrInvalidInput, s)
	}
}

// DefaultMaxLag bounds the scan window, in days.
const DefaultMaxLag = 14

// Result is the best-fitting time offset found by a scan.
//
// Lag 0 with correlation -1 is the "no relationship found" sentinel: no lag
// produced a finite correlation. Callers must check Found before reading
// Lag as a real lead time.
type Result struct {
	Lag         int
	Correlation float64
	PValue      float64
	HasPValue   bool
}

// Found reports whether the scan found any finite-correlation lag.
func (r Result) Found() bool {
	return r.Lag > 0
}

// Correlator scans lags between a target and a predictor.
type Correlator struct {
	maxLag       int
	mode         Mode
	significance bool
}

// Option applies a configuration option to the Correlator.
type Option func(*Correlator)

// WithMaxLag bounds the scan window.
func WithMaxLag(maxLag int) Option {
	return func(c *Correlator) {
		if maxLag > 0 {
			c.maxLag = maxLag
		}
	}
}

// WithMode selects raw or differenced input.
func WithMode(mode Mode) Option {
	return func(c *Correlator) {
		if mode == ModeRaw || mode == ModeDifferenced {
			c.mode = mode
		}
	}
}

// WithSignificance enables the two-sided p-value on the winning lag.
func WithSignificance(enabled bool) Option {
	return func(c *Correlator) {
		c.significance = enabled
	}
}

// New creates a correlator. Defaults: maxLag 14, differenced mode, no
// significance estimate.
func New(opts ...Option) *Correlator {
	c := &Correlator{
		maxLag: DefaultMaxLag,
		mode:   ModeDifferenced,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scan finds the lag in [1, maxLag] at which the predictor, shifted forward
// in time, best correlates with the target. The winning lag maximizes the
// correlation coefficient itself, not its absolute value: only
// "predictor leads target" relationships are sought. Ties break toward the
// smallest lag. Equal-length inputs are a precondition.
func (c *Correlator) Scan(target, predictor *series.Series) (Result, error) {
	if target.Len() != predictor.Len() {
		return Result{}, fmt.Errorf("%w: target has %d points, predictor %d",
			series.ErrInvalidInput, target.Len(), predictor.Len())
	}

	t := target.Values
	p := predictor.Values
	if c.mode == ModeDifferenced {
		t = target.Diff().Values
		p = predictor.Diff().Values
	}

	best := Result{Lag: 0, Correlation: -1}
	found := false
	var bestN int

	for lag := 1; lag <= c.maxLag; lag++ {
		if len(t)-lag < 2 {
			break
		}
		// Predictor value from `lag` days ago against the target's today.
		corr, err := series.Pearson(t[lag:], p[:len(p)-lag])
		if err != nil {
			continue
		}
		if !found || corr > best.Correlation {
			best.Lag = lag
			best.Correlation = corr
			bestN = len(t) - lag
			found = true
		}
	}

	if !found {
		return Result{Lag: 0, Correlation: -1}, nil
	}
	if c.significance {
		best.PValue = series.PearsonPValue(best.Correlation, bestN)
		best.HasPValue = true
	}
	return best, nil
}
