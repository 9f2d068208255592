// Package smoothing implements the retrospective (causal) moving average.
//
// The window is strictly trailing: the smoothed value for a day is the mean
// of that day and the w-1 days before it, never anything later. A centered
// window would let tomorrow leak into today's reading and void any claim of
// real-time predictive validity.
package smoothing

import (
	"fmt"

	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// Timeframe-adaptive window sizes, in days.
const (
	WindowOneMonth     = 5
	WindowThreeMonths  = 7
	WindowTwelveMonths = 21
	WindowDefault      = 7
)

// WindowForTimeframe maps a timeframe label to its smoothing window.
// Unknown labels fall back to the default window.
func WindowForTimeframe(timeframe string) int {
	switch timeframe {
	case "1m", "today 1-m":
		return WindowOneMonth
	case "3m", "today 3-m":
		return WindowThreeMonths
	case "12m", "today 12-m":
		return WindowTwelveMonths
	default:
		return WindowDefault
	}
}

// Smooth returns a new series of equal length where entry i is the mean of
// entries [max(0, i-w+1), i]. Heads shorter than the window use whatever is
// available, minimum one value, so the output is defined everywhere.
func Smooth(s *series.Series, window int) (*series.Series, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: smoothing window %d, must be >= 1", series.ErrInvalidWindow, window)
	}
	out := s.Copy()
	out.Name = s.Name + "_smooth"
	if window == 1 {
		return out, nil
	}

	sum := 0.0
	for i, v := range s.Values {
		sum += v
		if i >= window {
			sum -= s.Values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out.Values[i] = sum / float64(n)
	}
	return out, nil
}

// SmoothTable smooths every series in a table, returning a new table over
// the same date index with _smooth-suffixed series names preserved as the
// original term keys.
func SmoothTable(t *series.Table, window int) (*series.Table, error) {
	out := series.NewTable(t.Dates())
	for _, term := range t.Terms() {
		s, _ := t.Series(term)
		smoothed, err := Smooth(s, window)
		if err != nil {
			return nil, err
		}
		if err := out.Add(term, smoothed.Values); err != nil {
			return nil, err
		}
	}
	return out, nil
}
