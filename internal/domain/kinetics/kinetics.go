// Package kinetics estimates outbreak dynamics: velocity (first discrete
// derivative) and acceleration (second), telling whether a signal is
// gaining or losing force.
package kinetics

import (
	"fmt"

	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// Result holds the derivative series, each the same length as the input.
type Result struct {
	Velocity     *series.Series
	Acceleration *series.Series
}

// Compute returns velocity and acceleration via central differences, with
// one-sided differences at the boundaries. Series shorter than two points
// have no defined derivative.
func Compute(s *series.Series) (*Result, error) {
	if s.Len() < 2 {
		return nil, fmt.Errorf("%w: %d points, derivative needs at least 2", series.ErrInsufficientData, s.Len())
	}

	velocity := gradient(s, "_velocity")
	acceleration := gradient(velocity, "_acceleration")
	acceleration.Name = s.Name + "_acceleration"
	return &Result{Velocity: velocity, Acceleration: acceleration}, nil
}

// gradient computes the discrete gradient over a unit spacing: central
// differences inside, one-sided at the edges.
func gradient(s *series.Series, suffix string) *series.Series {
	n := s.Len()
	out := s.Copy()
	out.Name = s.Name + suffix

	out.Values[0] = s.Values[1] - s.Values[0]
	out.Values[n-1] = s.Values[n-1] - s.Values[n-2]
	for i := 1; i < n-1; i++ {
		out.Values[i] = (s.Values[i+1] - s.Values[i-1]) / 2
	}
	return out
}
