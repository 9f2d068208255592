// Package series provides the time-series data structures and statistical
// primitives shared by the surveillance pipeline. All operations are pure:
// inputs are never mutated and derived data is returned in fresh slices.
package series

import (
	"fmt"
	"sort"
	"time"
)

// Series is an ordered sequence of daily observations. Values on the
// search-interest scale live in [0, 100]; derived quantities (differences,
// thresholds, z-scores) are unbounded.
type Series struct {
	Dates  []time.Time
	Values []float64
	Name   string
}

// New creates a series from values alone, synthesizing a contiguous daily
// date index ending today.
func New(values []float64) *Series {
	dates := make([]time.Time, len(values))
	base := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -len(values)+1)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	return &Series{Dates: dates, Values: values}
}

// NewWithDates creates a series with an explicit date index.
func NewWithDates(dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("%w: %d dates vs %d values", ErrInvalidInput, len(dates), len(values))
	}
	return &Series{Dates: dates, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	dates := make([]time.Time, len(s.Dates))
	copy(dates, s.Dates)
	return &Series{Dates: dates, Values: values, Name: s.Name}
}

// Last returns the most recent value, or NaN for an empty series.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return nan()
	}
	return s.Values[len(s.Values)-1]
}

// Diff returns the first difference of the series, one element shorter
// than the input.
func (s *Series) Diff() *Series {
	if len(s.Values) < 2 {
		return &Series{Values: []float64{}, Name: s.Name + "_diff"}
	}
	values := make([]float64, len(s.Values)-1)
	for i := 1; i < len(s.Values); i++ {
		values[i-1] = s.Values[i] - s.Values[i-1]
	}
	dates := make([]time.Time, len(values))
	if len(s.Dates) == len(s.Values) {
		copy(dates, s.Dates[1:])
	}
	return &Series{Dates: dates, Values: values, Name: s.Name + "_diff"}
}

// Table maps term names to series sharing a single date index. Every series
// in a table has identical length; construction enforces the invariant.
type Table struct {
	dates   []time.Time
	columns map[string]*Series
}

// NewTable creates an empty table over the given date index. A nil or
// empty index is adopted from the first series added, synthesized as a
// contiguous daily range ending today.
func NewTable(dates []time.Time) *Table {
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Table{dates: d, columns: make(map[string]*Series)}
}

// Add binds a term to its values. The values must match the table's date
// index length; mismatches are precondition failures, never coerced.
func (t *Table) Add(term string, values []float64) error {
	if term == "" {
		return fmt.Errorf("%w: empty term name", ErrInvalidInput)
	}
	if len(t.dates) == 0 && len(t.columns) == 0 && len(values) > 0 {
		t.dates = New(make([]float64, len(values))).Dates
	}
	if len(values) != len(t.dates) {
		return fmt.Errorf("%w: series %q has %d values, table index has %d dates",
			ErrInvalidInput, term, len(values), len(t.dates))
	}
	v := make([]float64, len(values))
	copy(v, values)
	s, err := NewWithDates(t.dates, v)
	if err != nil {
		return err
	}
	s.Name = term
	t.columns[term] = s
	return nil
}

// Series returns the series bound to term.
func (t *Table) Series(term string) (*Series, bool) {
	s, ok := t.columns[term]
	return s, ok
}

// Terms returns the bound term names in lexical order.
func (t *Table) Terms() []string {
	terms := make([]string, 0, len(t.columns))
	for term := range t.columns {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Dates returns a copy of the shared date index.
func (t *Table) Dates() []time.Time {
	d := make([]time.Time, len(t.dates))
	copy(d, t.dates)
	return d
}

// Len returns the length of the shared date index.
func (t *Table) Len() int {
	return len(t.dates)
}
