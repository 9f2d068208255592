// Package impact converts a relative search-interest value into a
// population-adjusted absolute score, correcting the denominator bias of
// the 0-100 interest scale: the same relative volume means very different
// searching headcounts in Sao Paulo and in Roraima.
package impact

import (
	"fmt"
	"math"

	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// Mode selects the weighting formula.
type Mode string

const (
	// ModeConnected estimates the absolute searching population per 100k
	// connected residents: (v/100) * (pop * connectivity / 100000).
	ModeConnected Mode = "connected"
	// ModeLogWeight is the legacy magnitude proxy: v * log10(pop).
	ModeLogWeight Mode = "logweight"
)

// ParseMode validates a mode label.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeConnected, ModeLogWeight:
		return Mode(s), nil
	case "":
		return ModeConnected, nil
	default:
		return "", fmt.Errorf("%w: unknown impact mode %q", series.ErrInvalidInput, s)
	}
}

// Fallbacks used when a region is missing from the reference tables.
// Demographic data availability must never block an epidemiological read.
const (
	DefaultPopulation   = 1_000_000
	DefaultConnectivity = 0.70
)

// Score is the normalized impact of the latest smoothed interest value.
type Score struct {
	RawScore         float64 `json:"raw_score"`
	PopulationWeight float64 `json:"population_weight"`
	NormalizedScore  float64 `json:"normalized_score"`
}

// Normalizer looks up demographic reference data and applies the selected
// weighting mode.
type Normalizer struct {
	mode                Mode
	populations         map[string]float64
	connectivity        map[string]float64
	defaultPopulation   float64
	defaultConnectivity float64
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithMode selects the weighting formula.
func WithMode(mode Mode) Option {
	return func(n *Normalizer) {
		if mode == ModeConnected || mode == ModeLogWeight {
			n.mode = mode
		}
	}
}

// WithPopulations sets the region -> resident count reference table.
func WithPopulations(populations map[string]float64) Option {
	return func(n *Normalizer) {
		n.populations = make(map[string]float64, len(populations))
		for region, pop := range populations {
			if pop > 0 {
				n.populations[region] = pop
			}
		}
	}
}

// WithConnectivity sets the region -> internet-penetration fraction table.
// Fractions outside (0, 1] are dropped.
func WithConnectivity(connectivity map[string]float64) Option {
	return func(n *Normalizer) {
		n.connectivity = make(map[string]float64, len(connectivity))
		for region, frac := range connectivity {
			if frac > 0 && frac <= 1 {
				n.connectivity[region] = frac
			}
		}
	}
}

// WithDefaults overrides the fallback population and connectivity used for
// unknown regions.
func WithDefaults(population, connectivity float64) Option {
	return func(n *Normalizer) {
		if population > 0 {
			n.defaultPopulation = population
		}
		if connectivity > 0 && connectivity <= 1 {
			n.defaultConnectivity = connectivity
		}
	}
}

// New creates a normalizer. Defaults: connected mode, empty reference
// tables, standard fallbacks.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		mode:                ModeConnected,
		populations:         make(map[string]float64),
		connectivity:        make(map[string]float64),
		defaultPopulation:   DefaultPopulation,
		defaultConnectivity: DefaultConnectivity,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Lookup returns the population and connectivity for a region, falling back
// to the configured defaults when either is missing.
func (n *Normalizer) Lookup(region string) (population, connectivity float64) {
	population, ok := n.populations[region]
	if !ok {
		population = n.defaultPopulation
	}
	connectivity, ok = n.connectivity[region]
	if !ok {
		connectivity = n.defaultConnectivity
	}
	return population, connectivity
}

// Normalize converts a relative interest value for a region into an impact
// score under the configured mode. Unknown regions degrade to defaults,
// never to an error.
func (n *Normalizer) Normalize(value float64, region string) Score {
	population, connectivity := n.Lookup(region)

	switch n.mode {
	case ModeLogWeight:
		weight := math.Log10(population)
		return Score{
			RawScore:         value,
			PopulationWeight: weight,
			NormalizedScore:  value * weight,
		}
	default:
		weight := population * connectivity / 100_000
		return Score{
			RawScore:         value,
			PopulationWeight: weight,
			NormalizedScore:  value / 100 * weight,
		}
	}
}
