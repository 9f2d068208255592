// Package indices computes the composite indices that separate organic
// biological signals from media-driven noise, and folds them into a
// three-way classification.
package indices

import (
	"fmt"

	"github.com/sentinela-io/sentinela/internal/domain/lagcorr"
	"github.com/sentinela-io/sentinela/internal/domain/series"
)

// Classification is the three-way verdict of an evaluation.
type Classification string

const (
	// Normal: the signal stayed inside the endemic channel.
	Normal Classification = "NORMAL"
	// MixedSignal: the channel was breached but the supporting indices
	// point at media amplification rather than clinical demand.
	MixedSignal Classification = "MIXED_SIGNAL"
	// ConfirmedAnomaly: channel breached and the breach is sustained by
	// sincere clinical searching with coherent sentinel behavior.
	ConfirmedAnomaly Classification = "CONFIRMED_ANOMALY"
)

// SincerityStrategy selects the sincerity ("vero") formula. The source
// systems carried both without ever resolving which is authoritative, so
// both stay available as explicit variants.
type SincerityStrategy string

const (
	// StrategyBlend contrasts clinical intent against an even blend of
	// news and neutral-control intent.
	StrategyBlend SincerityStrategy = "blend"
	// StrategyDirect is the plain clinical/news ratio.
	StrategyDirect SincerityStrategy = "direct"
)

// ParseStrategy validates a sincerity strategy label.
func ParseStrategy(s string) (SincerityStrategy, error) {
	switch SincerityStrategy(s) {
	case StrategyBlend, StrategyDirect:
		return SincerityStrategy(s), nil
	case "":
		return StrategyBlend, nil
	default:
		return "", fmt.Errorf("%w: unknown sincerity strategy %q", series.ErrInvalidInput, s)
	}
}

// Default cut-points. All of them are configuration, not constants baked
// into call sites.
const (
	DefaultEpsilon        = 0.01
	DefaultSincerityCut   = 1.0
	DefaultConvergenceCut = 0.5
	DefaultAlpha          = 0.05
)

// Composite bundles the index readings for one evaluation.
type Composite struct {
	Volatility     float64        `json:"volatility_index"`
	Sincerity      float64        `json:"sincerity_index"`
	Convergence    float64        `json:"convergence_index"`
	Classification Classification `json:"classification"`
}

// Engine computes indices under configured cut-points.
type Engine struct {
	epsilon             float64
	strategy            SincerityStrategy
	sincerityCut        float64
	convergenceCut      float64
	alpha               float64
	requireSignificance bool
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithEpsilon sets the division guard added to denominators.
func WithEpsilon(epsilon float64) Option {
	return func(e *Engine) {
		if epsilon > 0 {
			e.epsilon = epsilon
		}
	}
}

// WithSincerityStrategy selects the sincerity formula.
func WithSincerityStrategy(strategy SincerityStrategy) Option {
	return func(e *Engine) {
		if strategy == StrategyBlend || strategy == StrategyDirect {
			e.strategy = strategy
		}
	}
}

// WithSincerityCut sets the sincerity level above which a breach counts as
// clinically sincere.
func WithSincerityCut(cut float64) Option {
	return func(e *Engine) {
		if cut > 0 {
			e.sincerityCut = cut
		}
	}
}

// WithConvergenceCut sets the convergence level above which sentinel terms
// count as one coherent syndrome.
func WithConvergenceCut(cut float64) Option {
	return func(e *Engine) {
		e.convergenceCut = cut
	}
}

// WithSignificanceGate requires a significant lead time (p < alpha) for a
// confirmed anomaly, when the lag result carries a p-value.
func WithSignificanceGate(required bool, alpha float64) Option {
	return func(e *Engine) {
		e.requireSignificance = required
		if alpha > 0 && alpha < 1 {
			e.alpha = alpha
		}
	}
}

// New creates an engine with default cut-points.
func New(opts ...Option) *Engine {
	e := &Engine{
		epsilon:        DefaultEpsilon,
		strategy:       StrategyBlend,
		sincerityCut:   DefaultSincerityCut,
		convergenceCut: DefaultConvergenceCut,
		alpha:          DefaultAlpha,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Volatility is the attention-saturation index: the coefficient of
// variation std/(mean+eps). Organic outbreaks grow with low relative
// volatility; news spikes are explosive. A flat or empty series reads 0.
func (e *Engine) Volatility(s *series.Series) float64 {
	if s.Len() == 0 {
		return 0
	}
	mean := series.Mean(s.Values)
	if mean == 0 {
		return 0
	}
	return series.Std(s.Values) / (mean + e.epsilon)
}

// Sincerity is the "vero" index: clinical-intent volume against
// news/control volume, under the configured strategy. Values above the
// sincerity cut indicate genuinely symptomatic searching.
func (e *Engine) Sincerity(clinical, news, control float64) float64 {
	switch e.strategy {
	case StrategyDirect:
		return clinical / (news + e.epsilon)
	default:
		return clinical / (0.5*news + 0.5*control + e.epsilon)
	}
}

// Convergence is the mean pairwise Pearson correlation across sentinel
// series. Pairs with undefined correlation are skipped, except that two
// identical flat series count as perfectly convergent: sentinels resting
// at the same level are coherent, not noise. No valid pair reads 0.
func (e *Engine) Convergence(sentinels []*series.Series) float64 {
	sum := 0.0
	pairs := 0
	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			r, err := series.Pearson(sentinels[i].Values, sentinels[j].Values)
			if err != nil {
				if flatAndEqual(sentinels[i].Values, sentinels[j].Values) {
					sum++
					pairs++
				}
				continue
			}
			sum += r
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

// flatAndEqual reports whether both slices are constant at the same value.
func flatAndEqual(a, b []float64) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != a[0] || b[i] != a[0] {
			return false
		}
	}
	return true
}

// Inputs carries the evidence for a classification decision.
type Inputs struct {
	ThresholdExceeded bool
	Sincerity         float64
	Convergence       float64
	Lag               lagcorr.Result
}

// Classify folds the evidence into the three-way verdict. The endemic
// channel gates everything: without a breach the verdict is Normal no
// matter how the indices read.
func (e *Engine) Classify(in Inputs) Classification {
	if !in.ThresholdExceeded {
		return Normal
	}
	if in.Sincerity < e.sincerityCut || in.Convergence < e.convergenceCut {
		return MixedSignal
	}
	if e.requireSignificance {
		if !in.Lag.HasPValue || in.Lag.PValue >= e.alpha {
			return MixedSignal
		}
	}
	return ConfirmedAnomaly
}
