// Package synthetic generates epidemiologically plausible series for demos
// and tests: a seasonal trend, a gaussian outbreak bump and white noise,
// clipped to the 0-100 interest scale. A fixed seed reproduces the exact
// same table, which keeps offline runs and assertions deterministic.
package synthetic

import (
	"math"
	"math/rand"
	"time"

	"github.com/sentinela-io/sentinela/internal/domain/model"
	"github.com/sentinela-io/sentinela/internal/domain/series"
)

const (
	defaultDays      = 90
	defaultIntensity = 1.0
	defaultLeadDays  = 5
	defaultDamping   = 0.8
	defaultNoise     = 3.0

	outbreakCenter = 60
	outbreakWidth  = 0.1
)

// Generator produces a deterministic outbreak scenario.
type Generator struct {
	seed      int64
	days      int
	intensity float64
	leadDays  int
	damping   float64
	noise     float64
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed fixes the random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithDays sets the scenario length in days.
func WithDays(days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.days = days
		}
	}
}

// WithIntensity scales the outbreak bump. Zero suppresses the outbreak
// entirely, leaving only seasonality and noise.
func WithIntensity(intensity float64) Option {
	return func(g *Generator) {
		if intensity >= 0 {
			g.intensity = intensity
		}
	}
}

// WithLeadDays sets how many days the search signal leads the clinical one.
func WithLeadDays(days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.leadDays = days
		}
	}
}

// WithNoise sets the white-noise standard deviation.
func WithNoise(sd float64) Option {
	return func(g *Generator) {
		if sd >= 0 {
			g.noise = sd
		}
	}
}

// New creates a generator with the canonical 90-day scenario.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:      1,
		days:      defaultDays,
		intensity: defaultIntensity,
		leadDays:  defaultLeadDays,
		damping:   defaultDamping,
		noise:     defaultNoise,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OutbreakCurve generates the target search-interest curve: a sinusoidal
// seasonal trend centered at 40, a gaussian bump around day 60 and gaussian
// noise, clipped to [0, 100].
func (g *Generator) OutbreakCurve() []float64 {
	r := rand.New(rand.NewSource(g.seed))
	return g.curve(r)
}

func (g *Generator) curve(r *rand.Rand) []float64 {
	values := make([]float64, g.days)
	for i := range values {
		x := 4 * math.Pi * float64(i) / float64(g.days-1)
		trend := math.Sin(x)*30 + 40
		d := float64(i - outbreakCenter)
		bump := 50 * math.Exp(-outbreakWidth*d*d) * g.intensity
		noise := r.NormFloat64() * g.noise
		values[i] = clip(trend+bump+noise, 0, 100)
	}
	return values
}

// Table builds a full role-bound scenario table:
//   - the target search term carries the outbreak curve
//   - the clinical term mirrors the target with a delay and damping, the
//     way real clinical demand trails early symptomatic searching
//   - the pharmacological term tracks the clinical one with extra noise
//   - the news term spikes late, after the outbreak peak
//   - the control term is stationary noise around a low level
//
// Dates run daily and end today.
func (g *Generator) Table() (*series.Table, model.Roles, error) {
	r := rand.New(rand.NewSource(g.seed))

	target := g.curve(r)

	clinical := make([]float64, g.days)
	for i := range clinical {
		src := i - g.leadDays
		if src < 0 {
			src = 0
		}
		clinical[i] = clip(target[src]*g.damping+r.NormFloat64(), 0, 100)
	}

	pharmacological := make([]float64, g.days)
	for i := range pharmacological {
		pharmacological[i] = clip(clinical[i]+r.NormFloat64()*2, 0, 100)
	}

	news := make([]float64, g.days)
	for i := range news {
		// Media attention lags the outbreak peak and decays fast.
		d := float64(i - (outbreakCenter + g.leadDays))
		news[i] = clip(10+60*math.Exp(-0.05*d*d)*g.intensity+r.NormFloat64()*2, 0, 100)
	}

	control := make([]float64, g.days)
	for i := range control {
		control[i] = clip(20+r.NormFloat64()*5, 0, 100)
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	dates := make([]time.Time, g.days)
	for i := range dates {
		dates[i] = end.AddDate(0, 0, i-g.days+1)
	}

	table := series.NewTable(dates)
	roles := model.Roles{
		Target:          "dengue",
		Clinical:        "dengue tratamento",
		Pharmacological: "remedio para dengue",
		News:            "dengue noticias",
		Control:         "previsao do tempo",
	}
	for term, values := range map[string][]float64{
		roles.Target:          target,
		roles.Clinical:        clinical,
		roles.Pharmacological: pharmacological,
		roles.News:            news,
		roles.Control:         control,
	} {
		if err := table.Add(term, values); err != nil {
			return nil, model.Roles{}, err
		}
	}
	return table, roles, nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
