// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error kinds.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory evaluation queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the job idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxWatchboardLimit caps GET /watchboard?limit.
	MaxWatchboardLimit int `koanf:"max_watchboard_limit"`

	// MaxStoredResults bounds retained full evaluation results.
	MaxStoredResults int `koanf:"max_stored_results"`

	// Timeframe is the default query window: 1m, 3m or 12m.
	Timeframe string `koanf:"timeframe"`

	// MaxLag bounds the lead-time scan in days.
	MaxLag int `koanf:"max_lag"`

	// LagMode selects the correlation input: raw or differenced.
	LagMode string `koanf:"lag_mode"`

	// RequireSignificance gates confirmed anomalies on lead-time p-value.
	RequireSignificance bool    `koanf:"require_significance"`
	SignificanceAlpha   float64 `koanf:"significance_alpha"`

	// ThresholdMultiplier scales the robust deviation band.
	ThresholdMultiplier float64 `koanf:"threshold_multiplier"`

	// Epsilon guards index denominators.
	Epsilon float64 `koanf:"epsilon"`

	// SincerityStrategy selects the sincerity formula: blend or direct.
	SincerityStrategy string  `koanf:"sincerity_strategy"`
	SincerityCut      float64 `koanf:"sincerity_cut"`
	ConvergenceCut    float64 `koanf:"convergence_cut"`

	// ImpactMode selects the population weighting: connected or logweight.
	ImpactMode string `koanf:"impact_mode"`

	// DefaultPopulation and DefaultConnectivity cover unknown regions.
	DefaultPopulation   float64 `koanf:"default_population"`
	DefaultConnectivity float64 `koanf:"default_connectivity"`

	// Populations maps region codes to resident counts.
	Populations map[string]float64 `koanf:"populations"`

	// Connectivity maps region codes to internet-penetration fractions.
	Connectivity map[string]float64 `koanf:"connectivity"`
}

// New creates a Config with defaults. The population table ships with the
// 2022 IBGE census counts for the Brazilian federative units; deployments
// covering other jurisdictions override it via file or environment.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		JobQueueSize:        10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxWatchboardLimit:  100,
		MaxStoredResults:    100_000,
		Timeframe:           "3m",
		MaxLag:              14,
		LagMode:             "differenced",
		RequireSignificance: false,
		SignificanceAlpha:   0.05,
		ThresholdMultiplier: 3.0,
		Epsilon:             0.01,
		SincerityStrategy:   "blend",
		SincerityCut:        1.0,
		ConvergenceCut:      0.5,
		ImpactMode:          "connected",
		DefaultPopulation:   1_000_000,
		DefaultConnectivity: 0.70,
		Populations: map[string]float64{
			"BR-SP": 44_411_238, "BR-MG": 21_411_923, "BR-RJ": 17_463_349, "BR-BA": 14_985_284,
			"BR-PR": 11_597_484, "BR-RS": 11_466_630, "BR-PE": 9_674_793, "BR-CE": 9_240_580,
			"BR-PA": 8_777_124, "BR-SC": 7_338_473, "BR-GO": 7_206_589, "BR-MA": 7_153_262,
			"BR-AM": 4_269_995, "BR-ES": 4_108_508, "BR-PB": 4_059_905, "BR-MT": 3_567_234,
			"BR-RN": 3_560_903, "BR-AL": 3_365_351, "BR-PI": 3_289_290, "BR-DF": 3_094_325,
			"BR-MS": 2_839_188, "BR-SE": 2_338_474, "BR-RO": 1_815_278, "BR-TO": 1_607_363,
			"BR-AC": 906_876, "BR-AP": 877_613, "BR-RR": 652_713,
		},
		Connectivity: map[string]float64{},
	}
}
