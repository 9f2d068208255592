package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SENTINELA_CONFIG is set
//  3. env (prefix SENTINELA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SENTINELA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SENTINELA_ADDR, SENTINELA_QUEUE_SIZE, ...
	// Keys map to the flat koanf tags, underscores preserved.
	envProvider := env.Provider("SENTINELA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sentinela_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.MaxLag < 1 {
		return fmt.Errorf("%w: max_lag must be at least 1", ErrInvalidConfig)
	}
	if cfg.ThresholdMultiplier <= 0 {
		return fmt.Errorf("%w: threshold_multiplier must be positive", ErrInvalidConfig)
	}
	if cfg.SignificanceAlpha <= 0 || cfg.SignificanceAlpha >= 1 {
		return fmt.Errorf("%w: significance_alpha must be in (0, 1)", ErrInvalidConfig)
	}
	switch cfg.Timeframe {
	case "1m", "3m", "12m":
	default:
		return fmt.Errorf("%w: unknown timeframe %q", ErrInvalidConfig, cfg.Timeframe)
	}
	switch cfg.LagMode {
	case "raw", "differenced":
	default:
		return fmt.Errorf("%w: unknown lag_mode %q", ErrInvalidConfig, cfg.LagMode)
	}
	switch cfg.SincerityStrategy {
	case "blend", "direct":
	default:
		return fmt.Errorf("%w: unknown sincerity_strategy %q", ErrInvalidConfig, cfg.SincerityStrategy)
	}
	switch cfg.ImpactMode {
	case "connected", "logweight":
	default:
		return fmt.Errorf("%w: unknown impact_mode %q", ErrInvalidConfig, cfg.ImpactMode)
	}
	return nil
}
