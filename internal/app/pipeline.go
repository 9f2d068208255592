package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinela-io/sentinela/internal/domain/baseline"
	"github.com/sentinela-io/sentinela/internal/domain/impact"
	"github.com/sentinela-io/sentinela/internal/domain/indices"
	"github.com/sentinela-io/sentinela/internal/domain/kinetics"
	"github.com/sentinela-io/sentinela/internal/domain/lagcorr"
	"github.com/sentinela-io/sentinela/internal/domain/model"
	"github.com/sentinela-io/sentinela/internal/domain/series"
	"github.com/sentinela-io/sentinela/internal/domain/smoothing"
	"github.com/sentinela-io/sentinela/pkg/logger"
	"github.com/sentinela-io/sentinela/pkg/metrics"
)

// Evaluate runs the full pipeline for one job: smooth, derive the endemic
// channel, measure kinetics, scan for lead time, compute the composite
// indices and normalize the impact. The sequence is deterministic; the
// returned aggregate is never mutated afterwards.
func (s *Service) Evaluate(ctx context.Context, j model.Job) (*model.EvaluationResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPipelineLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.ensurePipeline()

	if j.Table == nil || j.Table.Len() == 0 {
		return nil, fmt.Errorf("%w: job %s has no series data", series.ErrInsufficientData, j.ID)
	}
	if err := j.Roles.Validate(j.Table); err != nil {
		return nil, fmt.Errorf("job %s: %w", j.ID, err)
	}

	timeframe := j.Timeframe
	if timeframe == "" {
		timeframe = s.timeframe
	}
	window := smoothing.WindowForTimeframe(timeframe)

	smoothed, err := smoothing.SmoothTable(j.Table, window)
	if err != nil {
		return nil, fmt.Errorf("smoothing job %s: %w", j.ID, err)
	}
	target, _ := smoothed.Series(j.Roles.Target)
	raw, _ := j.Table.Series(j.Roles.Target)

	estimator, err := baseline.New(window, baseline.WithMultiplier(s.thresholdMultiplier))
	if err != nil {
		return nil, fmt.Errorf("endemic channel for job %s: %w", j.ID, err)
	}
	channel, err := estimator.Compute(target)
	if err != nil {
		return nil, fmt.Errorf("endemic channel for job %s: %w", j.ID, err)
	}
	exceeded := channel.Exceeded(target.Last())

	// A single-point series has no derivative; kinetics stay nil rather
	// than failing the whole evaluation.
	var velocity, acceleration *series.Series
	if kin, err := kinetics.Compute(target); err == nil {
		velocity = kin.Velocity
		acceleration = kin.Acceleration
	} else if s.logger != nil {
		s.logger.Warn(ctx, "kinetics unavailable",
			logger.String("jobID", j.ID),
			logger.Error(err),
		)
	}

	lag := s.scanLeadTime(ctx, j, smoothed, target)
	comp := s.computeIndices(j, smoothed, target, exceeded, lag)
	score := s.normalizer.Normalize(target.Last(), j.Region)

	result := &model.EvaluationResult{
		JobID:             j.ID,
		Region:            j.Region,
		Timeframe:         timeframe,
		TargetTerm:        j.Roles.Target,
		EvaluatedAt:       time.Now().UTC(),
		LatestRaw:         raw.Last(),
		LatestSmoothed:    target.Last(),
		LatestBaseline:    channel.Baseline.Last(),
		LatestThreshold:   channel.Threshold.Last(),
		ThresholdExceeded: exceeded,
		Lag:               lag,
		Impact:            score,
		Indices:           comp,
		Smoothed:          smoothed,
		Baseline:          channel.Baseline,
		Threshold:         channel.Threshold,
		Velocity:          velocity,
		Acceleration:      acceleration,
	}

	if s.logger != nil {
		s.logger.Debug(ctx, "evaluation finished",
			logger.String("jobID", j.ID),
			logger.String("region", j.Region),
			logger.String("classification", string(comp.Classification)),
			logger.Float64("normalizedScore", score.NormalizedScore),
		)
	}
	return result, nil
}

// scanLeadTime runs the lag scan of the clinical series against the target.
// Without a bound clinical role there is nothing to lead, so the sentinel
// "no relationship" result comes back.
func (s *Service) scanLeadTime(ctx context.Context, j model.Job, smoothed *series.Table, target *series.Series) lagcorr.Result {
	if j.Roles.Clinical == "" {
		return lagcorr.Result{Lag: 0, Correlation: -1}
	}
	clinical, _ := smoothed.Series(j.Roles.Clinical)
	result, err := s.correlator.Scan(clinical, target)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn(ctx, "lead-time scan failed",
				logger.String("jobID", j.ID),
				logger.Error(err),
			)
		}
		return lagcorr.Result{Lag: 0, Correlation: -1}
	}
	return result
}

// computeIndices derives the composite indices and the classification.
// Sincerity needs the clinical role; without it the index reads zero, which
// demotes any breach to a mixed signal.
func (s *Service) computeIndices(j model.Job, smoothed *series.Table, target *series.Series, exceeded bool, lag lagcorr.Result) indices.Composite {
	volatility := s.engine.Volatility(target)

	sincerity := 0.0
	if j.Roles.Clinical != "" {
		clinical, _ := smoothed.Series(j.Roles.Clinical)
		news := target
		if j.Roles.News != "" {
			news, _ = smoothed.Series(j.Roles.News)
		}
		control := news
		if j.Roles.Control != "" {
			control, _ = smoothed.Series(j.Roles.Control)
		}
		sincerity = s.engine.Sincerity(clinical.Last(), news.Last(), control.Last())
	}

	sentinels := []*series.Series{target}
	for _, term := range []string{j.Roles.Clinical, j.Roles.Pharmacological} {
		if term == "" {
			continue
		}
		if sentinel, ok := smoothed.Series(term); ok {
			sentinels = append(sentinels, sentinel)
		}
	}
	convergence := s.engine.Convergence(sentinels)

	classification := s.engine.Classify(indices.Inputs{
		ThresholdExceeded: exceeded,
		Sincerity:         sincerity,
		Convergence:       convergence,
		Lag:               lag,
	})

	return indices.Composite{
		Volatility:     volatility,
		Sincerity:      sincerity,
		Convergence:    convergence,
		Classification: classification,
	}
}

// ensurePipeline builds the stateless pipeline components exactly once.
// Start calls it before launching workers; synchronous one-shot callers hit
// it through Evaluate directly.
func (s *Service) ensurePipeline() {
	s.pipelineOnce.Do(func() {
		s.correlator = lagcorr.New(
			lagcorr.WithMaxLag(s.maxLag),
			lagcorr.WithMode(s.lagMode),
			lagcorr.WithSignificance(s.requireSignificance),
		)
		s.normalizer = impact.New(
			impact.WithMode(s.impactMode),
			impact.WithPopulations(s.populations),
			impact.WithConnectivity(s.connectivity),
			impact.WithDefaults(s.defaultPopulation, s.defaultConnectivity),
		)
		s.engine = indices.New(
			indices.WithEpsilon(s.epsilon),
			indices.WithSincerityStrategy(s.sincerityStrategy),
			indices.WithSincerityCut(s.sincerityCut),
			indices.WithConvergenceCut(s.convergenceCut),
			indices.WithSignificanceGate(s.requireSignificance, s.alpha),
		)
	})
}
