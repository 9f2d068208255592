// Package service provides the core surveillance service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"

	jobqueue "github.com/sentinela-io/sentinela/internal/adapters/mq/queue"
	workerpool "github.com/sentinela-io/sentinela/internal/adapters/mq/worker"
	"github.com/sentinela-io/sentinela/internal/adapters/repository"
	"github.com/sentinela-io/sentinela/internal/domain/dedupe"
	"github.com/sentinela-io/sentinela/internal/domain/impact"
	"github.com/sentinela-io/sentinela/internal/domain/indices"
	"github.com/sentinela-io/sentinela/internal/domain/lagcorr"
	"github.com/sentinela-io/sentinela/internal/domain/model"
	"github.com/sentinela-io/sentinela/pkg/logger"
	"github.com/sentinela-io/sentinela/pkg/metrics"
)

// Service wires the evaluation pipeline to the queue, worker pool, dedupe
// cache and watchboard store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	workerPool *workerpool.Pool
	correlator *lagcorr.Correlator
	normalizer *impact.Normalizer
	engine     *indices.Engine

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	maxStoredResults    int
	timeframe           string
	thresholdMultiplier float64
	maxLag              int
	lagMode             lagcorr.Mode
	requireSignificance bool
	alpha               float64
	epsilon             float64
	sincerityStrategy   indices.SincerityStrategy
	sincerityCut        float64
	convergenceCut      float64
	impactMode          impact.Mode
	populations         map[string]float64
	connectivity        map[string]float64
	defaultPopulation   float64
	defaultConnectivity float64

	// State
	started      bool
	pipelineOnce sync.Once

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the job idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxStoredResults bounds retained full evaluation results.
func WithMaxStoredResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxStoredResults = n
		}
	}
}

// WithTimeframe sets the default query window used when a job carries none.
func WithTimeframe(timeframe string) Option {
	return func(s *Service) {
		if timeframe != "" {
			s.timeframe = timeframe
		}
	}
}

// WithThresholdMultiplier scales the robust deviation band of the endemic
// channel.
func WithThresholdMultiplier(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.thresholdMultiplier = k
		}
	}
}

// WithLagScan configures the lead-time scan: maximum lag in days and the
// correlation input mode.
func WithLagScan(maxLag int, mode lagcorr.Mode) Option {
	return func(s *Service) {
		if maxLag > 0 {
			s.maxLag = maxLag
		}
		if mode != "" {
			s.lagMode = mode
		}
	}
}

// WithSignificance gates confirmed anomalies on the lead-time p-value.
func WithSignificance(required bool, alpha float64) Option {
	return func(s *Service) {
		s.requireSignificance = required
		if alpha > 0 && alpha < 1 {
			s.alpha = alpha
		}
	}
}

// WithIndexTuning sets the index denominators and cut-points.
func WithIndexTuning(epsilon, sincerityCut, convergenceCut float64) Option {
	return func(s *Service) {
		if epsilon > 0 {
			s.epsilon = epsilon
		}
		if sincerityCut > 0 {
			s.sincerityCut = sincerityCut
		}
		s.convergenceCut = convergenceCut
	}
}

// WithSincerityStrategy selects the sincerity formula.
func WithSincerityStrategy(strategy indices.SincerityStrategy) Option {
	return func(s *Service) {
		if strategy != "" {
			s.sincerityStrategy = strategy
		}
	}
}

// WithImpactMode selects the population weighting formula.
func WithImpactMode(mode impact.Mode) Option {
	return func(s *Service) {
		if mode != "" {
			s.impactMode = mode
		}
	}
}

// WithReferenceTables sets the demographic reference data.
func WithReferenceTables(populations, connectivity map[string]float64) Option {
	return func(s *Service) {
		s.populations = populations
		s.connectivity = connectivity
	}
}

// WithRegionDefaults overrides the fallbacks for unknown regions.
func WithRegionDefaults(population, connectivity float64) Option {
	return func(s *Service) {
		if population > 0 {
			s.defaultPopulation = population
		}
		if connectivity > 0 && connectivity <= 1 {
			s.defaultConnectivity = connectivity
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           10_000,
		dedupeSize:          50_000,
		maxStoredResults:    100_000,
		timeframe:           "3m",
		thresholdMultiplier: 3.0,
		maxLag:              lagcorr.DefaultMaxLag,
		lagMode:             lagcorr.ModeDifferenced,
		alpha:               indices.DefaultAlpha,
		epsilon:             indices.DefaultEpsilon,
		sincerityStrategy:   indices.StrategyBlend,
		sincerityCut:        indices.DefaultSincerityCut,
		convergenceCut:      indices.DefaultConvergenceCut,
		impactMode:          impact.ModeConnected,
		defaultPopulation:   impact.DefaultPopulation,
		defaultConnectivity: impact.DefaultConnectivity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting surveillance service...")

	s.store = repository.NewMemoryStore(
		repository.WithMaxResults(s.maxStoredResults),
	)
	s.deduper = dedupe.NewInMemory(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.ensurePipeline()

	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "surveillance service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service. Queued jobs drain through the
// workers before they exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping surveillance service...")

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Wait()
	}

	s.started = false
	s.logger.Info(ctx, "surveillance service stopped")
}

// SeenAndRecord atomically checks if a job id was seen and records it if
// not. Returns true if the job was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEvaluationDuplicate()
	}
	return seen
}

// Unrecord removes a job ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a job for asynchronous evaluation. Returns false under
// backpressure; the caller rolls back the dedupe record and sheds the job.
func (s *Service) Enqueue(ctx context.Context, j model.Job) bool {
	return s.jobQueue.Enqueue(ctx, j)
}

// Result returns a stored evaluation by job ID.
func (s *Service) Result(ctx context.Context, jobID string) (*model.EvaluationResult, error) {
	return s.store.Get(ctx, jobID)
}

// TopN returns the top N watchboard rows.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, n)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["watchboardSize"] = s.store.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
