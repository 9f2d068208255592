// Package worker runs the asynchronous evaluation loop: jobs come off the
// queue, go through the pipeline, and land in the watchboard store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/sentinela-io/sentinela/internal/domain/model"
	"github.com/sentinela-io/sentinela/pkg/logger"
	"github.com/sentinela-io/sentinela/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Evaluator runs the full pipeline for one job.
type Evaluator interface {
	Evaluate(ctx context.Context, j Job) (*model.EvaluationResult, error)
}

// Recorder persists a finished evaluation.
type Recorder interface {
	Record(ctx context.Context, result *model.EvaluationResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over an in-process queue.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	recorder  Recorder
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, evaluator Evaluator, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		evaluator: evaluator,
		recorder:  recorder,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns when the context is cancelled, the
// queue channel closes, or Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for the in-flight job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processJob(ctx context.Context, j Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	result, err := w.evaluator.Evaluate(ctx, j)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordEvaluationFailed()
		w.logger.Error(ctx, "evaluation failed",
			logger.String("jobID", j.ID),
			logger.String("region", j.Region),
			logger.Error(err),
		)
		return fmt.Errorf("evaluating job %s: %w", j.ID, err)
	}

	if err := w.recorder.Record(ctx, result); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "recording result failed",
			logger.String("jobID", j.ID),
			logger.Error(err),
		)
		return fmt.Errorf("recording result for job %s: %w", j.ID, err)
	}

	metrics.RecordEvaluationCompleted()
	metrics.RecordClassification(string(result.Indices.Classification))
	return nil
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker

	shutdown chan struct{}
	logger   logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one defaults
// to a small multiple of the CPU count.
func NewPool(workerCount int, queue Queue, evaluator Evaluator, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(
			queue,
			evaluator,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown stops all workers, waiting up to the pool timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.shutdown)
	p.signalWorkers()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}

// Wait blocks until every worker has exited or the pool timeout elapses.
// Callers close the queue first so workers drain buffered jobs and exit on
// the closed channel, making the drain deterministic.
func (p *Pool) Wait() {
	deadline := time.After(poolShutdownTimeout)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-deadline:
			return
		}
	}
	metrics.UpdateWorkerCount(0)
}

func (p *Pool) signalWorkers() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
}
