// Package dedupe provides idempotency tracking for evaluation jobs.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen job IDs so a resubmitted evaluation is processed at
// most once.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the job can be retried. Used when a job was
	// recorded but could not be enqueued (backpressure rollback).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

const defaultMaxSize = 50000

// inMemoryDeduper tracks IDs in a map with a FIFO eviction ring. When the
// ring is full the oldest recorded ID is forgotten to admit the new one.
// A maxSize of zero or less disables eviction entirely.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered IDs. Zero or negative means
// unbounded.
func WithMaxSize(n int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = n
	}
}

// NewInMemory creates an in-memory deduper.
func NewInMemory(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		if evicted := d.ring[d.next]; evicted != "" {
			delete(d.seen, evicted)
			d.size.Add(-1)
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	// Clear the ring slot so eviction does not double-delete a reused ID.
	for i, v := range d.ring {
		if v == id {
			d.ring[i] = ""
			break
		}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
