package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/sentinela-io/sentinela/internal/domain/model"
	"github.com/sentinela-io/sentinela/pkg/metrics"
)

// Watchboard ordering: normalized score DESC, then region ASC, then term
// ASC. The deterministic tie-break keeps pagination stable across reads.

const defaultMaxResults = 100000

// MemoryStore is the in-memory Store implementation. One map holds full
// results by job ID with FIFO eviction; a second holds the latest result per
// (region, term) pair and backs the ranked watchboard.
type MemoryStore struct {
	mu         sync.RWMutex
	byJob      map[string]*model.EvaluationResult
	jobOrder   []string
	latest     map[boardKey]*model.EvaluationResult
	maxResults int
}

type boardKey struct {
	region string
	term   string
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byJob:      make(map[string]*model.EvaluationResult),
		latest:     make(map[boardKey]*model.EvaluationResult),
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores a finished evaluation and refreshes its watchboard row.
// Recording the same job ID twice overwrites the earlier result.
func (s *MemoryStore) Record(ctx context.Context, result *model.EvaluationResult) error {
	if result == nil {
		return ErrNilResult
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byJob[result.JobID]; !exists {
		s.jobOrder = append(s.jobOrder, result.JobID)
		if s.maxResults > 0 && len(s.jobOrder) > s.maxResults {
			evicted := s.jobOrder[0]
			s.jobOrder = s.jobOrder[1:]
			delete(s.byJob, evicted)
		}
	}
	s.byJob[result.JobID] = result
	s.latest[boardKey{region: result.Region, term: result.TargetTerm}] = result

	metrics.RecordWatchboardUpdate()
	metrics.UpdateWatchboardSize(len(s.latest))
	return nil
}

// Get returns a stored evaluation by job ID.
func (s *MemoryStore) Get(ctx context.Context, jobID string) (*model.EvaluationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.byJob[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return result, nil
}

// TopN returns the top-N watchboard rows by normalized score.
func (s *MemoryStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	entries := make([]Entry, 0, len(s.latest))
	for key, r := range s.latest {
		entries = append(entries, Entry{
			Region:          key.region,
			TargetTerm:      key.term,
			NormalizedScore: r.Impact.NormalizedScore,
			Classification:  r.Indices.Classification,
			JobID:           r.JobID,
			EvaluatedAt:     r.EvaluatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].NormalizedScore != entries[j].NormalizedScore {
			return entries[i].NormalizedScore > entries[j].NormalizedScore
		}
		if entries[i].Region != entries[j].Region {
			return entries[i].Region < entries[j].Region
		}
		return entries[i].TargetTerm < entries[j].TargetTerm
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Count returns the number of (region, term) pairs on the watchboard.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.latest)
}
