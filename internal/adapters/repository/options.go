package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxResults bounds the number of retained evaluation results. When the
// bound is hit the oldest result is evicted; watchboard rows referencing an
// evicted result keep their summary fields. Zero or negative disables the
// bound.
func WithMaxResults(n int) Option {
	return func(s *MemoryStore) {
		s.maxResults = n
	}
}
