package cache

import (
	"context"
	"time"

	"github.com/bjaus/stash"
)

// MemoryConfig holds in-memory store configuration.
type MemoryConfig struct {
	// Capacity is the maximum number of entries (default: 1024).
	Capacity int

	// TTL is the maximum entry lifetime. Entries written with a longer
	// (or non-positive) TTL are clamped to this value, which bounds how
	// stale the memory tier can get relative to Redis (default: 60s).
	TTL time.Duration

	// Clock overrides the time source, for TTL tests.
	Clock stash.Clock
}

// MemoryStore is a Store backed by an in-process LRU cache. It is intended
// as a short-lived tier in front of Redis, not as a durable cache: contents
// are lost on restart and are not shared between instances.
type MemoryStore struct {
	cache  *stash.Cache[string, []byte]
	maxTTL time.Duration
}

// NewMemoryStore creates an in-memory Store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1024
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 60 * time.Second
	}

	opts := []stash.Option[string, []byte]{
		stash.WithCapacity[string, []byte](cfg.Capacity),
		stash.WithTTL[string, []byte](cfg.TTL),
	}
	if cfg.Clock != nil {
		opts = append(opts, stash.WithClock[string, []byte](cfg.Clock))
	}

	return &MemoryStore{
		cache:  stash.New[string, []byte](opts...),
		maxTTL: cfg.TTL,
	}
}

// Get retrieves the payload stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, false, err
	}
	if !found {
		CacheMisses.WithLabelValues(LayerMemory).Inc()
		return nil, false, nil
	}

	CacheHits.WithLabelValues(LayerMemory).Inc()
	return data, true, nil
}

// Set stores the payload under key. The effective TTL is clamped to the
// configured maximum so memory entries never outlive their Redis source by
// more than the memory TTL.
func (s *MemoryStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	return s.cache.SetWithTTL(ctx, key, data, ttl)
}

// Delete removes the entry under key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
