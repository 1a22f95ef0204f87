package cache

import (
	"context"
	"time"
)

// TieredStore layers a fast local Store in front of a shared backend Store.
// Reads check the local tier first and promote backend hits into it; writes
// and deletes apply to both tiers so the local tier never resurrects deleted
// artifacts.
type TieredStore struct {
	local   Store
	backend Store
}

// NewTieredStore creates a layered Store. local is typically a MemoryStore
// and backend a RedisStore.
func NewTieredStore(local, backend Store) *TieredStore {
	if local == nil || backend == nil {
		panic("tiered store requires both tiers")
	}
	return &TieredStore{local: local, backend: backend}
}

// Get retrieves the payload stored under key, checking the local tier first.
func (s *TieredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, found, err := s.local.Get(ctx, key); err == nil && found {
		return data, true, nil
	}

	data, found, err := s.backend.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote into the local tier. Promotion failures don't affect the read.
	_ = s.local.Set(ctx, key, data, 0)

	return data, true, nil
}

// Set stores the payload in both tiers. The backend is written first so a
// failure there leaves the local tier without a value the backend never saw.
func (s *TieredStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return s.local.Set(ctx, key, data, ttl)
}

// Delete removes the entry from both tiers.
func (s *TieredStore) Delete(ctx context.Context, key string) error {
	if err := s.local.Delete(ctx, key); err != nil {
		return err
	}
	return s.backend.Delete(ctx, key)
}
