// Package cache provides layered key-value caching for derived Pokédex
// artifacts with a Redis backend and an optional in-memory tier.
//
// Stores hold opaque byte payloads (serialized records); interpretation and
// validation of the payload is the caller's concern. All stores share the
// same contract:
//
//   - Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss.
//     Backend failures surface as errors so callers can degrade gracefully.
//   - Set stores a payload with a TTL. A non-positive TTL stores the entry
//     without expiration.
//   - Delete removes an entry. Deleting a missing key is not an error.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	store := cache.NewRedisStore(redisClient)
//
//	data, found, err := store.Get(ctx, "pokedex_summary_data")
//	if err != nil {
//		// Backend unavailable - recompute and serve without caching
//	}
//	if !found {
//		// Cache miss - aggregate from upstream, then Set
//	}
//
// # Layers
//
// TieredStore stacks a small in-memory tier (backed by stash) in front of
// Redis. Reads check memory first and promote Redis hits into memory; writes
// and deletes go to both tiers. The memory tier clamps entry lifetimes to its
// configured TTL, so long-lived Redis artifacts are re-checked against Redis
// at a short interval:
//
//	store := cache.NewTieredStore(
//		cache.NewMemoryStore(cache.MemoryConfig{Capacity: 2048, TTL: time.Minute}),
//		cache.NewRedisStore(redisClient),
//	)
//
// # Metrics
//
// The stores export Prometheus metrics:
//
//   - pokedex_cache_hits_total{layer} - Cache hits per layer
//   - pokedex_cache_misses_total{layer} - Cache misses per layer
//   - pokedex_cache_errors_total{operation} - Backend operation errors
package cache
