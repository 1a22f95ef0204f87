package cache

import (
	"context"
	"time"
)

// Store is a key-value cache for serialized artifacts.
//
// Implementations must treat a missing key as (nil, false, nil), not as an
// error: errors are reserved for backend failures (connection loss, protocol
// errors) so callers can distinguish "not cached" from "cache unavailable".
type Store interface {
	// Get retrieves the payload stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the payload under key with the given TTL.
	// A non-positive TTL stores the entry without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry under key, if present.
	Delete(ctx context.Context, key string) error
}
