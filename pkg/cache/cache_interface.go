package cache

import (
	"context"
	"time"
)

// Cache defines the contract for the response cache layer.
// Allows swapping implementations (Redis, in-memory) in tests.
type Cache interface {
	// Get reads a key and unmarshals the stored value into dest.
	// found = false means cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set marshals value and stores it under key with the given TTL.
	// ttl <= 0 falls back to the implementation default.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes one or more keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern,
	// e.g. "books:list:*" after a write that can change list results.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies the backend connection.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
