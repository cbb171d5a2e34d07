// Package cache stores serialized marginalization results.
//
// # Overview
//
// Marginalizing a large graph is CPU-bound and deterministic, so results are
// cached by content: the key combines a hash of the input graph bytes with the
// sorted strain set. Three backends implement [Cache]:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] stores entries as files, for CLI use
//   - [RedisCache] stores entries in Redis, for the HTTP server
//
// Keys are produced by a [Keyer]; [ScopedKeyer] adds a namespace prefix so
// several deployments can share one Redis instance.
//
// # Retries
//
// Backends wrap transient failures with [Retryable]; callers that want to
// ride out a flaky network use [RetryWithBackoff]. Cache misses are never
// errors.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
