// Package cache provides response caching for license service lookups.
//
// Three backends implement the [Cache] interface:
//   - [FileCache]: file-based storage for CLI usage (default)
//   - [RedisCache]: Redis-backed storage for multi-instance deployments
//   - [NullCache]: no-op cache for tests and --no-cache runs
//
// Keys are opaque strings; values are raw bytes with an optional TTL.
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long lookup responses stay fresh. License definitions
// change rarely, so a generous TTL keeps repeat enrichments off the network.
const DefaultTTL = 24 * time.Hour

// Cache stores raw bytes under string keys with per-entry expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
