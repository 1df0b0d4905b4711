// Package cache provides pluggable response caching for catalog clients.
//
// The [Cache] interface stores opaque byte values under string keys with
// a per-entry TTL. Backends:
//
//   - [MemoryCache]: in-process map with lazy expiry (the default for a
//     session-lived query client)
//   - [FileCache]: directory of JSON entry files, for CLI reuse across runs
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [NullCache]: disables caching
//
// Expired entries are detected lazily on read; no backend runs a
// background eviction sweep.
package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Cache is the interface implemented by all cache backends.
//
// Get returns (data, true, nil) on a hit, (nil, false, nil) on a miss or
// expired entry, and a non-nil error only for backend failures. Set
// stores data under key for ttl; a ttl of 0 means the entry never
// expires. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
