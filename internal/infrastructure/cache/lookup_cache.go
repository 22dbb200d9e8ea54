// Package cache provides TTL caches for upstream lookups, backed by Redis or process memory.
package cache

import (
	"context"
	"time"
)

// LookupCache stores opaque lookup payloads under string keys
type LookupCache interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Close releases resources held by the cache
	Close() error
}
