// Package cache stores pipeline results keyed by a hash of their inputs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the server and [NullCache] when caching is disabled. Keys come from a
// [Keyer] so that callers never hand-assemble them.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes. Built graphs and layouts are pure functions of
// their inputs, so they only expire to bound storage.
const (
	TTLGraph  = 7 * 24 * time.Hour
	TTLLayout = 7 * 24 * time.Hour
	TTLRender = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Clear empties c if it supports clearing and reports how many entries were
// removed.
func Clear(ctx context.Context, c Cache) (int, error) {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}
