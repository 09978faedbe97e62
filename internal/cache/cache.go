// Package cache provides a typed in-memory cache used to avoid re-parsing log
// content that was already analyzed.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/newhook/swecheck/internal/logging"
)

const (
	// DefaultExpiration is the lifetime of an entry set without an explicit TTL.
	DefaultExpiration = 30 * time.Minute
	// DefaultCleanupInterval is how often expired entries are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// CacheManager is a typed key/value cache.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Flush(ctx context.Context) error
}

// InMemoryCacheManager is a CacheManager backed by go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	name  string
	cache *gocache.Cache
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// NewInMemoryCacheManager creates a cache. name only appears in log output.
func NewInMemoryCacheManager[K ~string, V any](name string, expiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		name:  name,
		cache: gocache.New(expiration, cleanupInterval),
	}
}

// Get returns the value for key. Entries holding a value of another type count as
// misses.
func (m *InMemoryCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	raw, ok := m.cache.Get(string(key))
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		logging.Warn("cache entry has unexpected type", "cache", m.name, "key", string(key))
		return zero, false
	}
	return v, true
}

// Set stores value under key for ttl.
func (m *InMemoryCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.cache.Set(string(key), value, ttl)
}

// Flush removes every entry.
func (m *InMemoryCacheManager[K, V]) Flush(ctx context.Context) error {
	m.cache.Flush()
	return nil
}

// Len returns the number of entries, including expired ones not yet purged.
func (m *InMemoryCacheManager[K, V]) Len() int {
	return m.cache.ItemCount()
}
