// Package cache provides a small string key-value cache with in-memory and
// Redis implementations.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is the contract the rest of the application depends on.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrMiss when key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value with ttl; ttl <= 0 means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// ErrMiss signals a cache miss, as distinct from a backend failure.
var ErrMiss = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache: miss" }

// Memory is a process-local Cache bounded to maxEntries. When full, the
// least recently used entry is evicted.
type Memory struct {
	items *ttlcache.Cache[string, string]
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Memory{
		items: ttlcache.New[string, string](
			ttlcache.WithCapacity[string, string](uint64(maxEntries)),
			ttlcache.WithTTL[string, string](ttlcache.NoTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

var _ Cache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return "", ErrMiss
	}
	return item.Value(), nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.items.Set(key, value, ttl)
	return nil
}

func (m *Memory) Close() error {
	m.items.DeleteAll()
	return nil
}
