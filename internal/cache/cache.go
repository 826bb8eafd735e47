// Package cache provides the response cache used for read-through lookups of
// generated artifacts. Values are opaque bytes with a per-entry TTL; the JSON
// helpers cover the common case of caching API payloads.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultTTL applies when Set is called with a non-positive ttl.
const DefaultTTL = time.Hour

// sweepEvery is how many Sets pass between opportunistic sweeps.
const sweepEvery = 1000

// Cache is a TTL key/value store. A miss is reported as ok=false with a nil
// error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New returns a Redis-backed cache when redisURL is set, otherwise an
// in-process MemoryCache.
func New(ctx context.Context, redisURL string, ttl time.Duration) (Cache, error) {
	if redisURL == "" {
		return NewMemory(ttl), nil
	}
	return NewRedis(ctx, redisURL, ttl)
}

type entry struct {
	val       []byte
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded map. Expired entries are dropped when read,
// by Sweep, and every sweepEvery writes.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	sets    int
}

// NewMemory builds an empty MemoryCache whose default TTL is ttl
// (DefaultTTL when ttl <= 0).
func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	cp := make([]byte, len(val))
	copy(cp, val)

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sets++
	if m.sets >= sweepEvery {
		m.sweepLocked(now)
		m.sets = 0
	}
	m.entries[key] = entry{val: cp, expiresAt: now.Add(ttl)}
	return nil
}

// Sweep removes every entry expired at now and reports how many went.
func (m *MemoryCache) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

func (m *MemoryCache) sweepLocked(now time.Time) int {
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Delete implements Cache.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close implements Cache.
func (m *MemoryCache) Close() error { return nil }

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var out T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
