package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// InMemoryCache is a process-local Cache for tests that exercise caching
// without a redis server.
type InMemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(entry.value, dest)
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{value: raw}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// InMemoryLocker is a process-local Locker for scheduler tests
type InMemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiresAt, ok := l.held[key]; ok && l.now().Before(expiresAt) {
		return nil, false, nil
	}

	expiresAt := l.now().Add(ttl)
	l.held[key] = expiresAt

	return &memoryLease{locker: l, key: key, expiresAt: expiresAt}, true, nil
}

type memoryLease struct {
	locker    *InMemoryLocker
	key       string
	expiresAt time.Time
}

func (l *memoryLease) Release(_ context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	if l.locker.held[l.key] == l.expiresAt {
		delete(l.locker.held, l.key)
	}
	return nil
}

var (
	_ Cache  = (*InMemoryCache)(nil)
	_ Locker = (*InMemoryLocker)(nil)
)
