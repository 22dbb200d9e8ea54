package cache

import (
	"context"
	"sync"
	"time"
)

// entry represents a cached value with expiration
type entry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryLookupCache implements LookupCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryLookupCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLookupCache creates a new in-memory cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryLookupCache() *InMemoryLookupCache {
	c := newInMemoryLookupCache(time.Now)
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

func newInMemoryLookupCache(now func() time.Time) *InMemoryLookupCache {
	return &InMemoryLookupCache{
		entries:  make(map[string]entry),
		now:      now,
		stopChan: make(chan struct{}),
	}
}

// Get returns a copy of the cached value if present and not expired
func (c *InMemoryLookupCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a copy of value for ttl. A non-positive ttl removes the key.
func (c *InMemoryLookupCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return nil
	}
	c.entries[key] = entry{
		value:     append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet cleaned up
func (c *InMemoryLookupCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine
func (c *InMemoryLookupCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryLookupCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopChan:
			return
		}
	}
}

// cleanup removes all expired entries
func (c *InMemoryLookupCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryLookupCache implements LookupCache
var _ LookupCache = (*InMemoryLookupCache)(nil)
