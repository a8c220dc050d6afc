package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value  string
	stored time.Time
}

// InMemoryCache is a process-local translation memory with optional expiry.
type InMemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
	ttl     time.Duration
}

// NewInMemoryCache creates an in-memory store. If ttlSeconds is 0 or
// negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (c *InMemoryCache) expired(e memoryEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.stored) > c.ttl
}

// Get retrieves a translation. Expired entries are dropped on access.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if c.expired(e, time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set stores a translation, resetting its expiry.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: value, stored: time.Now()}
	return nil
}

// Len returns the number of entries, including expired ones not yet pruned.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

// Prune removes expired entries and returns how many were removed.
func (c *InMemoryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	n := 0
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Entries returns all live entries.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	out := make(map[string]string, len(c.entries))
	for key, e := range c.entries {
		if !c.expired(e, now) {
			out[key] = e.value
		}
	}
	return out, nil
}

var _ Store = (*InMemoryCache)(nil)
