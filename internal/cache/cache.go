package cache

import (
	"strings"
	"sync"
	"time"
)

type item struct {
	value      interface{}
	expiration int64
}

// Cache is a small in-memory TTL cache used in front of catalog reads.
// Writers invalidate by key or by key prefix.
type Cache struct {
	items map[string]item
	mu    sync.RWMutex
	ttl   time.Duration
}

func New(defaultTTL time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]item),
		ttl:   defaultTTL,
	}
	go c.cleanupExpired()
	return c
}

// Set stores a value under key. An optional ttl overrides the default.
func (c *Cache) Set(key string, value interface{}, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}

	c.items[key] = item{
		value:      value,
		expiration: time.Now().Add(duration).UnixNano(),
	}
}

// Get returns the value for key, if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || time.Now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.value, true
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteByPrefix removes every key starting with prefix.
func (c *Cache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

// Size returns the number of entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now().UnixNano()
		for key, it := range c.items {
			if now > it.expiration {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}
