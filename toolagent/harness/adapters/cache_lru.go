package adapters

import (
	"context"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache is an in-process cache with size-bounded LRU eviction and a
// cache-wide TTL.
type LRUCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRUCache creates a cache holding at most capacity entries, each expiring
// ttl after it was written. A zero ttl disables expiry.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get retrieves a value from the cache.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores a value. Per-entry TTLs are not supported; ttlSeconds is ignored
// in favor of the cache-wide TTL.
func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.lru.Add(key, value)
	return nil
}

// Delete removes a key from the cache.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len reports the number of live entries.
func (c *LRUCache) Len() int { return c.lru.Len() }

// Ensure LRUCache implements the Cache interface.
var _ ports.Cache = (*LRUCache)(nil)
