package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrExpired   = errors.New("cache entry expired")
)

// CacheEntry represents a cached value with expiration.
type CacheEntry struct {
	Value      interface{}
	Expiration time.Time
}

// InMemoryCache is a simple in-memory cache implementation.
type InMemoryCache struct {
	entries map[string]*CacheEntry
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewInMemoryCache creates a new in-memory cache that sweeps expired
// entries every interval. Call Close to stop the sweeper.
func NewInMemoryCache(interval time.Duration) *InMemoryCache {
	cache := &InMemoryCache{
		entries: make(map[string]*CacheEntry),
		stop:    make(chan struct{}),
	}

	if interval > 0 {
		go cache.cleanup(interval)
	}

	return cache
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, ErrCacheMiss
	}

	if time.Now().After(entry.Expiration) {
		return nil, ErrExpired
	}

	return entry.Value, nil
}

// Set stores a value in the cache with a TTL.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &CacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache.
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes all values from the cache.
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)
	return nil
}

// Exists checks if a live key exists in the cache.
func (c *InMemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return false, nil
	}

	return !time.Now().After(entry.Expiration), nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweeper.
func (c *InMemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *InMemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.Expiration) {
			delete(c.entries, key)
		}
	}
}
