package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache is a bounded in-process LRU
type MemoryCache struct {
	entries *lru.Cache[string, float64]
}

// NewMemoryCache creates a cache holding at most size entries
func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := lru.New[string, float64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

// Get returns a cached probability
func (c *MemoryCache) Get(_ context.Context, key string) (float64, bool, error) {
	p, ok := c.entries.Get(key)
	return p, ok, nil
}

// Set stores a probability, evicting the least recently used entry when full
func (c *MemoryCache) Set(_ context.Context, key string, p float64) error {
	c.entries.Add(key, p)
	return nil
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
