package boost

import (
	"context"
	"sync"
	"time"
)

// Fetcher loads the product-to-value boost mapping for a boost id from its
// backing source.
type Fetcher interface {
	FetchBoost(ctx context.Context, boostID string) (map[string]float64, error)
}

type cacheEntry struct {
	values    map[string]float64
	fetchedAt time.Time
}

// MappingCache keeps recently used boost mappings in memory so repeated
// scoring requests do not hit the backing source. Entries expire after the
// configured TTL and are refetched on the next lookup.
//
// Lookups that miss fetch without holding the lock; concurrent misses for
// the same id may fetch more than once and the last write wins, which is
// harmless because the fetched values are identical.
type MappingCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	fetcher Fetcher
	ttl     time.Duration
}

// NewMappingCache creates a cache over the given fetcher. A zero ttl means
// entries never expire.
func NewMappingCache(fetcher Fetcher, ttl time.Duration) *MappingCache {
	return &MappingCache{
		entries: make(map[string]cacheEntry),
		fetcher: fetcher,
		ttl:     ttl,
	}
}

// Get returns the boost mapping for the given id, fetching it if absent or
// expired.
func (c *MappingCache) Get(ctx context.Context, boostID string) (map[string]float64, error) {
	c.mu.RLock()
	entry, ok := c.entries[boostID]
	c.mu.RUnlock()

	if ok && !c.expired(entry) {
		return entry.values, nil
	}

	values, err := c.fetcher.FetchBoost(ctx, boostID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[boostID] = cacheEntry{values: values, fetchedAt: time.Now()}
	c.mu.Unlock()

	return values, nil
}

// Invalidate drops the cached mapping for the given id.
func (c *MappingCache) Invalidate(boostID string) {
	c.mu.Lock()
	delete(c.entries, boostID)
	c.mu.Unlock()
}

// Len returns the number of cached mappings.
func (c *MappingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MappingCache) expired(entry cacheEntry) bool {
	return c.ttl > 0 && time.Since(entry.fetchedAt) > c.ttl
}
