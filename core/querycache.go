// Package core provides the shared plumbing of the grandkitchen client SDK.
// This file implements the declarative query cache that keeps screens
// consistent after mutations.
//
// Purpose:
// - Caches query results keyed by endpoint + arguments
// - Tags entries so mutations can invalidate whole families at once
//   (placing an order invalidates "Cart" and "Allowance"; every cart query
//   for any date refetches on next access)
// - Stamps every fetch with a per-key generation so a response from a
//   superseded request is never committed
//
// Generations exist because of rapid date switching: when the user flips the
// selected preorder date while the previous date's cart query is still in
// flight, the old response can arrive after the new one. Without stamping,
// the stale allowance for the old date would overwrite the fresh one. Callers
// call Begin before fetching and Commit after; Commit refuses the write when
// a newer generation has been issued for the same key.
package core

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Tag labels a family of cached queries for group invalidation
type Tag string

// Cache tags used across the SDK
const (
	TagCart          Tag = "Cart"
	TagAllowance     Tag = "Allowance"
	TagHome          Tag = "Home"
	TagOrders        Tag = "Orders"
	TagProducts      Tag = "Products"
	TagProfile       Tag = "Profile"
	TagNotifications Tag = "Notifications"
)

type cacheEntry struct {
	value interface{}
	tags  []Tag
	stale bool
}

// QueryCache is a tag-invalidated cache with per-key generation stamping.
// It is safe for concurrent use.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	gens    map[string]uint64
	logger  logger.Logger
}

// NewQueryCache creates an empty cache
func NewQueryCache(log logger.Logger) *QueryCache {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		gens:    make(map[string]uint64),
		logger:  log.With(map[string]interface{}{"component": "querycache"}),
	}
}

// Key derives a stable cache key from an endpoint and its arguments
func Key(endpoint string, args ...interface{}) string {
	if len(args) == 0 {
		return endpoint
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		// Arguments are plain values everywhere in the SDK; a marshal
		// failure indicates a programming error, not a runtime condition.
		return fmt.Sprintf("%s|%v", endpoint, args)
	}
	return endpoint + "|" + string(encoded)
}

// Get returns the cached value for key. Stale entries are cache misses.
// The stored value is returned as-is; callers that hand it onward must
// detach a copy first, the way the feature clients do, or a downstream
// mutation corrupts the cache.
func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.stale {
		return nil, false
	}
	return entry.value, true
}

// Begin registers a new fetch for key and returns its generation. Every call
// supersedes all earlier generations for the same key.
func (c *QueryCache) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	return c.gens[key]
}

// Commit stores a fetched value if gen is still the latest generation issued
// for key. It returns false, without writing, when the fetch was superseded.
func (c *QueryCache) Commit(key string, gen uint64, value interface{}, tags ...Tag) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gens[key] {
		c.logger.Warn("Discarding superseded response", map[string]interface{}{
			"key":    key,
			"gen":    gen,
			"latest": c.gens[key],
		})
		return false
	}

	c.entries[key] = &cacheEntry{
		value: value,
		tags:  tags,
	}
	return true
}

// Invalidate marks every entry labeled with any of the given tags as stale
// and returns the number of entries affected. Stale entries stay resident
// until the next Commit overwrites them, but Get treats them as misses.
func (c *QueryCache) Invalidate(tags ...Tag) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	tagSet := make(map[Tag]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	count := 0
	for _, entry := range c.entries {
		if entry.stale {
			continue
		}
		for _, tag := range entry.tags {
			if _, hit := tagSet[tag]; hit {
				entry.stale = true
				count++
				break
			}
		}
	}

	if count > 0 {
		c.logger.Debug("Invalidated cache entries", map[string]interface{}{
			"tags":    tags,
			"entries": count,
		})
	}
	return count
}

// InvalidateAll drops every entry. Used on logout.
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
}
