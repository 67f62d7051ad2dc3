// Package cache holds fetched package details in a bounded LRU.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"brewery/pkg/brew"
)

// DefaultCapacity is the number of details kept when no capacity is configured.
const DefaultCapacity = 64

// Cache maps package keys to merged detail records with strict LRU eviction.
// Both Get and Put count as a use.
type Cache struct {
	entries  *lru.Cache[string, brew.PackageDetail]
	evicted  int
	removing bool
}

// New creates a cache holding at most capacity entries.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &Cache{}
	entries, err := lru.NewWithEvict(capacity, func(string, brew.PackageDetail) {
		if !c.removing {
			c.evicted++
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create details cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// Get returns the detail for key and marks it most recently used.
func (c *Cache) Get(key string) (brew.PackageDetail, bool) {
	return c.entries.Get(key)
}

// Peek returns the detail for key without touching its recency.
func (c *Cache) Peek(key string) (brew.PackageDetail, bool) {
	return c.entries.Peek(key)
}

// Put merges detail into the entry for key, inserting it when absent.
// Only the field groups present in detail overwrite the stored record.
func (c *Cache) Put(key string, detail brew.PackageDetail) {
	merged, ok := c.entries.Peek(key)
	if ok {
		merged.Merge(detail)
	} else {
		merged = detail
	}
	c.entries.Add(key, merged)
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	c.removing = true
	c.entries.Remove(key)
	c.removing = false
}

// Contains reports whether key is resident without touching its recency.
func (c *Cache) Contains(key string) bool {
	return c.entries.Contains(key)
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Keys returns resident keys from least to most recently used.
func (c *Cache) Keys() []string {
	return c.entries.Keys()
}

// Evicted returns how many entries have been pushed out by capacity since
// the cache was created. Invalidate and Purge do not count.
func (c *Cache) Evicted() int {
	return c.evicted
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.removing = true
	c.entries.Purge()
	c.removing = false
}
