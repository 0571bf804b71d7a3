// Package cache keeps recently used pages in memory.
package cache

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"

	"slotdb/internal/base"
)

const (
	MinCacheSize = 16 // Minimum: hold a root to leaf path plus a working page
)

// Cache is an LRU of page number to page image. It is safe for concurrent
// use. Cached pages are shared with callers; callers must not mutate a page
// they did not Put.
type Cache struct {
	lru *freelru.SyncedLRU[int32, *base.Page]

	// Stats
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// hashPageNumber feeds the little-endian page number through xxhash and folds
// the result to 32 bits.
func hashPageNumber(n int32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	h := xxhash.Sum64(b[:])
	return uint32(h) ^ uint32(h>>32)
}

// NewCache creates a page cache holding up to maxSize pages. onEvict, if not
// nil, is called for each page pushed out to make room for another.
func NewCache(maxSize int, onEvict func(n int32, p *base.Page)) (*Cache, error) {
	maxSize = max(maxSize, MinCacheSize)

	lru, err := freelru.NewSynced[int32, *base.Page](uint32(maxSize), hashPageNumber)
	if err != nil {
		return nil, err
	}
	if onEvict != nil {
		lru.SetOnEvict(onEvict)
	}
	return &Cache{lru: lru}, nil
}

// Put adds a page to the cache, replacing any existing entry for n.
func (c *Cache) Put(n int32, p *base.Page) {
	if c.lru.Add(n, p) {
		c.evictions.Add(1)
	}
}

// Get retrieves a page from the cache.
// Returns (page, true) on cache hit, (nil, false) on miss.
func (c *Cache) Get(n int32) (*base.Page, bool) {
	p, ok := c.lru.Get(n)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return p, true
}

// GetOrLoad returns the cached page for n, calling load and caching its
// result on a miss.
func (c *Cache) GetOrLoad(n int32, load func(n int32) (*base.Page, error)) (*base.Page, error) {
	if p, ok := c.Get(n); ok {
		return p, nil
	}
	p, err := load(n)
	if err != nil {
		return nil, err
	}
	c.Put(n, p)
	return p, nil
}

// Delete removes a page from the cache.
func (c *Cache) Delete(n int32) {
	c.lru.Remove(n)
}

// Purge drops every cached page.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Size returns current number of cached entries
func (c *Cache) Size() int {
	return c.lru.Len()
}

type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// ClearStats resets the cache's positive incrementing statistics
func (c *Cache) ClearStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
