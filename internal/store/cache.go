// Package store provides the in-memory conversion cache backed by an LRU
// cache with a Bloom filter prefilter.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"tunelink/internal/core"
)

// ConversionCache remembers successful conversions keyed by the canonical
// source track identity ("<service>:<trackID>"). The Bloom filter rejects
// most cold lookups without touching the LRU; Bloom false positives only
// cost one extra LRU probe.
type ConversionCache struct {
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, []core.MusicItem]
	mutex             sync.RWMutex
	capacity          int
	falsePositiveRate float64
}

// NewConversionCache creates a cache holding up to capacity conversions.
func NewConversionCache(capacity int, falsePositiveRate float64) *ConversionCache {
	if capacity <= 0 {
		capacity = core.DefaultCacheSize
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	lruCache, _ := lru.New[string, []core.MusicItem](capacity)

	return &ConversionCache{
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		lru:               lruCache,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}
}

// Get returns the cached conversion results for a key, if present.
func (c *ConversionCache) Get(key string) ([]core.MusicItem, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.bloom.TestString(key) {
		return nil, false
	}

	return c.lru.Get(key)
}

// Add stores the conversion results for a key. Empty result sets are not
// cached so a transient empty answer never sticks.
func (c *ConversionCache) Add(key string, items []core.MusicItem) {
	if len(items) == 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.bloom.AddString(key)
	c.lru.Add(key, items)
}

// Len returns the number of conversions currently cached.
func (c *ConversionCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lru.Len()
}

// Purge drops every cached conversion and resets the Bloom filter.
func (c *ConversionCache) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.bloom = bloom.NewWithEstimates(uint(c.capacity), c.falsePositiveRate)
	c.lru.Purge()
}
