// Package pagecache is a page cache whose entries each own one frame of a
// pframe.Registry.
//
// Recency is tracked by an LRU list and admission is gated by a frequency
// sketch: when the cache (or the registry behind it) is full, a missed key
// only replaces the least recently used entry if it has been seen more often.
// The framectl tool drives it with a skewed workload to exercise the frame
// allocator under steady alloc and release churn.
package pagecache

import (
	"encoding/binary"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/internal/logger"
)

// Config ...
type Config struct {
	// Capacity bounds the number of cached pages. Zero means the size of the
	// registry range.
	Capacity int

	// Counters is the number of sketch counters. Zero means four per page.
	Counters uint64
}

// Stats ...
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Admitted  uint64 `json:"admitted"`
	Rejected  uint64 `json:"rejected"`
	Evictions uint64 `json:"evictions"`
}

// Cache ...
type Cache struct {
	registry *pframe.Registry
	capacity int

	index  map[uint64]uint32
	lru    lruList
	sketch *frequencySketch

	stats Stats
}

// New creates a cache on top of an initialized registry.
func New(registry *pframe.Registry, conf Config) *Cache {
	capacity := conf.Capacity
	if capacity <= 0 {
		capacity = int(registry.Range().Len())
	}

	counters := conf.Counters
	if counters == 0 {
		counters = 4 * uint64(capacity)
	}

	return &Cache{
		registry: registry,
		capacity: capacity,

		index:  map[uint64]uint32{},
		lru:    newLRUList(),
		sketch: newFrequencySketch(counters, capacity),
	}
}

// Access looks up key, loading it into a fresh frame on a miss when admission
// allows. It returns true on a hit.
func (c *Cache) Access(key uint64) bool {
	c.sketch.increment(key)

	if index, ok := c.index[key]; ok {
		c.lru.touch(index)
		c.stats.Hits++
		return true
	}

	c.stats.Misses++
	c.admit(key)
	return false
}

func (c *Cache) admit(key uint64) {
	if c.lru.size >= c.capacity && !c.evictFor(key) {
		c.stats.Rejected++
		return
	}

	f, ok := c.registry.Alloc()
	if !ok {
		if !c.evictFor(key) {
			c.stats.Rejected++
			return
		}
		f, ok = c.registry.Alloc()
		if !ok {
			c.stats.Rejected++
			return
		}
	}

	binary.LittleEndian.PutUint64(f.Bytes(), key)
	c.index[key] = c.lru.pushFront(key, f)
	c.stats.Admitted++
}

// evictFor releases the least recently used entry if key is more frequent.
func (c *Cache) evictFor(key uint64) bool {
	victim, ok := c.lru.last()
	if !ok {
		return false
	}

	victimKey := c.lru.keyOf(victim)
	if c.sketch.frequency(key) <= c.sketch.frequency(victimKey) {
		return false
	}

	delete(c.index, victimKey)
	c.lru.remove(victim).Release()
	c.stats.Evictions++
	return true
}

// Page returns the frame contents of a cached key without touching it.
func (c *Cache) Page(key uint64) ([]byte, bool) {
	index, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.lru.frameOf(index).Bytes(), true
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache) Keys() []uint64 {
	return c.lru.keys()
}

// Len ...
func (c *Cache) Len() int {
	return c.lru.size
}

// Capacity ...
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats ...
func (c *Cache) Stats() Stats {
	return c.stats
}

// Close releases every cached frame back to the registry.
func (c *Cache) Close() {
	released := c.lru.size
	for {
		index, ok := c.lru.last()
		if !ok {
			break
		}
		c.lru.remove(index).Release()
	}
	c.index = map[uint64]uint32{}
	logger.L.Debug("page cache closed", "released", released)
}
