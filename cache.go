package gocoro

import (
	"github.com/ehrlich-b/gocoro/internal/cache"
	"github.com/ehrlich-b/gocoro/internal/logging"
)

// CacheConfig tunes a Cache's capacity (spec §4.C). Zero values fall
// back to the package defaults.
type CacheConfig struct {
	MaxFrameNum uint32
	BlockNum    uint32
	BlockSize   uint32
	Logger      *logging.Logger

	// Observer, if set, receives Put/Get traffic counters. Nil
	// disables observation.
	Observer Observer
}

// Cache is the public block-chained key/value store (spec §3 KVCache,
// §4.C): a preallocated fixed-size block pool shared by every key,
// with append-write, consuming-read, non-consuming-peek, size and
// delete operations. It wraps internal/cache.Cache, adding optional
// Observer instrumentation at the public boundary.
type Cache struct {
	inner    *cache.Cache
	observer Observer
}

// NewCache creates a Cache per cfg.
func NewCache(cfg CacheConfig) *Cache {
	return &Cache{
		inner: cache.New(cache.Config{
			MaxFrameNum: cfg.MaxFrameNum,
			BlockNum:    cfg.BlockNum,
			BlockSize:   cfg.BlockSize,
			Logger:      cfg.Logger,
		}),
		observer: cfg.Observer,
	}
}

// Put appends buff to key's chain (spec §4.C Put). overwrite replaces
// any existing chain for key instead of appending to it.
func (c *Cache) Put(key uint64, buff []byte, overwrite bool) error {
	err := c.inner.Put(key, buff, overwrite)
	if c.observer != nil {
		c.observer.ObserveCachePut(uint64(len(buff)), err == nil)
	}
	return err
}

// Get reads and consumes up to len(buff) bytes from key's chain,
// returning the number of bytes read (spec §4.C Get).
func (c *Cache) Get(key uint64, buff []byte) int {
	n := c.inner.Get(key, buff)
	if c.observer != nil {
		c.observer.ObserveCacheGet(uint64(n))
	}
	return n
}

// Peek behaves like Get but does not consume the chain (spec §4.C
// Peek).
func (c *Cache) Peek(key uint64, buff []byte) int {
	return c.inner.Peek(key, buff)
}

// GetSize returns the total unread byte count for key, 0 if absent
// (spec §4.C GetSize).
func (c *Cache) GetSize(key uint64) int {
	return c.inner.GetSize(key)
}

// Del destroys key's entire chain (spec §4.C Del).
func (c *Cache) Del(key uint64) error {
	return c.inner.Del(key)
}

// FreeBlocks reports the number of blocks currently on the free list.
func (c *Cache) FreeBlocks() uint32 {
	return c.inner.FreeBlocks()
}
