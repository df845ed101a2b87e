// Package dircache provides a size-bounded, single-flight directory cache
// for pmtiles.Reader, adapted from the goroutine-driven cache/inflight-map
// pattern in the reference implementation's async server loop, restated here
// as a plain mutex-protected structure plus golang.org/x/sync/singleflight
// rather than a hand-rolled request-loop goroutine.
package dircache

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tileforge/pmtiles/pmtiles"
)

// entrySize approximates the in-memory cost of one directory entry, used to
// convert a caller-supplied byte budget into an item-count eviction bound.
const entrySize = 32

type cacheNode struct {
	key     pmtiles.CacheKey
	entries []pmtiles.Entry
}

// LRU is a pmtiles.DirectoryCache bounded by an approximate byte budget,
// evicting the least-recently-used directory when the budget is exceeded.
// Concurrent loads for the same key are coalesced via singleflight so that a
// cache stampede from many simultaneous readers of a cold archive results in
// exactly one backend fetch.
type LRU struct {
	maxBytes int64

	mu        sync.Mutex
	usedBytes int64
	items     map[pmtiles.CacheKey]*list.Element
	order     *list.List

	group singleflight.Group
}

// NewLRU constructs an LRU cache with a total byte budget of maxBytes across
// all cached directories, spread across however many distinct archives share
// the cache.
func NewLRU(maxBytes int64) *LRU {
	return &LRU{
		maxBytes: maxBytes,
		items:    make(map[pmtiles.CacheKey]*list.Element),
		order:    list.New(),
	}
}

// Get returns a cached directory, marking it most-recently-used on a hit.
func (c *LRU) Get(key pmtiles.CacheKey) ([]pmtiles.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheNode).entries, true
}

// GetOrLoad returns the cached directory for key, or loads it via load
// exactly once across concurrent callers sharing that key.
func (c *LRU) GetOrLoad(ctx context.Context, key pmtiles.CacheKey, load func(context.Context) ([]pmtiles.Entry, error)) ([]pmtiles.Entry, error) {
	if entries, ok := c.Get(key); ok {
		return entries, nil
	}

	groupKey := cacheKeyString(key)
	v, err, _ := c.group.Do(groupKey, func() (interface{}, error) {
		if entries, ok := c.Get(key); ok {
			return entries, nil
		}
		entries, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.insert(key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]pmtiles.Entry), nil
}

func (c *LRU) insert(key pmtiles.CacheKey, entries []pmtiles.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		old := el.Value.(*cacheNode)
		c.usedBytes += int64(len(entries)-len(old.entries)) * entrySize
		el.Value = &cacheNode{key: key, entries: entries}
		c.evict()
		return
	}

	el := c.order.PushFront(&cacheNode{key: key, entries: entries})
	c.items[key] = el
	c.usedBytes += int64(len(entries)) * entrySize
	c.evict()
}

func (c *LRU) evict() {
	for c.usedBytes > c.maxBytes && c.order.Len() > 0 {
		back := c.order.Back()
		if back == nil {
			return
		}
		node := back.Value.(*cacheNode)
		c.order.Remove(back)
		delete(c.items, node.key)
		c.usedBytes -= int64(len(node.entries)) * entrySize
	}
}

// Invalidate discards every cached directory belonging to archiveName,
// called when a Backend reports pmtiles.ErrRefreshRequired.
func (c *LRU) Invalidate(archiveName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, el := range c.items {
		if key.ArchiveName != archiveName {
			continue
		}
		node := el.Value.(*cacheNode)
		c.order.Remove(el)
		delete(c.items, key)
		c.usedBytes -= int64(len(node.entries)) * entrySize
	}
}

func cacheKeyString(k pmtiles.CacheKey) string {
	return k.ArchiveName + "\x00" + k.ETag + "\x00" +
		itoa(k.Offset) + "\x00" + itoa(k.Length)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

var _ pmtiles.DirectoryCache = (*LRU)(nil)
