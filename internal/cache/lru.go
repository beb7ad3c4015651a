package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/strtab/internal/resource"
)

// LRU caches blob contents up to a byte capacity.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[string]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   string
	value []byte
}

// NewLRU creates a cache holding at most capacity bytes.
// If rc is non-nil, cached bytes are charged against it.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns the cached value for key.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches b under key, replacing any previous value. Values larger than
// the capacity, or refused by the resource controller, are not cached.
// The caller must not modify b afterwards.
func (c *LRU) Set(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}

	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	// Evict first so released bytes are available to the controller again.
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	if err := c.rc.AcquireMemory(itemSize); err != nil {
		return
	}

	c.items[key] = c.evictList.PushFront(&entry{key: key, value: b})
	c.size += itemSize
}

// Remove drops key from the cache.
func (c *LRU) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
}

// Purge drops every entry.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	itemSize := int64(len(kv.value))
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the number of cached bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns the hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
