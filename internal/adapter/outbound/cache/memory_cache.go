// Package cache implements internal/service.DecisionCache, the PDP façade's
// optional decision cache (spec §9 "Decision cache" design note).
package cache

import (
	"context"
	"sync"

	"github.com/latticeauth/xacml-pdp/internal/service"
)

// lruEntry is a doubly-linked list node, one per cached key.
type lruEntry struct {
	key    string
	result service.Result
	prev   *lruEntry
	next   *lruEntry
}

// MemoryCache is a bounded, in-process LRU DecisionCache: the simplest
// correct implementation of the GetAll/PutAll contract, with no I/O and no
// cross-process sharing.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*lruEntry
	head    *lruEntry // most recently used
	tail    *lruEntry // least recently used
	maxSize int
}

// NewMemoryCache creates an LRU DecisionCache holding at most maxSize
// entries. maxSize <= 0 means unbounded.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*lruEntry),
		maxSize: maxSize,
	}
}

func (c *MemoryCache) GetAll(_ context.Context, keys []string) (map[string]service.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits := map[string]service.Result{}
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			c.moveToHeadLocked(e)
			hits[k] = e.result
		}
	}
	return hits, nil
}

func (c *MemoryCache) PutAll(_ context.Context, results map[string]service.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, r := range results {
		if e, ok := c.entries[k]; ok {
			e.result = r
			c.moveToHeadLocked(e)
			continue
		}
		if c.maxSize > 0 && len(c.entries) >= c.maxSize {
			c.evictTailLocked()
		}
		e := &lruEntry{key: k, result: r}
		c.entries[k] = e
		c.pushHeadLocked(e)
	}
	return nil
}

// Clear empties the cache, e.g. after a policy reload invalidates every
// previously cached decision.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*lruEntry)
	c.head, c.tail = nil, nil
}

// Size returns the current entry count.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) moveToHeadLocked(e *lruEntry) {
	if c.head == e {
		return
	}
	c.unlinkLocked(e)
	c.pushHeadLocked(e)
}

func (c *MemoryCache) pushHeadLocked(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryCache) unlinkLocked(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *MemoryCache) evictTailLocked() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlinkLocked(c.tail)
}
