// Package idempotency remembers client request keys so that a replayed
// request resolves to the ticket created the first time.
package idempotency

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Cache maps idempotency keys to the reference they produced.
type Cache interface {
	// Reserve atomically looks key up and records it with reference if absent.
	// It returns the stored reference and true when key was already present.
	Reserve(ctx context.Context, key, reference string) (string, bool)

	// Forget removes key so that the request can be retried. Used when a
	// reserved request could not be accepted.
	Forget(ctx context.Context, key string)

	// Rebind points an existing key at a new reference. Unknown keys are ignored.
	Rebind(ctx context.Context, key, reference string)

	Size() int64
}

type entry struct {
	key       string
	reference string
}

// inMemoryCache keeps keys in insertion order and evicts the oldest first.
// maxSize <= 0 disables eviction.
type inMemoryCache struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryCache creates a bounded in-memory cache.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.keys = make(map[string]*list.Element)
	c.order = list.New()
	return c
}

func (c *inMemoryCache) Reserve(_ context.Context, key, reference string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.keys[key]; ok {
		return el.Value.(*entry).reference, true
	}
	if c.maxSize > 0 && len(c.keys) >= c.maxSize {
		c.evictOldest()
	}
	c.keys[key] = c.order.PushBack(&entry{key: key, reference: reference})
	c.size.Add(1)
	return reference, false
}

func (c *inMemoryCache) Forget(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.keys[key]; ok {
		c.order.Remove(el)
		delete(c.keys, key)
		c.size.Add(-1)
	}
}

func (c *inMemoryCache) Rebind(_ context.Context, key, reference string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.keys[key]; ok {
		el.Value.(*entry).reference = reference
	}
}

// evictOldest must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	c.order.Remove(front)
	delete(c.keys, front.Value.(*entry).key)
	c.size.Add(-1)
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
