package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

var (
	_ Cache[string, int] = (*LRU[string, int])(nil)
	_ Cleaner            = (*LRU[string, int])(nil)
)

// LRU is a size-bounded cache whose entries also expire after a TTL.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[K]*list.Element
	order   *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Stats reports cumulative lookups.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func NewLRU[K comparable, V any](maxSize int, ttl time.Duration) *LRU[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[K, V]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[K]*list.Element),
		order:   list.New(),
	}
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if c.now().After(e.expiresAt) {
		c.remove(elem)
		c.misses.Add(1)
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return e.value, true
}

func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[K, V]{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)
	for c.order.Len() > c.maxSize {
		c.remove(c.order.Back())
	}
}

func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

func (c *LRU[K, V]) remove(elem *list.Element) {
	e := elem.Value.(*entry[K, V])
	delete(c.items, e.key)
	c.order.Remove(elem)
}

// CleanExpired drops every expired entry and returns how many were removed.
func (c *LRU[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry[K, V]).expiresAt) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *LRU[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: c.Size()}
}
