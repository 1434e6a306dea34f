package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRUCache evicts by recency once maxSize is reached and drops entries
// whose TTL has elapsed.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		c.remove(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return e.data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(e)
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// DeletePrefix removes every entry whose key starts with prefix. Ledger
// writes use it to invalidate all cached reports of an organization.
func (c *LRUCache[T]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if strings.HasPrefix(elem.Value.(*entry[T]).key, prefix) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.remove(elem)
	}
	return len(stale)
}

func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		c.remove(elem)
	}
	return len(expired)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.lru.Remove(elem)
}
