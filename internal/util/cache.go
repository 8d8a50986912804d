package util

import (
	"container/list"
	"sync"
)

type (
	// LRUCache keeps at most maxSize values, evicting the least recently
	// used. Failed constructions are never stored
	LRUCache[K comparable, V any] struct {
		cache   map[K]*list.Element
		lru     *list.List
		maxSize int
		mu      sync.Mutex
	}

	// Constructor builds the value for a missing key
	Constructor[V any] func() (V, error)

	cacheEntry[K comparable, V any] struct {
		value V
		key   K
	}
)

func NewLRUCache[K comparable, V any](maxSize int) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		cache:   map[K]*list.Element{},
		lru:     list.New(),
		maxSize: max(maxSize, 1),
	}
}

// Get returns the cached value for key, calling create on a miss. create
// runs without the lock held, so concurrent misses may each call it
func (c *LRUCache[K, V]) Get(key K, create Constructor[V]) (V, error) {
	if v, ok := c.Peek(key); ok {
		return v, nil
	}

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry[K, V]).value, nil
	}

	entry := &cacheEntry[K, V]{key: key, value: value}
	c.cache[key] = c.lru.PushFront(entry)

	if c.lru.Len() > c.maxSize {
		c.evictLast()
	}

	return value, nil
}

// Peek returns the cached value for key, marking it recently used
func (c *LRUCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry[K, V]).value, true
}

// Len returns the number of cached values
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every cached value
func (c *LRUCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[K]*list.Element{}
	c.lru.Init()
}

func (c *LRUCache[K, V]) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		backEntry := back.Value.(*cacheEntry[K, V])
		delete(c.cache, backEntry.key)
	}
}
