// Package cache implements the two bounded, age-ordered memoization
// stores from spec.md §4.2: a leaf cache for raw engine analysis and a
// result cache for whole investigations, with an optional on-disk backing
// store (via badger) for the result cache.
package cache

import "container/list"

// lru is a generic, age-ordered (insertion-order, not access-order — a
// cache hit does not promote an entry) bounded map. Eviction drops the
// oldest entry once Size is exceeded, matching spec.md §4.2's "soft"
// size-limit/age-ordered eviction policy.
type lru[K comparable, V any] struct {
	size    int
	entries map[K]*list.Element
	order   *list.List // front = oldest
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRU[K comparable, V any](size int) *lru[K, V] {
	return &lru[K, V]{
		size:    size,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

func (c *lru[K, V]) Get(key K) (V, bool) {
	if el, ok := c.entries[key]; ok {
		return el.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

func (c *lru[K, V]) Set(key K, value V) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		return
	}
	el := c.order.PushBack(&lruEntry[K, V]{key: key, value: value})
	c.entries[key] = el
	if c.size > 0 {
		for c.order.Len() > c.size {
			oldest := c.order.Front()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry[K, V]).key)
		}
	}
}

func (c *lru[K, V]) Len() int { return c.order.Len() }
