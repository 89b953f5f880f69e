// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package cache provides the bounded recommendation result cache.
//
// Results are keyed by (user, count) and evicted in insertion order once
// capacity is reached. There is no TTL: entries stay valid until evicted or
// the cache is invalidated. The user registry invalidates the whole cache
// whenever a user is added, because a new profile can change the
// demographic neighborhood of any cold-start request.
package cache

import "sync"

// Key identifies a cached recommendation result.
type Key struct {
	UserID int
	N      int
}

type entry[V any] struct {
	key   Key
	value V
	prev  *entry[V]
	next  *entry[V]
}

// ResultCache is a thread-safe bounded cache with insertion-order eviction.
// Lookups do not refresh an entry's position; the oldest entry is always
// the first evicted.
type ResultCache[V any] struct {
	mu sync.Mutex

	capacity int
	items    map[Key]*entry[V]

	// head and tail are sentinel nodes. head.next is the newest entry,
	// tail.prev the oldest.
	head *entry[V]
	tail *entry[V]

	hits   int64
	misses int64
}

// DefaultCapacity matches the historical memoization bound of the service.
const DefaultCapacity = 128

// NewResultCache creates a cache holding at most capacity entries.
func NewResultCache[V any](capacity int) *ResultCache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &ResultCache[V]{
		capacity: capacity,
		items:    make(map[Key]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the cached value for key, if present.
func (c *ResultCache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.hits++
		return e.value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Add stores a value under key, evicting the oldest entry if the cache is
// full. Re-adding an existing key replaces its value without changing its
// eviction position.
func (c *ResultCache[V]) Add(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		return
	}

	e := &entry[V]{key: key, value: value}
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove drops a single entry. Returns true if it was present.
func (c *ResultCache[V]) Remove(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeEntry(e)
	return true
}

// Invalidate removes all entries. Hit and miss counters are preserved.
func (c *ResultCache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the current number of entries.
func (c *ResultCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit/miss counters and the current size.
func (c *ResultCache[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// removeEntry unlinks e from the list and map (lock held).
func (c *ResultCache[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *ResultCache[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
