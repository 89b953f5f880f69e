// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetMissThenHit(t *testing.T) {
	t.Parallel()

	c := NewResultCache[string](4)
	key := Key{UserID: 1, N: 10}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Add(key, "result")

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Add")
	}
	if got != "result" {
		t.Errorf("got %q, want %q", got, "result")
	}
}

func TestKeyDistinguishesUserAndN(t *testing.T) {
	t.Parallel()

	c := NewResultCache[string](4)
	c.Add(Key{UserID: 1, N: 10}, "ten")
	c.Add(Key{UserID: 1, N: 5}, "five")
	c.Add(Key{UserID: 2, N: 10}, "other user")

	tests := []struct {
		key  Key
		want string
	}{
		{Key{UserID: 1, N: 10}, "ten"},
		{Key{UserID: 1, N: 5}, "five"},
		{Key{UserID: 2, N: 10}, "other user"},
	}
	for _, tt := range tests {
		got, ok := c.Get(tt.key)
		if !ok || got != tt.want {
			t.Errorf("Get(%+v) = %q, %v; want %q, true", tt.key, got, ok, tt.want)
		}
	}
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	c := NewResultCache[int](3)
	for i := 1; i <= 3; i++ {
		c.Add(Key{UserID: i, N: 10}, i)
	}

	// Reading the oldest entry must not protect it from eviction.
	if _, ok := c.Get(Key{UserID: 1, N: 10}); !ok {
		t.Fatal("entry 1 should still be cached")
	}

	c.Add(Key{UserID: 4, N: 10}, 4)

	if _, ok := c.Get(Key{UserID: 1, N: 10}); ok {
		t.Error("oldest entry should have been evicted")
	}
	for i := 2; i <= 4; i++ {
		if _, ok := c.Get(Key{UserID: i, N: 10}); !ok {
			t.Errorf("entry %d should still be cached", i)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestReAddKeepsEvictionPosition(t *testing.T) {
	t.Parallel()

	c := NewResultCache[int](2)
	c.Add(Key{UserID: 1, N: 10}, 1)
	c.Add(Key{UserID: 2, N: 10}, 2)

	// Updating entry 1 must not make entry 2 the eviction candidate.
	c.Add(Key{UserID: 1, N: 10}, 100)
	c.Add(Key{UserID: 3, N: 10}, 3)

	if _, ok := c.Get(Key{UserID: 1, N: 10}); ok {
		t.Error("entry 1 is oldest and should have been evicted")
	}
	if got, ok := c.Get(Key{UserID: 2, N: 10}); !ok || got != 2 {
		t.Errorf("entry 2 = %d, %v; want 2, true", got, ok)
	}
}

func TestInvalidateClearsAll(t *testing.T) {
	t.Parallel()

	c := NewResultCache[int](8)
	for i := 0; i < 5; i++ {
		c.Add(Key{UserID: i, N: 10}, i)
	}

	c.Invalidate()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Invalidate, want 0", c.Len())
	}
	for i := 0; i < 5; i++ {
		if _, ok := c.Get(Key{UserID: i, N: 10}); ok {
			t.Errorf("entry %d survived Invalidate", i)
		}
	}

	// Cache remains usable after invalidation.
	c.Add(Key{UserID: 9, N: 3}, 9)
	if got, ok := c.Get(Key{UserID: 9, N: 3}); !ok || got != 9 {
		t.Errorf("post-invalidate Add/Get = %d, %v; want 9, true", got, ok)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	c := NewResultCache[int](4)
	key := Key{UserID: 7, N: 10}
	c.Add(key, 7)

	if !c.Remove(key) {
		t.Error("Remove should report true for present key")
	}
	if c.Remove(key) {
		t.Error("Remove should report false for absent key")
	}
	if _, ok := c.Get(key); ok {
		t.Error("removed entry still retrievable")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	c := NewResultCache[int](4)
	key := Key{UserID: 1, N: 10}

	c.Get(key) // miss
	c.Add(key, 1)
	c.Get(key) // hit
	c.Get(key) // hit

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", hits, misses, size)
	}
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	t.Parallel()

	c := NewResultCache[int](0)
	for i := 0; i < DefaultCapacity+10; i++ {
		c.Add(Key{UserID: i, N: 10}, i)
	}
	if c.Len() != DefaultCapacity {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultCapacity)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := NewResultCache[string](32)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := Key{UserID: i % 50, N: g}
				c.Add(key, fmt.Sprintf("%d-%d", g, i))
				c.Get(key)
				if i%67 == 0 {
					c.Invalidate()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 32 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
