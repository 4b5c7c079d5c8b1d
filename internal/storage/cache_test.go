package storage

import (
	"testing"
	"time"
)

func TestLRUCacheSetGet(t *testing.T) {
	cache := NewLRUCache(10, time.Minute)

	cache.Set("a", 1)
	v, found := cache.Get("a")
	if !found {
		t.Fatal("Get() found = false after Set")
	}
	if v.(int) != 1 {
		t.Errorf("Get() = %v, want 1", v)
	}

	if _, found := cache.Get("missing"); found {
		t.Error("Get() found = true for missing key")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	cache := NewLRUCache(2, time.Minute)

	cache.Set("a", 1)
	cache.Set("b", 2)
	// Touch "a" so "b" is the eviction candidate.
	cache.Get("a")
	cache.Set("c", 3)

	if _, found := cache.Get("b"); found {
		t.Error("expected b to be evicted")
	}
	if _, found := cache.Get("a"); !found {
		t.Error("expected a to survive eviction")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	cache := NewLRUCache(10, 10*time.Millisecond)

	cache.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := cache.Get("a"); found {
		t.Error("Get() found = true for expired entry")
	}
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	cache := NewLRUCache(10, 10*time.Millisecond)

	cache.Set("a", 1)
	cache.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	if removed := cache.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestLRUCacheStats(t *testing.T) {
	cache := NewLRUCache(10, time.Minute)

	cache.Set("a", 1)
	cache.Get("a")
	cache.Get("missing")

	stats := cache.GetStats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Size = %d, want 1", stats.Size)
	}
}
