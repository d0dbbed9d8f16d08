package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	c := New[string, int](time.Minute, time.Hour)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get(a) after expiry returned ok")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d before eviction, want 1", c.Len())
	}

	c.evictExpired()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after eviction, want 0", c.Len())
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := New[string, string](time.Minute, time.Hour)
	defer c.Close()

	c.Set("k1", "user-1")
	c.Set("k2", "user-2")

	c.Delete("k2")
	if _, ok := c.Get("k2"); ok {
		t.Fatal("k2 still present after Delete")
	}
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("Delete(k2) removed k1")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string](time.Minute, time.Hour)
	defer s.Close()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get(k) = %q, %v", v, ok)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("Get(k) after Delete returned ok")
	}
}
