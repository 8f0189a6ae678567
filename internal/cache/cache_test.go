package cache

import (
	"testing"
	"time"
)

func TestTTLExpires(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	c := NewTTL[int](30 * time.Second)
	c.now = func() time.Time { return now }

	c.Set("1:2024-03-06", 42)
	if v, ok := c.Get("1:2024-03-06"); !ok || v != 42 {
		t.Fatalf("expected cached value, got %v %v", v, ok)
	}

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("1:2024-03-06"); ok {
		t.Fatalf("entry should expire after the ttl")
	}
}

func TestTTLDeleteAndPurge(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	c := NewTTL[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	c.Set("c", "z")
	c.Delete("a", "missing")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted entry still present")
	}

	now = now.Add(2 * time.Minute)
	if n := c.Purge(); n != 2 {
		t.Fatalf("expected 2 purged entries, got %d", n)
	}
}

func TestNoop(t *testing.T) {
	var c Cache[int] = Noop[int]{}
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("noop cache should never hit")
	}
}
