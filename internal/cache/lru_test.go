package cache

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	applog "finsmart/internal/log"
)

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *time.Time) {
	c := NewLRUCache[string](size, ttl)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestLRUGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	// a is now most recent, so c evicts b
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("a", "1")
	*clock = clock.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired early")
	}
	*clock = clock.Add(time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should expire at ttl")
	}
}

func TestLRUCleanExpiredAndPrefix(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("user1:summary", "x")
	c.Set("user1:bills", "y")
	c.Set("user2:bills", "z")
	if n := c.DeletePrefix("user1:"); n != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", n)
	}

	*clock = clock.Add(2 * time.Minute)
	c.Set("fresh", "f")
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestManagerCleanAll(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(applog.New(applog.Config{Handler: slog.NewTextHandler(&buf, nil)}))
	c, clock := newTestCache(10, time.Second)
	m.Register(c)

	c.Set("a", "1")
	*clock = clock.Add(time.Hour)
	if n := m.CleanAll(); n != 1 {
		t.Errorf("CleanAll() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
