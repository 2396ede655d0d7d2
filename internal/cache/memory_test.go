package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

var ctx = context.Background()

// fakeClock lets tests advance time without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(cap int) (*Memory, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(cap)
	m.now = clk.now
	return m, clk
}

func TestGetMiss(t *testing.T) {
	m, _ := newTestCache(10)
	if _, ok := m.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestTTLExpiry(t *testing.T) {
	m, clk := newTestCache(10)
	m.Set(ctx, "k", []byte("v"), 100*time.Millisecond)

	clk.advance(50 * time.Millisecond)
	if v, ok := m.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("expected hit at t=50ms, got ok=%v v=%q", ok, v)
	}

	clk.advance(100 * time.Millisecond)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("expected miss at t=150ms")
	}
	// expired entry must have been lazily evicted
	if m.Len() != 0 {
		t.Fatalf("expected lazy eviction, still %d entries", m.Len())
	}
}

func TestOverwriteRefreshesTTL(t *testing.T) {
	m, clk := newTestCache(10)
	m.Set(ctx, "k", []byte("old"), 100*time.Millisecond)
	clk.advance(80 * time.Millisecond)
	m.Set(ctx, "k", []byte("new"), 100*time.Millisecond)
	clk.advance(80 * time.Millisecond)

	v, ok := m.Get(ctx, "k")
	if !ok || string(v) != "new" {
		t.Fatalf("expected refreshed entry, got ok=%v v=%q", ok, v)
	}
}

func TestLRUEviction(t *testing.T) {
	m, _ := newTestCache(3)
	for i := 0; i < 3; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}

	// touch k0 so k1 is the least recently used
	if _, ok := m.Get(ctx, "k0"); !ok {
		t.Fatal("expected hit for k0")
	}

	m.Set(ctx, "k3", []byte("v"), time.Minute)

	if _, ok := m.Get(ctx, "k1"); ok {
		t.Fatal("expected k1 evicted as LRU")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, ok := m.Get(ctx, k); !ok {
			t.Fatalf("expected %s retained", k)
		}
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", m.Len())
	}
}

func TestZeroTTLIgnored(t *testing.T) {
	m, _ := newTestCache(10)
	m.Set(ctx, "k", []byte("v"), 0)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("zero TTL entries must not be stored")
	}
}
