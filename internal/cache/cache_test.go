package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"
)

type payload struct {
	ID   string `json:"id"`
	Cost float64 `json:"cost"`
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q %v %v", got, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("entry should be expired at exactly ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed on read, len=%d", c.Len())
	}
}

func TestMemoryCache_CustomTTLAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	c := NewMemory(0)
	c.now = func() time.Time { return now }
	if c.ttl != DefaultTTL {
		t.Fatalf("default ttl = %v", c.ttl)
	}

	_ = c.Set(ctx, "short", []byte("a"), time.Second)
	_ = c.Set(ctx, "long", []byte("b"), 0)
	now = now.Add(2 * time.Second)

	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Fatalf("short entry should be gone")
	}
	if _, ok, _ := c.Get(ctx, "long"); !ok {
		t.Fatalf("long entry should survive")
	}
	_ = c.Delete(ctx, "long")
	if _, ok, _ := c.Get(ctx, "long"); ok {
		t.Fatalf("deleted entry still present")
	}
}

func TestMemoryCache_SweepDropsUnreadExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Hour)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "script:a", []byte("a"), 0)
	_ = c.Set(ctx, "script:b", []byte("b"), 0)
	_ = c.Set(ctx, "script:long", []byte("c"), 3*time.Hour)

	if n := c.Sweep(now.Add(30 * time.Minute)); n != 0 || c.Len() != 3 {
		t.Fatalf("early sweep removed %d, len=%d", n, c.Len())
	}
	if n := c.Sweep(now.Add(time.Hour)); n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Fatalf("len=%d, want 1", c.Len())
	}
}

func TestMemoryCache_SetSweepsPeriodically(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		_ = c.Set(ctx, "gen:"+strconv.Itoa(i), []byte("x"), 0)
	}
	now = now.Add(2 * time.Minute)
	_ = c.Set(ctx, "fresh", []byte("y"), 0)

	if c.Len() != 1 {
		t.Fatalf("len=%d, want only the fresh entry", c.Len())
	}
}

func TestMemoryCache_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("cache aliased caller buffer: %q", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	if _, ok, err := GetJSON[payload](ctx, c, "missing"); ok || err != nil {
		t.Fatalf("miss should be ok=false err=nil, got %v %v", ok, err)
	}
	if err := SetJSON(ctx, c, "p", payload{ID: "abc", Cost: 0.0012}, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	p, ok, err := GetJSON[payload](ctx, c, "p")
	if err != nil || !ok || p.ID != "abc" || p.Cost != 0.0012 {
		t.Fatalf("GetJSON = %+v %v %v", p, ok, err)
	}

	_ = c.Set(ctx, "bad", []byte("{"), 0)
	if _, ok, err := GetJSON[payload](ctx, c, "bad"); ok || err == nil {
		t.Fatalf("corrupt entry should error")
	}
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("expected *MemoryCache, got %T", c)
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "://nope", 0); err == nil {
		t.Fatalf("expected parse error")
	}
}

// Runs only against a live server, e.g. REDIS_URL=redis://localhost:6379/0.
func TestRedisCache_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(ctx, "test:missing"); ok || err != nil {
		t.Fatalf("miss = %v %v", ok, err)
	}
	if err := c.Set(ctx, "test:k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "test:k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q %v %v", got, ok, err)
	}
	_ = c.Delete(ctx, "test:k")
}
