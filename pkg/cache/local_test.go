package cache

import (
	"context"
	"testing"
	"time"
)

func newLocal(t *testing.T) Cache {
	t.Helper()
	c, err := New(Config{Backend: "local"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLocalCacheSetGet(t *testing.T) {
	c := newLocal(t)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("unexpected hit for missing key")
	}

	if err := c.Set(ctx, "phrase:u1:v1:p1", "hello there", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(ctx, "phrase:u1:v1:p1")
	if !ok || got != "hello there" {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestLocalCacheExpiration(t *testing.T) {
	c := newLocal(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
}

func TestLocalCacheDeleteAndClear(t *testing.T) {
	c := newLocal(t)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("deleted key still present")
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Error("untouched key lost")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("cleared key still present")
	}
}

func TestFactoryRejectsUnknownBackend(t *testing.T) {
	if _, err := New(Config{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
