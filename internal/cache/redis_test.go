package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { rc.Close() })
	return rc, mr
}

func TestRedisCache_JSONRoundTrip(t *testing.T) {
	rc, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Wins int `json:"wins"`
	}
	if err := rc.SetJSON(ctx, "k", payload{Wins: 3}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var got payload
	if err := rc.GetJSON(ctx, "k", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.Wins != 3 {
		t.Fatalf("expected 3, got %d", got.Wins)
	}
}

func TestRedisCache_MissAndExpiry(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := rc.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}

	if err := rc.Set(ctx, "short", "v", time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if _, err := rc.Get(ctx, "short"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	rc, _ := newTestCache(t)
	ctx := context.Background()

	rc.Set(ctx, "a", "1", 0)
	rc.Set(ctx, "b", "2", 0)
	if err := rc.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := rc.Get(ctx, "a"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected a deleted, got %v", err)
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache("not a url"); err == nil {
		t.Fatalf("expected an error for an invalid url")
	}
}
