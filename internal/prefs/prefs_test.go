package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fortuna/gridiron/internal/cache"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store unavailable")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("store unavailable")
}

func TestPageSize_Degrades(t *testing.T) {
	ctx := context.Background()

	if got := PageSize(ctx, nil, 10); got != 10 {
		t.Errorf("nil store: got %d", got)
	}
	if got := PageSize(ctx, failingStore{}, 10); got != 10 {
		t.Errorf("failing store: got %d", got)
	}

	mem := NewMemoryStore(DefaultScope)
	if got := PageSize(ctx, mem, 10); got != 10 {
		t.Errorf("unset: got %d", got)
	}

	for _, bad := range []string{"abc", "0", "-5", ""} {
		mem.Set(ctx, KeyPageSize, bad)
		if got := PageSize(ctx, mem, 10); got != 10 {
			t.Errorf("value %q: got %d", bad, got)
		}
	}

	if err := SavePageSize(ctx, mem, 25); err != nil {
		t.Fatalf("SavePageSize: %v", err)
	}
	if got := PageSize(ctx, mem, 10); got != 25 {
		t.Errorf("expected stored 25, got %d", got)
	}
}

func TestMemoryStore_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryStore(Scope{Domain: "a.example", Path: "/"})
	a.Set(ctx, KeyPageSize, "20")

	b := &MemoryStore{scope: Scope{Domain: "b.example", Path: "/"}, now: time.Now, entries: a.entries}
	if _, ok, _ := b.Get(ctx, KeyPageSize); ok {
		t.Fatalf("a value stored for one domain must not be visible to another")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(DefaultScope)
	s.now = func() time.Time { return now }

	s.Set(ctx, KeyPageSize, "15")

	now = now.Add(MaxAge - time.Hour)
	if _, ok, _ := s.Get(ctx, KeyPageSize); !ok {
		t.Fatalf("value should still be present before max age")
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := s.Get(ctx, KeyPageSize); ok {
		t.Fatalf("value should expire after max age")
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	scope := Scope{Domain: "tracker.local", Path: "/games"}

	first := NewFileStore(path, scope)
	if _, ok, err := first.Get(ctx, KeyPageSize); ok || err != nil {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	if err := first.Set(ctx, KeyPageSize, "50"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second := NewFileStore(path, scope)
	if got := PageSize(ctx, second, 10); got != 50 {
		t.Fatalf("expected 50 from the file, got %d", got)
	}

	other := NewFileStore(path, Scope{Domain: "tracker.local", Path: "/other"})
	if got := PageSize(ctx, other, 10); got != 10 {
		t.Fatalf("a different path must not see the value, got %d", got)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewFileStore(path, DefaultScope)
	if _, _, err := s.Get(ctx, KeyPageSize); err == nil {
		t.Fatalf("expected decode error")
	}
	if got := PageSize(ctx, s, 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	if err := s.Set(ctx, KeyPageSize, "30"); err != nil {
		t.Fatalf("Set should replace a corrupt file: %v", err)
	}
	if got := PageSize(ctx, s, 10); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer rc.Close()

	s := NewRedisStore(rc, Scope{Domain: "Tracker.Local", Path: "/"})
	if _, ok, err := s.Get(ctx, KeyPageSize); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := SavePageSize(ctx, s, 20); err != nil {
		t.Fatalf("SavePageSize: %v", err)
	}
	if got := PageSize(ctx, s, 10); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}

	key := "prefs:tracker.local/#pageSize"
	if ttl := mr.TTL(key); ttl != MaxAge {
		t.Fatalf("expected TTL %v on %s, got %v", MaxAge, key, ttl)
	}

	mr.FastForward(MaxAge + time.Second)
	if got := PageSize(ctx, s, 10); got != 10 {
		t.Fatalf("expected expiry to fall back to default, got %d", got)
	}
}
