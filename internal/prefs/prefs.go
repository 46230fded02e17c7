// Package prefs persists small per-user preferences (currently the page size)
// in a domain- and path-scoped store with a long expiry, the way a browser
// front-end would keep them in a cookie.
package prefs

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// MaxAge is how long a stored preference survives without being rewritten
const MaxAge = 365 * 24 * time.Hour

// KeyPageSize is the only preference the tracker stores today
const KeyPageSize = "pageSize"

// Store reads and writes preference values. Get reports false for a
// missing or expired key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Scope restricts preferences to one site and path, like cookie attributes
type Scope struct {
	Domain string
	Path   string
}

// DefaultScope is used when a caller does not care
var DefaultScope = Scope{Domain: "localhost", Path: "/"}

func (s Scope) key(name string) string {
	domain := strings.ToLower(strings.TrimSpace(s.Domain))
	if domain == "" {
		domain = DefaultScope.Domain
	}
	path := strings.TrimSpace(s.Path)
	if path == "" {
		path = DefaultScope.Path
	}
	return domain + path + "#" + name
}

// PageSize reads the stored page size, falling back to def when the store is
// unavailable, unset or holds something that is not a positive integer.
func PageSize(ctx context.Context, store Store, def int) int {
	if store == nil {
		return def
	}
	v, ok, err := store.Get(ctx, KeyPageSize)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// SavePageSize stores the page size. A nil store is a no-op.
func SavePageSize(ctx context.Context, store Store, n int) error {
	if store == nil {
		return nil
	}
	return store.Set(ctx, KeyPageSize, strconv.Itoa(n))
}
