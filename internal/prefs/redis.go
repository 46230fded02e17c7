package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/gridiron/internal/cache"
)

// RedisStore keeps preferences in Redis with a MaxAge TTL refreshed on write
type RedisStore struct {
	cache *cache.RedisCache
	scope Scope
}

// NewRedisStore creates a preference store on an existing cache connection
func NewRedisStore(c *cache.RedisCache, scope Scope) *RedisStore {
	return &RedisStore{cache: c, scope: scope}
}

func (s *RedisStore) redisKey(name string) string {
	return "prefs:" + s.scope.key(name)
}

// Get returns the stored value for key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.cache.Get(ctx, s.redisKey(key))
	if errors.Is(err, cache.ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value for key
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.cache.Set(ctx, s.redisKey(key), value, MaxAge); err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}
