package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/stats"
)

// StatsTTL bounds how long a cached summary is served
const StatsTTL = 30 * time.Second

const statsCacheKey = "stats:summary"

// SummaryRepository computes the aggregate from storage
type SummaryRepository interface {
	Summary(ctx context.Context) (stats.Summary, error)
}

// StatsCache is the part of cache.RedisCache the stats service uses
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StatsService handles statistics-related business logic
type StatsService struct {
	repo   SummaryRepository
	cache  StatsCache
	ttl    time.Duration
	logger *log.Logger
}

// NewStatsService creates a new stats service. A nil cache disables caching.
func NewStatsService(repo SummaryRepository, c StatsCache) *StatsService {
	return &StatsService{
		repo:   repo,
		cache:  c,
		ttl:    StatsTTL,
		logger: log.Default(),
	}
}

// Summary returns the aggregate over every stored game, from the cache when
// a fresh copy is there
func (s *StatsService) Summary(ctx context.Context) (stats.Summary, error) {
	if s.cache != nil {
		var cached stats.Summary
		err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Printf("⚠️  stats cache read failed: %v", err)
		}
	}

	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("computing stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, summary, s.ttl); err != nil {
			s.logger.Printf("⚠️  stats cache write failed: %v", err)
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary
func (s *StatsService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, statsCacheKey)
}
