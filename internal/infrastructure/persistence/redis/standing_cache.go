package redis

import (
	"context"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// StandingCache implements student.StandingCache using the generic Cache.
// Standings are derived from finalized grades, so a stale entry is only ever
// one recomputation behind; invalidation on finalize keeps the window short.
type StandingCache struct {
	cache *Cache
}

// NewStandingCache creates a new StandingCache.
func NewStandingCache(cache *Cache) *StandingCache {
	return &StandingCache{
		cache: cache,
	}
}

// GetStanding returns the cached standing. Returns ErrCacheMiss when absent.
func (s *StandingCache) GetStanding(ctx context.Context, studentID string) (*student.Standing, error) {
	var standing student.Standing
	if err := s.cache.Get(ctx, StandingKey(studentID), &standing); err != nil {
		return nil, err
	}
	return &standing, nil
}

// SetStanding caches the standing with a TTL.
func (s *StandingCache) SetStanding(ctx context.Context, studentID string, standing student.Standing, ttl time.Duration) error {
	return s.cache.Set(ctx, StandingKey(studentID), standing, ttl)
}

// Invalidate drops the cached standing.
func (s *StandingCache) Invalidate(ctx context.Context, studentID string) error {
	return s.cache.Delete(ctx, StandingKey(studentID))
}
