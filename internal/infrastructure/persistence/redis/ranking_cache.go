package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// RankingCache implements placement.RankingCache on a Redis sorted set.
// Members are "requestID|studentID" pairs scored by priority score, so the
// ranking reads back in one ZREVRANGE.
type RankingCache struct {
	cache *Cache
}

// NewRankingCache creates a new RankingCache.
func NewRankingCache(cache *Cache) *RankingCache {
	return &RankingCache{
		cache: cache,
	}
}

// GetRanking returns the cached ranking, highest score first.
// Returns ErrCacheMiss when the year has no cached ranking.
func (r *RankingCache) GetRanking(ctx context.Context, year shared.AcademicYear) ([]placement.RankEntry, error) {
	key := RankingKey(year.String())

	members, err := r.cache.Client().ZRevRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrCacheMiss
	}

	entries := make([]placement.RankEntry, 0, len(members))
	for _, m := range members {
		member, ok := m.Member.(string)
		if !ok {
			continue
		}
		requestID, studentID, found := strings.Cut(member, "|")
		if !found {
			continue
		}
		entries = append(entries, placement.RankEntry{
			RequestID: requestID,
			StudentID: shared.UserID(studentID),
			Score:     int(m.Score),
		})
	}

	return entries, nil
}

// SetRanking replaces the cached ranking with a TTL. The delete, the adds and
// the expire run in one transaction pipeline so readers never see a half
// rebuilt set.
func (r *RankingCache) SetRanking(ctx context.Context, year shared.AcademicYear, entries []placement.RankEntry, ttl time.Duration) error {
	if ttl < 0 {
		return ErrCacheInvalidTTL
	}

	key := RankingKey(year.String())

	pipe := r.cache.Client().TxPipeline()
	pipe.Del(ctx, key)

	if len(entries) > 0 {
		members := make([]redis.Z, len(entries))
		for i, e := range entries {
			members[i] = redis.Z{
				Score:  float64(e.Score),
				Member: e.RequestID + "|" + e.StudentID.String(),
			}
		}
		pipe.ZAdd(ctx, key, members...)
		pipe.Expire(ctx, key, ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached ranking for the year.
func (r *RankingCache) Invalidate(ctx context.Context, year shared.AcademicYear) error {
	return r.cache.Delete(ctx, RankingKey(year.String()))
}
