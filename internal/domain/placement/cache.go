package placement

import (
	"context"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// RankEntry is one row of the cached priority ranking.
type RankEntry struct {
	RequestID string
	StudentID shared.UserID
	Score     int
}

// RankingCache caches the submitted-request ranking per academic year, ordered
// by priority score descending. Implementations live in
// infrastructure/persistence.
type RankingCache interface {
	// GetRanking returns the cached ranking, or an error on miss.
	GetRanking(ctx context.Context, year shared.AcademicYear) ([]RankEntry, error)

	// SetRanking replaces the cached ranking with a TTL.
	SetRanking(ctx context.Context, year shared.AcademicYear, entries []RankEntry, ttl time.Duration) error

	// Invalidate drops the cached ranking for the year.
	Invalidate(ctx context.Context, year shared.AcademicYear) error
}
