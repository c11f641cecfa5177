package query

import (
	"context"
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLACEMENT RANKING QUERY
// The submitted requests for an academic year in priority-score order, as
// reviewers see them. Backed by a sorted-set cache; falls back to the
// repository on a miss.
// ══════════════════════════════════════════════════════════════════════════════

// rankingCacheTTL bounds staleness of the cached ranking.
const rankingCacheTTL = 5 * time.Minute

// PlacementRankingQuery identifies the academic year.
type PlacementRankingQuery struct {
	AcademicYear shared.AcademicYear

	// Limit caps the number of returned rows; 0 returns all.
	Limit int
}

// Validate validates the query.
func (q PlacementRankingQuery) Validate() error {
	if !q.AcademicYear.IsValid() {
		return shared.Validationf("placement", "Ranking", "invalid academic year %q", q.AcademicYear)
	}
	if q.Limit < 0 {
		return shared.Validationf("placement", "Ranking", "limit must be non-negative")
	}
	return nil
}

// PlacementRankingResult is the ranked view.
type PlacementRankingResult struct {
	Entries   []placement.RankEntry
	FromCache bool
}

// PlacementRankingHandler handles PlacementRankingQuery.
type PlacementRankingHandler struct {
	placementRepo placement.Repository
	cache         placement.RankingCache
	log           *logger.Logger
}

// NewPlacementRankingHandler creates a new PlacementRankingHandler.
// cache may be nil when Redis is disabled.
func NewPlacementRankingHandler(placementRepo placement.Repository, cache placement.RankingCache, log *logger.Logger) *PlacementRankingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &PlacementRankingHandler{placementRepo: placementRepo, cache: cache, log: log}
}

// Handle returns the ranking, cache-first.
func (h *PlacementRankingHandler) Handle(ctx context.Context, q PlacementRankingQuery) (*PlacementRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if entries, err := h.cache.GetRanking(ctx, q.AcademicYear); err == nil {
			return &PlacementRankingResult{Entries: clip(entries, q.Limit), FromCache: true}, nil
		}
	}

	submitted, err := h.placementRepo.ListByStatus(ctx, q.AcademicYear, placement.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("placement_ranking: %w", err)
	}

	entries := make([]placement.RankEntry, 0, len(submitted))
	for _, r := range submitted {
		entries = append(entries, placement.RankEntry{
			RequestID: r.ID,
			StudentID: r.StudentID,
			Score:     r.Score,
		})
	}

	if h.cache != nil {
		if err := h.cache.SetRanking(ctx, q.AcademicYear, entries, rankingCacheTTL); err != nil {
			h.log.Warn("placement ranking cache refresh failed",
				logger.String("academic_year", q.AcademicYear.String()),
				logger.Err(err))
		}
	}

	return &PlacementRankingResult{Entries: clip(entries, q.Limit)}, nil
}

// clip bounds the entry list to the limit.
func clip(entries []placement.RankEntry, limit int) []placement.RankEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
