package query

import (
	"context"
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC STANDING QUERY
// Cache-first read of the derived standing. The cache is refreshed on every
// recomputation, so a hit is at most one TTL stale.
// ══════════════════════════════════════════════════════════════════════════════

// standingCacheTTL bounds how long a repo-sourced standing stays cached.
const standingCacheTTL = 15 * time.Minute

// AcademicStandingQuery identifies the student.
type AcademicStandingQuery struct {
	StudentID shared.UserID
}

// AcademicStandingResult is the standing view.
type AcademicStandingResult struct {
	Standing      student.Standing
	AccountStatus student.AccountStatus

	// FromCache - true when the cache served the standing.
	FromCache bool
}

// AcademicStandingHandler handles AcademicStandingQuery.
type AcademicStandingHandler struct {
	studentRepo student.Repository
	cache       student.StandingCache
	log         *logger.Logger
}

// NewAcademicStandingHandler creates a new AcademicStandingHandler.
// cache may be nil when Redis is disabled.
func NewAcademicStandingHandler(studentRepo student.Repository, cache student.StandingCache, log *logger.Logger) *AcademicStandingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AcademicStandingHandler{studentRepo: studentRepo, cache: cache, log: log}
}

// Handle returns the standing, cache-first.
func (h *AcademicStandingHandler) Handle(ctx context.Context, q AcademicStandingQuery) (*AcademicStandingResult, error) {
	if q.StudentID.IsEmpty() {
		return nil, shared.Validationf("standing", "Get", "student_id is required")
	}

	if h.cache != nil {
		if s, err := h.cache.GetStanding(ctx, q.StudentID.String()); err == nil {
			// Account status is not cached; the standing alone answers most
			// callers, but the full view still needs the row.
			stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
			if err != nil {
				return nil, fmt.Errorf("get_standing: %w", err)
			}
			return &AcademicStandingResult{Standing: *s, AccountStatus: stud.Status, FromCache: true}, nil
		}
	}

	stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_standing: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.SetStanding(ctx, q.StudentID.String(), stud.Standing, standingCacheTTL); err != nil {
			h.log.Warn("standing cache refresh failed",
				logger.String("student_id", q.StudentID.String()),
				logger.Err(err))
		}
	}

	return &AcademicStandingResult{Standing: stud.Standing, AccountStatus: stud.Status}, nil
}
