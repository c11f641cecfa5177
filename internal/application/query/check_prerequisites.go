package query

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREREQUISITE CHECK QUERY
// ══════════════════════════════════════════════════════════════════════════════

// PrerequisitesQuery asks whether one student may take one course.
type PrerequisitesQuery struct {
	StudentID shared.UserID
	CourseID  shared.CourseID
}

// Validate validates the query.
func (q PrerequisitesQuery) Validate() error {
	if q.StudentID.IsEmpty() {
		return shared.Validationf("registration", "CheckPrerequisites", "student_id is required")
	}
	if q.CourseID.IsEmpty() {
		return shared.Validationf("registration", "CheckPrerequisites", "course_id is required")
	}
	return nil
}

// PrerequisitesResult reports eligibility with the missing codes.
type PrerequisitesResult struct {
	Eligible bool
	Missing  []shared.CourseCode
}

// PrerequisitesHandler handles PrerequisitesQuery.
type PrerequisitesHandler struct {
	courseRepo course.Repository
	gradeRepo  grade.Repository
}

// NewPrerequisitesHandler creates a new PrerequisitesHandler.
func NewPrerequisitesHandler(courseRepo course.Repository, gradeRepo grade.Repository) *PrerequisitesHandler {
	return &PrerequisitesHandler{courseRepo: courseRepo, gradeRepo: gradeRepo}
}

// Handle checks the course's prerequisites against the student's settled,
// passing grades.
func (h *PrerequisitesHandler) Handle(ctx context.Context, q PrerequisitesQuery) (*PrerequisitesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	c, err := h.courseRepo.GetByID(ctx, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check_prerequisites: %w", err)
	}

	settled, err := h.gradeRepo.ListSettledByStudent(ctx, q.StudentID, "")
	if err != nil {
		return nil, fmt.Errorf("check_prerequisites: %w", err)
	}

	check := registration.CheckPrerequisites(c, registration.PassedCodes(settled))
	return &PrerequisitesResult{Eligible: check.Eligible, Missing: check.Missing}, nil
}
