package query

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPEAT COURSES QUERY
// ══════════════════════════════════════════════════════════════════════════════

// RepeatCoursesQuery identifies the student.
type RepeatCoursesQuery struct {
	StudentID shared.UserID
}

// RepeatCourse is one outstanding mandatory repeat.
type RepeatCourse struct {
	CourseID   shared.CourseID
	CourseCode shared.CourseCode
}

// RepeatCoursesResult is the outstanding repeat set.
type RepeatCoursesResult struct {
	Courses []RepeatCourse
}

// RepeatCoursesHandler handles RepeatCoursesQuery.
type RepeatCoursesHandler struct {
	gradeRepo grade.Repository
}

// NewRepeatCoursesHandler creates a new RepeatCoursesHandler.
func NewRepeatCoursesHandler(gradeRepo grade.Repository) *RepeatCoursesHandler {
	return &RepeatCoursesHandler{gradeRepo: gradeRepo}
}

// Handle resolves the student's outstanding repeat obligations across all
// settled records. A later pass supersedes the failed attempt, so only
// courses still failed on the latest attempt appear.
func (h *RepeatCoursesHandler) Handle(ctx context.Context, q RepeatCoursesQuery) (*RepeatCoursesResult, error) {
	if q.StudentID.IsEmpty() {
		return nil, shared.Validationf("registration", "ListRepeats", "student_id is required")
	}

	settled, err := h.gradeRepo.ListSettledByStudent(ctx, q.StudentID, "")
	if err != nil {
		return nil, fmt.Errorf("repeat_courses: %w", err)
	}

	result := &RepeatCoursesResult{}
	for _, o := range registration.RepeatObligations(settled) {
		result.Courses = append(result.Courses, RepeatCourse{
			CourseID:   o.CourseID,
			CourseCode: o.CourseCode,
		})
	}

	return result, nil
}
