package query

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/evaluation"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENDING EVALUATIONS QUERY
// The evaluations a student still owes for an academic year, with course and
// instructor detail for display.
// ══════════════════════════════════════════════════════════════════════════════

// PendingEvaluationsQuery identifies the student and academic year.
type PendingEvaluationsQuery struct {
	StudentID    shared.UserID
	AcademicYear shared.AcademicYear
}

// Validate validates the query.
func (q PendingEvaluationsQuery) Validate() error {
	if q.StudentID.IsEmpty() {
		return shared.Validationf("evaluation", "ListPending", "student_id is required")
	}
	if !q.AcademicYear.IsValid() {
		return shared.Validationf("evaluation", "ListPending", "invalid academic year %q", q.AcademicYear)
	}
	return nil
}

// PendingEvaluation is one owed evaluation.
type PendingEvaluation struct {
	CourseID       shared.CourseID
	CourseCode     shared.CourseCode
	CourseTitle    string
	InstructorID   shared.UserID
	InstructorName string
}

// PendingEvaluationsResult is the deficit view.
type PendingEvaluationsResult struct {
	Pending []PendingEvaluation

	// Required and Submitted give the completion arithmetic.
	Required  int
	Submitted int
}

// PendingEvaluationsHandler handles PendingEvaluationsQuery.
type PendingEvaluationsHandler struct {
	gradeRepo   grade.Repository
	evalRepo    evaluation.Repository
	courseRepo  course.Repository
	studentRepo student.Repository
}

// NewPendingEvaluationsHandler creates a new PendingEvaluationsHandler.
func NewPendingEvaluationsHandler(
	gradeRepo grade.Repository,
	evalRepo evaluation.Repository,
	courseRepo course.Repository,
	studentRepo student.Repository,
) *PendingEvaluationsHandler {
	return &PendingEvaluationsHandler{
		gradeRepo:   gradeRepo,
		evalRepo:    evalRepo,
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
	}
}

// Handle computes the outstanding evaluations.
func (h *PendingEvaluationsHandler) Handle(ctx context.Context, q PendingEvaluationsQuery) (*PendingEvaluationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	settled, err := h.gradeRepo.ListSettledByStudent(ctx, q.StudentID, q.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("pending_evaluations: %w", err)
	}
	required := evaluation.RequiredPairs(settled)

	submitted, err := h.evalRepo.ListByStudentYear(ctx, q.StudentID, q.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("pending_evaluations: %w", err)
	}
	missing := evaluation.Outstanding(required, submitted)

	result := &PendingEvaluationsResult{Required: len(required), Submitted: len(submitted)}
	for _, p := range missing {
		item := PendingEvaluation{CourseID: p.CourseID, InstructorID: p.InstructorID}
		if c, err := h.courseRepo.GetByID(ctx, p.CourseID); err == nil {
			item.CourseCode = c.Code
			item.CourseTitle = c.Title
		}
		if instr, err := h.studentRepo.GetByID(ctx, p.InstructorID); err == nil {
			item.InstructorName = instr.Name
		}
		result.Pending = append(result.Pending, item)
	}
	return result, nil
}
