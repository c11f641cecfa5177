package evaluation

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Repository defines persistence for evaluations.
type Repository interface {
	// Create persists an evaluation.
	// Returns ErrEvaluationExists when the (student, course, academic year)
	// key is taken.
	Create(ctx context.Context, e *Evaluation) error

	// ListByStudentYear returns the student's submitted evaluations for an
	// academic year.
	ListByStudentYear(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) ([]*Evaluation, error)
}
