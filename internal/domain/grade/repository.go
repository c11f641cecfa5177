package grade

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Filter narrows grade listings.
type Filter struct {
	// AcademicYear filters to one academic year when set.
	AcademicYear shared.AcademicYear

	// Semester filters to one semester when non-zero.
	Semester shared.Semester

	// Department filters to one department when set.
	Department shared.Department

	// Statuses filters to the given lifecycle statuses when non-empty.
	Statuses []Status
}

// Repository defines persistence for grade records.
//
// The uniqueness constraint on (student, course, academic year) and the
// state-conditioned update are the true conflict guards: a second writer
// racing a transition must observe ErrConcurrentModification, never silently
// overwrite.
type Repository interface {
	// Create persists a new record.
	// Returns ErrGradeAlreadyExists when the (student, course, academic year)
	// key is taken.
	Create(ctx context.Context, rec *Record) error

	// GetByID returns a record by internal ID.
	// Returns ErrGradeNotFound when absent.
	GetByID(ctx context.Context, id string) (*Record, error)

	// GetByKey returns the record for the unique
	// (student, course, academic year) key.
	// Returns ErrGradeNotFound when absent.
	GetByKey(ctx context.Context, studentID shared.UserID, courseID shared.CourseID, year shared.AcademicYear) (*Record, error)

	// UpdateFromStatus persists the record only if its stored status still
	// equals expected. Returns shared.ErrConcurrentModification when the
	// stored row has already moved on.
	UpdateFromStatus(ctx context.Context, rec *Record, expected Status) error

	// ListByStudent returns the student's records matching the filter.
	ListByStudent(ctx context.Context, studentID shared.UserID, f Filter) ([]*Record, error)

	// ListSettledByStudent returns the student's finalized and locked records,
	// optionally filtered to one academic year (empty year means all).
	ListSettledByStudent(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) ([]*Record, error)

	// ListFinalized returns finalized records for a year/semester, optionally
	// scoped to one department, for bulk locking.
	ListFinalized(ctx context.Context, year shared.AcademicYear, semester shared.Semester, department shared.Department) ([]*Record, error)
}
