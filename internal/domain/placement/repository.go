package placement

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Repository defines persistence for placement requests.
type Repository interface {
	// Create persists a request.
	// Returns ErrPlacementAlreadyExists when the (student, academic year)
	// key is taken.
	Create(ctx context.Context, r *Request) error

	// GetByID returns a request by internal ID.
	// Returns ErrPlacementNotFound when absent.
	GetByID(ctx context.Context, id string) (*Request, error)

	// GetByStudentYear returns the student's request for the academic year.
	// Returns ErrPlacementNotFound when absent.
	GetByStudentYear(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) (*Request, error)

	// UpdateFromStatus persists the request only if its stored status still
	// equals expected. Returns shared.ErrConcurrentModification when the
	// stored row has already moved on.
	UpdateFromStatus(ctx context.Context, r *Request, expected Status) error

	// ApproveWithinCapacity persists an approved request while atomically
	// holding the approved count for its department and academic year below
	// capacity, so two racing approvals cannot both take the last seat.
	// Returns shared.ErrDepartmentFull when no seat is free and
	// shared.ErrConcurrentModification when the stored row is no longer
	// submitted.
	ApproveWithinCapacity(ctx context.Context, r *Request, capacity int) error

	// CountApproved returns how many requests are approved into the
	// department for the academic year. Drives the capacity guard.
	CountApproved(ctx context.Context, department shared.Department, year shared.AcademicYear) (int, error)

	// ListByStatus returns the requests in a status for an academic year,
	// ordered by priority score descending.
	ListByStatus(ctx context.Context, year shared.AcademicYear, status Status) ([]*Request, error)
}
