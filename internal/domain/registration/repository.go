package registration

import (
	"context"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Repository defines persistence for registrations.
type Repository interface {
	// Create persists a registration.
	// Returns ErrAlreadyRegistered when the (student, year, semester) key is
	// taken, and shared.ErrAlreadyExists on a duplicate registration number.
	Create(ctx context.Context, reg *Registration) error

	// GetByID returns a registration by internal ID.
	// Returns ErrRegistrationNotFound when absent.
	GetByID(ctx context.Context, id string) (*Registration, error)

	// GetForSemester returns the student's registration for
	// (academic year, semester), or ErrRegistrationNotFound.
	GetForSemester(ctx context.Context, studentID shared.UserID, year shared.AcademicYear, semester shared.Semester) (*Registration, error)

	// NextSequence atomically increments and returns the running sequence for
	// the (academic year, year, semester) bucket. Safe under concurrent
	// registrations.
	NextSequence(ctx context.Context, year shared.AcademicYear, studyYear shared.StudyYear, semester shared.Semester) (int, error)
}

// PeriodRepository defines persistence for registration periods.
type PeriodRepository interface {
	// Create persists a period. Returns shared.ErrAlreadyExists when an
	// active period already exists for the same key.
	Create(ctx context.Context, p *Period) error

	// GetActive returns the active period for the exact key
	// (type, academic year, semester, department), or shared.ErrNotFound.
	// Callers resolve the "All" fallback themselves.
	GetActive(ctx context.Context, t PeriodType, year shared.AcademicYear, semester shared.Semester, department shared.Department) (*Period, error)

	// Update persists period changes.
	Update(ctx context.Context, p *Period) error
}

// ResolveOpenPeriod returns the open period for the key, preferring a
// department-specific window and falling back to "All". Returns
// ErrPeriodNotOpen when neither window is currently open.
func ResolveOpenPeriod(ctx context.Context, repo PeriodRepository, t PeriodType, year shared.AcademicYear, semester shared.Semester, department shared.Department, now time.Time) (*Period, error) {
	if p, err := repo.GetActive(ctx, t, year, semester, department); err == nil {
		if p.IsOpen(now) {
			return p, nil
		}
		return nil, shared.ErrPeriodNotOpen
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	p, err := repo.GetActive(ctx, t, year, semester, shared.DepartmentAll)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrPeriodNotOpen
		}
		return nil, err
	}
	if !p.IsOpen(now) {
		return nil, shared.ErrPeriodNotOpen
	}
	return p, nil
}
