package registration

import (
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// PeriodType distinguishes the kinds of registration windows.
type PeriodType string

const (
	// PeriodSignup - account signup window.
	PeriodSignup PeriodType = "signup"
	// PeriodCourseRegistration - semester course registration window.
	PeriodCourseRegistration PeriodType = "courseRegistration"
)

// IsValid checks that the period type is known.
func (t PeriodType) IsValid() bool {
	return t == PeriodSignup || t == PeriodCourseRegistration
}

// Period is a registrar-defined time window during which a registration type
// is permitted. Keyed by (type, academic year, semester, department); a
// department of "All" is the fallback when no department-specific period
// exists for the same key. At most one active period per key.
type Period struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	Type         PeriodType
	AcademicYear shared.AcademicYear
	Semester     shared.Semester
	Department   shared.Department

	StartDate time.Time
	EndDate   time.Time

	// Active - registrar can deactivate a window without deleting it.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the window is active and now falls within
// [StartDate, EndDate].
func (p *Period) IsOpen(now time.Time) bool {
	if p == nil || !p.Active {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Validate checks window invariants.
func (p *Period) Validate() error {
	if !p.Type.IsValid() {
		return shared.Validationf("registration", "ValidatePeriod", "invalid period type %q", p.Type)
	}
	if !p.AcademicYear.IsValid() {
		return shared.Validationf("registration", "ValidatePeriod", "invalid academic year %q", p.AcademicYear)
	}
	if !p.Semester.IsValid() {
		return shared.Validationf("registration", "ValidatePeriod", "invalid semester %d", p.Semester)
	}
	if !p.EndDate.After(p.StartDate) {
		return shared.Validationf("registration", "ValidatePeriod", "end date must be after start date")
	}
	return nil
}
