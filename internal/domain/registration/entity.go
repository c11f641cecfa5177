// Package registration contains semester registrations, registration periods,
// and the prerequisite/repeat resolver that decides what a student may
// register for.
package registration

import (
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// GraceWindow is how long a registration stays editable after creation,
// provided no grade exists against it yet.
const GraceWindow = 7 * 24 * time.Hour

// Item is one course line on a registration.
type Item struct {
	CourseID   shared.CourseID
	CourseCode shared.CourseCode
	Title      string
	Credits    shared.Credits

	// IsRepeat marks a mandatory repeat of a previously failed course.
	IsRepeat bool
}

// Registration is one student's course registration for a semester. Unique
// per (student, year, semester).
type Registration struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	// Number - generated unique registration number, e.g.
	// "REG-2025-2026-Y2S1-0042".
	Number string

	// StudentID - the registering student.
	StudentID shared.UserID

	// AcademicYear, Year, Semester the registration belongs to.
	AcademicYear shared.AcademicYear
	Year         shared.StudyYear
	Semester     shared.Semester

	// Items - ordered course line items.
	Items []Item

	// TotalCredits - derived sum over Items, never supplied by the caller.
	TotalCredits int

	CreatedAt time.Time
}

// NewRegistrationParams contains the parameters for creating a registration.
type NewRegistrationParams struct {
	ID           string
	StudentID    shared.UserID
	AcademicYear shared.AcademicYear
	Year         shared.StudyYear
	Semester     shared.Semester
	Items        []Item
	Sequence     int
	Now          time.Time
}

// NewRegistration builds a registration with its derived totals and number.
func NewRegistration(p NewRegistrationParams) (*Registration, error) {
	if p.ID == "" {
		return nil, shared.Validationf("registration", "Create", "registration id is required")
	}
	if p.StudentID.IsEmpty() {
		return nil, shared.Validationf("registration", "Create", "student id is required")
	}
	if !p.AcademicYear.IsValid() {
		return nil, shared.Validationf("registration", "Create", "invalid academic year %q", p.AcademicYear)
	}
	if !p.Year.IsValid() || !p.Semester.IsValid() {
		return nil, shared.Validationf("registration", "Create", "invalid year/semester %d/%d", p.Year, p.Semester)
	}
	if len(p.Items) == 0 {
		return nil, shared.Validationf("registration", "Create", "at least one course is required")
	}
	if p.Sequence <= 0 {
		return nil, shared.Validationf("registration", "Create", "sequence must be positive")
	}

	reg := &Registration{
		ID:           p.ID,
		StudentID:    p.StudentID,
		AcademicYear: p.AcademicYear,
		Year:         p.Year,
		Semester:     p.Semester,
		Items:        p.Items,
		CreatedAt:    p.Now.UTC(),
	}
	reg.TotalCredits = reg.computeTotalCredits()
	reg.Number = FormatNumber(reg.IsRepeatOnly(), p.AcademicYear, p.Year, p.Semester, p.Sequence)
	return reg, nil
}

// computeTotalCredits sums the item credit weights.
func (r *Registration) computeTotalCredits() int {
	total := 0
	for _, it := range r.Items {
		total += it.Credits.Int()
	}
	return total
}

// IsRepeatOnly reports whether every line item is a repeat obligation.
func (r *Registration) IsRepeatOnly() bool {
	for _, it := range r.Items {
		if !it.IsRepeat {
			return false
		}
	}
	return len(r.Items) > 0
}

// IsMutable reports whether the registration may still be edited: within the
// grace window and before any grade exists against it.
func (r *Registration) IsMutable(now time.Time, hasGrades bool) bool {
	if hasGrades {
		return false
	}
	return now.Sub(r.CreatedAt) < GraceWindow
}

// CourseCodes returns the registered catalog codes in order.
func (r *Registration) CourseCodes() []shared.CourseCode {
	codes := make([]shared.CourseCode, len(r.Items))
	for i, it := range r.Items {
		codes[i] = it.CourseCode
	}
	return codes
}

// FormatNumber renders the registration number:
// {REG|REP}-{academicYear}-Y{year}S{semester}-{sequence:04d}.
// REP marks an all-repeat registration.
func FormatNumber(repeatOnly bool, year shared.AcademicYear, y shared.StudyYear, s shared.Semester, seq int) string {
	prefix := "REG"
	if repeatOnly {
		prefix = "REP"
	}
	return fmt.Sprintf("%s-%s-Y%dS%d-%04d", prefix, year, y.Int(), s.Int(), seq)
}
