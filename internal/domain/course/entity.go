// Package course contains the course catalog and department entities. The
// engine reads the catalog; editing it is registrar/admin tooling outside
// this core.
package course

import (
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Course is one catalog entry.
type Course struct {
	// ID - internal unique identifier (UUID in string format).
	ID shared.CourseID

	// Code - catalog code, unique, e.g. "MATH101".
	Code shared.CourseCode

	// Title - display title.
	Title string

	// Department offering the course.
	Department shared.Department

	// Credits - credit weight used for CGPA and registration totals.
	Credits shared.Credits

	// Year and Semester the course is offered in.
	Year     shared.StudyYear
	Semester shared.Semester

	// Prerequisites - catalog codes that must be passed first. Empty means
	// trivially registrable.
	Prerequisites []shared.CourseCode

	// InstructorID - the assigned instructor; the only actor allowed to
	// submit grades for the course.
	InstructorID shared.UserID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPrerequisites reports whether the course lists any prerequisites.
func (c *Course) HasPrerequisites() bool {
	return len(c.Prerequisites) > 0
}

// Validate checks catalog invariants.
func (c *Course) Validate() error {
	if !c.Code.IsValid() {
		return shared.Validationf("course", "Validate", "invalid course code %q", c.Code)
	}
	if c.Title == "" {
		return shared.Validationf("course", "Validate", "title is required")
	}
	if !c.Credits.IsValid() {
		return shared.Validationf("course", "Validate", "credits %d out of range 1-6", c.Credits)
	}
	if !c.Year.IsValid() {
		return shared.Validationf("course", "Validate", "invalid year %d", c.Year)
	}
	if !c.Semester.IsValid() {
		return shared.Validationf("course", "Validate", "invalid semester %d", c.Semester)
	}
	return nil
}

// Department is an academic department with its fixed placement capacity.
type Department struct {
	// Name - unique department name.
	Name shared.Department

	// PlacementCapacity - fixed number of freshman placement slots per
	// academic year.
	PlacementCapacity int

	CreatedAt time.Time
	UpdatedAt time.Time
}
