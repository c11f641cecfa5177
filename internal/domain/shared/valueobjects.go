// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier (UUID format).
type UserID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the user ID is a valid UUID.
func (u UserID) IsValid() bool {
	return uuidRegex.MatchString(string(u))
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// IsEmpty checks if the ID is empty.
func (u UserID) IsEmpty() bool {
	return u == ""
}

// CourseID represents a unique course identifier (UUID format).
type CourseID string

// IsValid checks if the course ID is a valid UUID.
func (c CourseID) IsValid() bool {
	return uuidRegex.MatchString(string(c))
}

// String returns the string representation.
func (c CourseID) String() string {
	return string(c)
}

// IsEmpty checks if the ID is empty.
func (c CourseID) IsEmpty() bool {
	return c == ""
}

// ═══════════════════════════════════════════════════════════════════════════
// Academic Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// CourseCode represents a catalog course code such as "MATH101".
type CourseCode string

var courseCodeRegex = regexp.MustCompile(`^[A-Z]{2,5}[0-9]{3}$`)

// IsValid checks if the course code matches the catalog format.
func (c CourseCode) IsValid() bool {
	return courseCodeRegex.MatchString(string(c))
}

// String returns the string representation.
func (c CourseCode) String() string {
	return string(c)
}

// Normalize returns the canonical upper-case form of the code.
func (c CourseCode) Normalize() CourseCode {
	return CourseCode(strings.ToUpper(strings.TrimSpace(string(c))))
}

// NewCourseCode creates a validated course code.
func NewCourseCode(code string) (CourseCode, error) {
	c := CourseCode(code).Normalize()
	if !c.IsValid() {
		return "", NewDomainError("course", "Validate", ErrInvalidFormat, fmt.Sprintf("invalid course code %q", code))
	}
	return c, nil
}

// AcademicYear represents an academic year in "YYYY-YYYY" form, e.g. "2025-2026".
type AcademicYear string

var academicYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

// IsValid checks the format and that the two years are consecutive.
func (y AcademicYear) IsValid() bool {
	if !academicYearRegex.MatchString(string(y)) {
		return false
	}
	first, _ := strconv.Atoi(string(y)[:4])
	second, _ := strconv.Atoi(string(y)[5:])
	return second == first+1
}

// String returns the string representation.
func (y AcademicYear) String() string {
	return string(y)
}

// NewAcademicYear creates a validated academic year.
func NewAcademicYear(s string) (AcademicYear, error) {
	y := AcademicYear(strings.TrimSpace(s))
	if !y.IsValid() {
		return "", NewDomainError("shared", "Validate", ErrInvalidFormat, fmt.Sprintf("invalid academic year %q", s))
	}
	return y, nil
}

// Semester represents a semester within an academic year (1 or 2).
type Semester int

// IsValid checks that the semester is 1 or 2.
func (s Semester) IsValid() bool {
	return s == 1 || s == 2
}

// Int returns the underlying int value.
func (s Semester) Int() int {
	return int(s)
}

// StudyYear represents the student's year of study (1 through 4).
type StudyYear int

// IsValid checks that the study year is within program bounds.
func (y StudyYear) IsValid() bool {
	return y >= 1 && y <= 4
}

// Int returns the underlying int value.
func (y StudyYear) Int() int {
	return int(y)
}

// Department represents a department name. The sentinel value DepartmentAll
// marks registration periods that apply to every department.
type Department string

// DepartmentAll is the fallback department for registration periods.
const DepartmentAll Department = "All"

// IsValid checks that the department name is non-empty and bounded.
func (d Department) IsValid() bool {
	s := strings.TrimSpace(string(d))
	return len(s) >= 2 && len(s) <= 80
}

// IsAll reports whether this is the all-departments sentinel.
func (d Department) IsAll() bool {
	return d == DepartmentAll
}

// String returns the string representation.
func (d Department) String() string {
	return string(d)
}

// Credits represents the credit weight of a course.
type Credits int

// IsValid checks that the credit weight is within catalog bounds.
func (c Credits) IsValid() bool {
	return c >= 1 && c <= 6
}

// Int returns the underlying int value.
func (c Credits) Int() int {
	return int(c)
}
