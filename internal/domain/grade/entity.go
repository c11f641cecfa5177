// Package grade contains the grade record lifecycle: component marks, the
// derived letter grade, and the submit/approve/finalize/lock state machine.
package grade

import (
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Component mark bounds.
const (
	MaxMidtermMark    = 30
	MaxContinuousMark = 30
	MaxFinalExamMark  = 40
)

// Marks holds the three raw component marks of a grade record.
type Marks struct {
	// Midterm mark, 0-30.
	Midterm int

	// Continuous assessment mark, 0-30.
	Continuous int

	// Final exam mark, 0-40.
	FinalExam int
}

// Validate checks each component against its bounds and names the offending
// component in the returned error.
func (m Marks) Validate() error {
	if m.Midterm < 0 || m.Midterm > MaxMidtermMark {
		return shared.Validationf("grade", "Submit", "midterm mark %d out of range 0-%d", m.Midterm, MaxMidtermMark)
	}
	if m.Continuous < 0 || m.Continuous > MaxContinuousMark {
		return shared.Validationf("grade", "Submit", "continuous mark %d out of range 0-%d", m.Continuous, MaxContinuousMark)
	}
	if m.FinalExam < 0 || m.FinalExam > MaxFinalExamMark {
		return shared.Validationf("grade", "Submit", "final exam mark %d out of range 0-%d", m.FinalExam, MaxFinalExamMark)
	}
	return nil
}

// Total returns the sum of the component marks.
func (m Marks) Total() int {
	return m.Midterm + m.Continuous + m.FinalExam
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS ENUM
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle status of a grade record.
type Status string

const (
	// StatusDraft - created, editable by the instructor.
	StatusDraft Status = "draft"
	// StatusSubmitted - awaiting department head review.
	StatusSubmitted Status = "submitted"
	// StatusApproved - approved by the department head, awaiting the registrar.
	StatusApproved Status = "approved"
	// StatusRejected - sent back to the instructor; editable again.
	StatusRejected Status = "rejected"
	// StatusFinalized - finalized by the registrar; counts toward standing.
	StatusFinalized Status = "finalized"
	// StatusLocked - terminal. Never leaves this state.
	StatusLocked Status = "locked"
)

// IsValid checks that the status is one of the lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusFinalized, StatusLocked:
		return true
	default:
		return false
	}
}

// IsEditable reports whether marks may still be changed in this state.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusRejected
}

// IsSettled reports whether the grade participates in standing, prerequisite
// and repeat computations.
func (s Status) IsSettled() bool {
	return s == StatusFinalized || s == StatusLocked
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: GRADE RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is one student-course-term grade. Unique per
// (StudentID, CourseID, AcademicYear); created on first submission and never
// physically deleted, only status-transitioned.
type Record struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	// StudentID - the graded student.
	StudentID shared.UserID

	// CourseID and CourseCode - the graded course.
	CourseID   shared.CourseID
	CourseCode shared.CourseCode

	// InstructorID - the instructor assigned to the course; the only actor
	// allowed to submit.
	InstructorID shared.UserID

	// Department - the course's department, used for review routing and
	// bulk locking.
	Department shared.Department

	// AcademicYear and Semester the grade belongs to.
	AcademicYear shared.AcademicYear
	Semester     shared.Semester

	// Marks - raw component marks.
	Marks Marks

	// TotalMark, Letter, GradePoints - derived from Marks, recomputed on
	// every mutation, never stored independent of their inputs.
	TotalMark   int
	Letter      LetterGrade
	GradePoints float64

	// RepeatRequired - set on submit when the letter grade is failing.
	RepeatRequired bool

	// Status - lifecycle status.
	Status Status

	// RejectionReason - set when the department head rejects.
	RejectionReason string

	// Per-role free-text comments.
	InstructorComment string
	HeadComment       string
	RegistrarComment  string

	// Actor-stamped transition timestamps.
	SubmittedAt *time.Time
	SubmittedBy shared.UserID
	ApprovedAt  *time.Time
	ApprovedBy  shared.UserID
	FinalizedAt *time.Time
	FinalizedBy shared.UserID
	LockedAt    *time.Time
	LockedBy    shared.UserID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecordParams contains the parameters for creating a new grade record.
type NewRecordParams struct {
	ID           string
	StudentID    shared.UserID
	CourseID     shared.CourseID
	CourseCode   shared.CourseCode
	InstructorID shared.UserID
	Department   shared.Department
	AcademicYear shared.AcademicYear
	Semester     shared.Semester
	Now          time.Time
}

// NewRecord creates a draft grade record with validation.
func NewRecord(p NewRecordParams) (*Record, error) {
	if p.ID == "" {
		return nil, shared.Validationf("grade", "Create", "record id is required")
	}
	if p.StudentID.IsEmpty() {
		return nil, shared.Validationf("grade", "Create", "student id is required")
	}
	if p.CourseID.IsEmpty() {
		return nil, shared.Validationf("grade", "Create", "course id is required")
	}
	if !p.AcademicYear.IsValid() {
		return nil, shared.Validationf("grade", "Create", "invalid academic year %q", p.AcademicYear)
	}
	if !p.Semester.IsValid() {
		return nil, shared.Validationf("grade", "Create", "invalid semester %d", p.Semester)
	}

	now := p.Now.UTC()
	return &Record{
		ID:           p.ID,
		StudentID:    p.StudentID,
		CourseID:     p.CourseID,
		CourseCode:   p.CourseCode,
		InstructorID: p.InstructorID,
		Department:   p.Department,
		AcademicYear: p.AcademicYear,
		Semester:     p.Semester,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// conflict builds the ConflictError for a transition from the wrong state.
func (r *Record) conflict(op string) error {
	return shared.Conflictf("grade", op, "cannot %s grade in status %q", op, r.Status)
}

// recompute derives TotalMark, Letter, GradePoints and RepeatRequired from
// the current marks. Called on every mark mutation.
func (r *Record) recompute() {
	r.TotalMark = r.Marks.Total()
	r.Letter, r.GradePoints = Grade(r.TotalMark)
	r.RepeatRequired = r.Letter.IsFailing()
}

// Submit records the component marks and moves the record to submitted.
// Allowed from draft and rejected only.
func (r *Record) Submit(marks Marks, comment string, by shared.UserID, at time.Time) error {
	if !r.Status.IsEditable() {
		return r.conflict("submit")
	}
	if err := marks.Validate(); err != nil {
		return err
	}

	r.Marks = marks
	r.recompute()
	r.InstructorComment = comment
	r.Status = StatusSubmitted
	t := at.UTC()
	r.SubmittedAt = &t
	r.SubmittedBy = by
	r.UpdatedAt = t
	return nil
}

// Approve moves the record from submitted to approved.
func (r *Record) Approve(comment string, by shared.UserID, at time.Time) error {
	if r.Status != StatusSubmitted {
		return r.conflict("approve")
	}

	r.Status = StatusApproved
	r.HeadComment = comment
	t := at.UTC()
	r.ApprovedAt = &t
	r.ApprovedBy = by
	r.UpdatedAt = t
	return nil
}

// Reject moves the record from submitted back to rejected, storing the
// reason. The instructor may then resubmit.
func (r *Record) Reject(reason string, by shared.UserID, at time.Time) error {
	if r.Status != StatusSubmitted {
		return r.conflict("reject")
	}
	if reason == "" {
		return shared.Validationf("grade", "Reject", "rejection reason is required")
	}

	r.Status = StatusRejected
	r.RejectionReason = reason
	r.UpdatedAt = at.UTC()
	return nil
}

// Finalize moves the record from approved to finalized. From this point the
// grade counts toward academic standing.
func (r *Record) Finalize(comment string, by shared.UserID, at time.Time) error {
	if r.Status != StatusApproved {
		return r.conflict("finalize")
	}

	r.Status = StatusFinalized
	r.RegistrarComment = comment
	t := at.UTC()
	r.FinalizedAt = &t
	r.FinalizedBy = by
	r.UpdatedAt = t
	return nil
}

// Lock moves the record from finalized to locked. Irreversible.
func (r *Record) Lock(by shared.UserID, at time.Time) error {
	if r.Status == StatusLocked {
		return shared.NewDomainError("grade", "Lock", shared.ErrRecordLocked, "grade record already locked")
	}
	if r.Status != StatusFinalized {
		return r.conflict("lock")
	}

	r.Status = StatusLocked
	t := at.UTC()
	r.LockedAt = &t
	r.LockedBy = by
	r.UpdatedAt = t
	return nil
}

// String returns a compact representation for logging.
func (r *Record) String() string {
	return fmt.Sprintf("Grade{ID: %s, Student: %s, Course: %s, Year: %s, Total: %d, Letter: %s, Status: %s}",
		r.ID, r.StudentID, r.CourseCode, r.AcademicYear, r.TotalMark, r.Letter, r.Status)
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
