// Package placement contains freshman department-placement requests: the
// priority score function, the request state machine, and capacity-aware
// review.
package placement

import (
	"fmt"
	"math"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// MinCGPA is the floor below which a freshman may not request placement.
const MinCGPA = 1.5

// ══════════════════════════════════════════════════════════════════════════════
// STATUS ENUM
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle status of a placement request.
type Status string

const (
	// StatusDraft - editable by the student.
	StatusDraft Status = "draft"
	// StatusSubmitted - awaiting review; the only reviewable state.
	StatusSubmitted Status = "submitted"
	// StatusApproved - approved into a department. Terminal.
	StatusApproved Status = "approved"
	// StatusRejected - rejected with a reason. Terminal.
	StatusRejected Status = "rejected"
)

// IsValid checks that the status is one of the lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// PRIORITY SCORE
// ══════════════════════════════════════════════════════════════════════════════

// PriorityScore is the deterministic ranking function: a capped CGPA
// contribution plus credit-tier and statement-length bonuses, rounded to the
// nearest integer and clamped to [0, 100]. Never hand-edited.
func PriorityScore(cgpa float64, totalCredits int, statementLen int) int {
	cgpaPart := 70 * (cgpa / 4.0)
	if cgpaPart > 70 {
		cgpaPart = 70
	}
	if cgpaPart < 0 {
		cgpaPart = 0
	}

	var creditBonus float64
	switch {
	case totalCredits >= 30:
		creditBonus = 20
	case totalCredits >= 24:
		creditBonus = 15
	case totalCredits >= 18:
		creditBonus = 10
	}

	var statementBonus float64
	switch {
	case statementLen >= 300:
		statementBonus = 10
	case statementLen >= 200:
		statementBonus = 7
	case statementLen >= 100:
		statementBonus = 5
	}

	score := int(math.Round(cgpaPart + creditBonus + statementBonus))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// CheckEligibility verifies that the student may request placement: a
// freshman in the second semester, CGPA at least 1.5, not dismissed.
func CheckEligibility(u *student.User) error {
	if !u.IsStudent() {
		return shared.Validationf("placement", "CheckEligibility", "only students may request placement")
	}
	if u.Standing.Dismissed {
		return shared.ErrAccountDismissed
	}
	if u.CurrentYear != 1 || u.CurrentSemester != 2 {
		return shared.Conflictf("placement", "CheckEligibility",
			"placement applies to freshman second-semester students, student is Y%dS%d", u.CurrentYear, u.CurrentSemester)
	}
	if u.Standing.CGPA < MinCGPA {
		return shared.Validationf("placement", "CheckEligibility",
			"cgpa %.2f below placement minimum %.1f", u.Standing.CGPA, MinCGPA)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PLACEMENT REQUEST
// ══════════════════════════════════════════════════════════════════════════════

// Request is one student's placement request for an academic year. Unique per
// (student, academic year).
type Request struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	// StudentID - the requesting student.
	StudentID shared.UserID

	// AcademicYear the placement belongs to.
	AcademicYear shared.AcademicYear

	// FirstChoice and SecondChoice departments.
	FirstChoice  shared.Department
	SecondChoice shared.Department

	// Statement - the student's motivation statement.
	Statement string

	// CGPA and TotalCredits - standing snapshot taken at save time.
	CGPA         float64
	TotalCredits int

	// Score - derived priority score, recomputed on every save.
	Score int

	// Status - lifecycle status.
	Status Status

	// ApprovedDepartment - set on approval.
	ApprovedDepartment shared.Department

	// RejectionReason - set on rejection.
	RejectionReason string

	ReviewedBy shared.UserID
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRequestParams contains the parameters for creating a placement request.
type NewRequestParams struct {
	ID           string
	StudentID    shared.UserID
	AcademicYear shared.AcademicYear
	FirstChoice  shared.Department
	SecondChoice shared.Department
	Statement    string
	CGPA         float64
	TotalCredits int
	Now          time.Time
}

// NewRequest creates a draft placement request with its derived score.
func NewRequest(p NewRequestParams) (*Request, error) {
	if p.ID == "" {
		return nil, shared.Validationf("placement", "Create", "request id is required")
	}
	if p.StudentID.IsEmpty() {
		return nil, shared.Validationf("placement", "Create", "student id is required")
	}
	if !p.AcademicYear.IsValid() {
		return nil, shared.Validationf("placement", "Create", "invalid academic year %q", p.AcademicYear)
	}
	if !p.FirstChoice.IsValid() {
		return nil, shared.Validationf("placement", "Create", "first choice department is required")
	}
	if p.FirstChoice == p.SecondChoice {
		return nil, shared.Validationf("placement", "Create", "first and second choice must differ")
	}

	now := p.Now.UTC()
	r := &Request{
		ID:           p.ID,
		StudentID:    p.StudentID,
		AcademicYear: p.AcademicYear,
		FirstChoice:  p.FirstChoice,
		SecondChoice: p.SecondChoice,
		Statement:    p.Statement,
		CGPA:         p.CGPA,
		TotalCredits: p.TotalCredits,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.rescore()
	return r, nil
}

// rescore recomputes the priority score from the current snapshot.
func (r *Request) rescore() {
	r.Score = PriorityScore(r.CGPA, r.TotalCredits, len(r.Statement))
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// UpdateDraft edits the choices, statement and snapshot while in draft, and
// recomputes the score.
func (r *Request) UpdateDraft(first, second shared.Department, statement string, cgpa float64, credits int, at time.Time) error {
	if r.Status != StatusDraft {
		return shared.Conflictf("placement", "Update", "cannot edit request in status %q", r.Status)
	}
	if first == second {
		return shared.Validationf("placement", "Update", "first and second choice must differ")
	}
	r.FirstChoice = first
	r.SecondChoice = second
	r.Statement = statement
	r.CGPA = cgpa
	r.TotalCredits = credits
	r.rescore()
	r.UpdatedAt = at.UTC()
	return nil
}

// Submit moves the request from draft to submitted.
func (r *Request) Submit(at time.Time) error {
	if r.Status != StatusDraft {
		return shared.Conflictf("placement", "Submit", "cannot submit request in status %q", r.Status)
	}
	r.rescore()
	r.Status = StatusSubmitted
	r.UpdatedAt = at.UTC()
	return nil
}

// Approve moves the request from submitted to approved into the target
// department. The caller performs the capacity check and the student
// promotion; this only flips the request.
func (r *Request) Approve(department shared.Department, by shared.UserID, at time.Time) error {
	if r.Status != StatusSubmitted {
		return shared.Conflictf("placement", "Approve", "cannot approve request in status %q", r.Status)
	}
	if !department.IsValid() || department.IsAll() {
		return shared.Validationf("placement", "Approve", "an explicit target department is required")
	}

	r.Status = StatusApproved
	r.ApprovedDepartment = department
	r.ReviewedBy = by
	t := at.UTC()
	r.ReviewedAt = &t
	r.UpdatedAt = t
	return nil
}

// Reject moves the request from submitted to rejected, recording the reason.
func (r *Request) Reject(reason string, by shared.UserID, at time.Time) error {
	if r.Status != StatusSubmitted {
		return shared.Conflictf("placement", "Reject", "cannot reject request in status %q", r.Status)
	}
	if reason == "" {
		return shared.Validationf("placement", "Reject", "rejection reason is required")
	}

	r.Status = StatusRejected
	r.RejectionReason = reason
	r.ReviewedBy = by
	t := at.UTC()
	r.ReviewedAt = &t
	r.UpdatedAt = t
	return nil
}

// String returns a compact representation for logging.
func (r *Request) String() string {
	return fmt.Sprintf("Placement{ID: %s, Student: %s, First: %s, Score: %d, Status: %s}",
		r.ID, r.StudentID, r.FirstChoice, r.Score, r.Status)
}
