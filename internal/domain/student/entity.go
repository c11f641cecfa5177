// Package student contains the user/student entity, the embedded academic
// standing, and the standing calculator.
package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// AccountStatus is the account status of a user.
type AccountStatus string

const (
	// AccountActive - account in good order.
	AccountActive AccountStatus = "active"
	// AccountSuspended - suspended, e.g. after dismissal; blocks registration.
	AccountSuspended AccountStatus = "suspended"
	// AccountInactive - deactivated by an administrator.
	AccountInactive AccountStatus = "inactive"
)

// IsValid checks that the status is one of the known values.
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountActive, AccountSuspended, AccountInactive:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s AccountStatus) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC STANDING
// ══════════════════════════════════════════════════════════════════════════════

// Standing is the derived academic standing embedded on the student. Mutated
// only by the standing calculator, immediately after a grade finalizes.
type Standing struct {
	// CGPA - credit-weighted grade point average, 0.00-4.00, 2 decimals.
	CGPA float64

	// TotalCreditsEarned - sum of credits across qualifying grades.
	TotalCreditsEarned int

	// Probation and Dismissed are mutually exclusive.
	Probation bool
	Dismissed bool

	// LastUpdated - when the standing was last recomputed.
	LastUpdated time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User is any actor known to the system. Students additionally carry program
// position and academic standing.
type User struct {
	// ID - internal unique identifier (UUID in string format).
	ID shared.UserID

	// StudentNumber - human-facing identifier, unique among students.
	StudentNumber string

	// Name - display name.
	Name string

	// Email - login email, unique.
	Email string

	// PasswordHash - bcrypt hash; session issuance lives outside the engine.
	PasswordHash string

	// Role - tagged role driving the authorization table.
	Role shared.Role

	// Department - home department. For freshmen this is the intake
	// department until placement promotes them.
	Department shared.Department

	// CurrentYear and CurrentSemester - position in the program (students).
	CurrentYear     shared.StudyYear
	CurrentSemester shared.Semester

	// Status - account status.
	Status AccountStatus

	// Standing - derived academic standing (students).
	Standing Standing

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUserParams contains the parameters for creating a user.
type NewUserParams struct {
	ID            shared.UserID
	StudentNumber string
	Name          string
	Email         string
	PasswordHash  string
	Role          shared.Role
	Department    shared.Department
	Now           time.Time
}

// NewUser creates a user with validation. Students start in year 1,
// semester 1 with a clean standing.
func NewUser(p NewUserParams) (*User, error) {
	if p.ID.IsEmpty() {
		return nil, shared.Validationf("student", "Create", "user id is required")
	}
	name := strings.TrimSpace(p.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, shared.Validationf("student", "Create", "name must be 1-100 chars")
	}
	if !strings.Contains(p.Email, "@") {
		return nil, shared.Validationf("student", "Create", "invalid email %q", p.Email)
	}
	if !p.Role.IsValid() {
		return nil, shared.Validationf("student", "Create", "invalid role %q", p.Role)
	}
	if p.Role == shared.RoleStudent && p.StudentNumber == "" {
		return nil, shared.Validationf("student", "Create", "student number is required")
	}

	now := p.Now.UTC()
	return &User{
		ID:              p.ID,
		StudentNumber:   p.StudentNumber,
		Name:            name,
		Email:           strings.ToLower(strings.TrimSpace(p.Email)),
		PasswordHash:    p.PasswordHash,
		Role:            p.Role,
		Department:      p.Department,
		CurrentYear:     1,
		CurrentSemester: 1,
		Status:          AccountActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// IsStudent reports whether the user is a student.
func (u *User) IsStudent() bool {
	return u.Role == shared.RoleStudent
}

// CanRegister reports whether the account status alone permits registration.
func (u *User) CanRegister() bool {
	return u.Status == AccountActive && !u.Standing.Dismissed
}

// Suspend suspends the account.
func (u *User) Suspend(at time.Time) {
	u.Status = AccountSuspended
	u.UpdatedAt = at.UTC()
}

// Reinstate restores a suspended account to active.
func (u *User) Reinstate(at time.Time) error {
	if u.Status != AccountSuspended {
		return shared.Conflictf("student", "Reinstate", "can only reinstate suspended accounts, status is %q", u.Status)
	}
	u.Status = AccountActive
	u.UpdatedAt = at.UTC()
	return nil
}

// ApplyAssessment writes a standing assessment onto the student, including
// the derived account status change.
func (u *User) ApplyAssessment(a Assessment, at time.Time) {
	u.Standing = a.Standing
	u.Standing.LastUpdated = at.UTC()
	u.Status = a.AccountStatus
	u.UpdatedAt = at.UTC()
}

// PromoteToDepartment applies an approved placement: the student joins the
// department and advances to year 2, semester 1.
func (u *User) PromoteToDepartment(dept shared.Department, at time.Time) error {
	if !u.IsStudent() {
		return shared.Validationf("student", "Promote", "only students can be placed")
	}
	if u.CurrentYear != 1 {
		return shared.Conflictf("student", "Promote", "student is in year %d, placement applies to freshmen", u.CurrentYear)
	}
	u.Department = dept
	u.CurrentYear = 2
	u.CurrentSemester = 1
	u.UpdatedAt = at.UTC()
	return nil
}

// Actor returns the authorization view of the user.
func (u *User) Actor() shared.Actor {
	return shared.Actor{ID: u.ID, Role: u.Role, Department: u.Department}
}

// String returns a compact representation for logging.
func (u *User) String() string {
	return fmt.Sprintf("User{ID: %s, Role: %s, Dept: %s, CGPA: %.2f, Status: %s}",
		u.ID, u.Role, u.Department, u.Standing.CGPA, u.Status)
}
