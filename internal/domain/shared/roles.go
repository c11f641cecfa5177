package shared

// Role is the tagged set of actor roles known to the engine. Authorization is
// decided by the capability table below, never by ad hoc string comparisons.
type Role string

const (
	// RoleStudent - enrolled student.
	RoleStudent Role = "student"
	// RoleInstructor - course instructor; submits grades.
	RoleInstructor Role = "instructor"
	// RoleDepartmentHead - reviews submitted grades for their department.
	RoleDepartmentHead Role = "department_head"
	// RoleRegistrar - finalizes and locks grades, manages periods.
	RoleRegistrar Role = "registrar"
	// RoleAdmin - system administration.
	RoleAdmin Role = "admin"
)

// IsValid checks that the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleDepartmentHead, RoleRegistrar, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Action identifies a guarded state transition or operation.
type Action string

const (
	ActionSubmitGrade      Action = "grade.submit"
	ActionApproveGrade     Action = "grade.approve"
	ActionRejectGrade      Action = "grade.reject"
	ActionFinalizeGrade    Action = "grade.finalize"
	ActionLockGrades       Action = "grade.lock"
	ActionRegisterSemester Action = "registration.register"
	ActionManagePeriods    Action = "registration.manage_periods"
	ActionSubmitEvaluation Action = "evaluation.submit"
	ActionSubmitPlacement  Action = "placement.submit"
	ActionReviewPlacement  Action = "placement.review"
	ActionCreateAccount    Action = "account.create"
)

// capabilities maps each role to the actions it may perform. Admin is
// intentionally absent from grade transitions: grading authority belongs to
// the academic roles only.
var capabilities = map[Role]map[Action]bool{
	RoleStudent: {
		ActionRegisterSemester: true,
		ActionSubmitEvaluation: true,
		ActionSubmitPlacement:  true,
	},
	RoleInstructor: {
		ActionSubmitGrade: true,
	},
	RoleDepartmentHead: {
		ActionApproveGrade:    true,
		ActionRejectGrade:     true,
		ActionReviewPlacement: true,
	},
	RoleRegistrar: {
		ActionFinalizeGrade: true,
		ActionLockGrades:    true,
		ActionManagePeriods: true,
		ActionCreateAccount: true,
	},
	RoleAdmin: {
		ActionManagePeriods: true,
		ActionCreateAccount: true,
	},
}

// Can reports whether the role is allowed to perform the action.
func (r Role) Can(a Action) bool {
	return capabilities[r][a]
}

// Actor identifies who is performing an operation.
type Actor struct {
	ID         UserID
	Role       Role
	Department Department
}

// Authorize returns ErrUnauthorized wrapped with context when the actor's
// role lacks the capability for the action.
func (a Actor) Authorize(domain, op string, action Action) error {
	if !a.Role.Can(action) {
		return NewDomainError(domain, op, ErrUnauthorized,
			"role "+a.Role.String()+" may not perform "+string(action))
	}
	return nil
}
