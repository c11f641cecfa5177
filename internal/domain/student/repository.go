package student

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Repository defines persistence for users.
type Repository interface {
	// Create persists a new user.
	// Returns ErrUserAlreadyExists on a duplicate email or student number.
	Create(ctx context.Context, u *User) error

	// GetByID returns a user by internal ID.
	// Returns ErrUserNotFound when absent.
	GetByID(ctx context.Context, id shared.UserID) (*User, error)

	// GetByStudentNumber returns a student by student number.
	// Returns ErrUserNotFound when absent.
	GetByStudentNumber(ctx context.Context, number string) (*User, error)

	// Update persists user changes.
	// Returns ErrUserNotFound when absent.
	Update(ctx context.Context, u *User) error

	// UpdateStanding persists the standing and account status only.
	UpdateStanding(ctx context.Context, id shared.UserID, standing Standing, status AccountStatus) error

	// ListByRole returns users holding the role, e.g. all active registrars
	// for grade-approval notifications.
	ListByRole(ctx context.Context, role shared.Role) ([]*User, error)

	// GetDepartmentHead returns the department head for a department.
	// Returns ErrUserNotFound when the department has no head.
	GetDepartmentHead(ctx context.Context, department shared.Department) (*User, error)
}
