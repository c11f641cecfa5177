package command

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE ACCOUNT COMMAND
// Registrar/admin provisioning of accounts. Student accounts additionally
// require an open signup window; staff accounts do not.
// ══════════════════════════════════════════════════════════════════════════════

// CreateAccountCommand contains the data for provisioning an account.
type CreateAccountCommand struct {
	// Actor performing the provisioning.
	Actor shared.Actor

	StudentNumber string
	Name          string
	Email         string
	Password      string
	Role          shared.Role
	Department    shared.Department

	// AcademicYear and Semester locate the signup window for student
	// accounts. Ignored for staff roles.
	AcademicYear shared.AcademicYear
	Semester     shared.Semester
}

// Validate validates the command.
func (c CreateAccountCommand) Validate() error {
	if len(c.Password) < 8 {
		return shared.Validationf("student", "CreateAccount", "password must be at least 8 characters")
	}
	if !c.Role.IsValid() {
		return shared.Validationf("student", "CreateAccount", "invalid role %q", c.Role)
	}
	return nil
}

// CreateAccountResult is the outcome.
type CreateAccountResult struct {
	UserID shared.UserID
}

// CreateAccountHandler handles CreateAccountCommand.
type CreateAccountHandler struct {
	studentRepo student.Repository
	periodRepo  registration.PeriodRepository
	ids         shared.IDGenerator
	hasher      shared.PasswordHasher
	clock       timeutil.Clock
	effects     *SideEffects
}

// NewCreateAccountHandler creates a new CreateAccountHandler.
func NewCreateAccountHandler(
	studentRepo student.Repository,
	periodRepo registration.PeriodRepository,
	ids shared.IDGenerator,
	hasher shared.PasswordHasher,
	clock timeutil.Clock,
	effects *SideEffects,
) *CreateAccountHandler {
	return &CreateAccountHandler{
		studentRepo: studentRepo,
		periodRepo:  periodRepo,
		ids:         ids,
		hasher:      hasher,
		clock:       clock,
		effects:     effects,
	}
}

// Handle provisions the account.
func (h *CreateAccountHandler) Handle(ctx context.Context, cmd CreateAccountCommand) (*CreateAccountResult, error) {
	if err := cmd.Actor.Authorize("student", "CreateAccount", shared.ActionCreateAccount); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()

	if cmd.Role == shared.RoleStudent {
		_, err := registration.ResolveOpenPeriod(ctx, h.periodRepo,
			registration.PeriodSignup, cmd.AcademicYear, cmd.Semester, cmd.Department, now)
		if err != nil {
			return nil, fmt.Errorf("create_account: %w", err)
		}
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("create_account: hash password: %w", err)
	}

	u, err := student.NewUser(student.NewUserParams{
		ID:            shared.UserID(h.ids.GenerateID()),
		StudentNumber: cmd.StudentNumber,
		Name:          cmd.Name,
		Email:         cmd.Email,
		PasswordHash:  hash,
		Role:          cmd.Role,
		Department:    cmd.Department,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	if err := h.studentRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create_account: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "account.create", u.ID.String(), map[string]any{
		"role":       u.Role.String(),
		"department": u.Department.String(),
	})

	h.effects.Notify(ctx, u.ID,
		"Welcome to the academic records hub",
		fmt.Sprintf("Your %s account is ready.", u.Role),
		notification.CategoryRegistration,
		"/profile")

	return &CreateAccountResult{UserID: u.ID}, nil
}
