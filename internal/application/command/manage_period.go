package command

import (
	"context"
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERIOD MANAGEMENT COMMANDS
// Registrar control over registration windows. At most one active period per
// (type, year, semester, department) key; the repository enforces it.
// ══════════════════════════════════════════════════════════════════════════════

// OpenPeriodCommand opens a registration window.
type OpenPeriodCommand struct {
	// Actor performing the change.
	Actor shared.Actor

	Type         registration.PeriodType
	AcademicYear shared.AcademicYear
	Semester     shared.Semester

	// Department - a concrete department or shared.DepartmentAll.
	Department shared.Department

	StartDate time.Time
	EndDate   time.Time
}

// OpenPeriodResult is the outcome.
type OpenPeriodResult struct {
	PeriodID string
}

// OpenPeriodHandler handles OpenPeriodCommand.
type OpenPeriodHandler struct {
	periodRepo registration.PeriodRepository
	ids        shared.IDGenerator
	clock      timeutil.Clock
	effects    *SideEffects
}

// NewOpenPeriodHandler creates a new OpenPeriodHandler.
func NewOpenPeriodHandler(periodRepo registration.PeriodRepository, ids shared.IDGenerator, clock timeutil.Clock, effects *SideEffects) *OpenPeriodHandler {
	return &OpenPeriodHandler{periodRepo: periodRepo, ids: ids, clock: clock, effects: effects}
}

// Handle opens the window.
func (h *OpenPeriodHandler) Handle(ctx context.Context, cmd OpenPeriodCommand) (*OpenPeriodResult, error) {
	if err := cmd.Actor.Authorize("registration", "OpenPeriod", shared.ActionManagePeriods); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	p := &registration.Period{
		ID:           h.ids.GenerateID(),
		Type:         cmd.Type,
		AcademicYear: cmd.AcademicYear,
		Semester:     cmd.Semester,
		Department:   cmd.Department,
		StartDate:    cmd.StartDate,
		EndDate:      cmd.EndDate,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := h.periodRepo.Create(ctx, p); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, shared.Conflictf("registration", "OpenPeriod",
				"an active %s period already exists for %s S%d (%s)", cmd.Type, cmd.AcademicYear, cmd.Semester.Int(), cmd.Department)
		}
		return nil, fmt.Errorf("open_period: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "period.open", p.ID, map[string]any{
		"type":          string(cmd.Type),
		"academic_year": cmd.AcademicYear.String(),
		"semester":      cmd.Semester.Int(),
		"department":    cmd.Department.String(),
		"start":         cmd.StartDate,
		"end":           cmd.EndDate,
	})

	return &OpenPeriodResult{PeriodID: p.ID}, nil
}

// ClosePeriodCommand deactivates a registration window ahead of its end date.
type ClosePeriodCommand struct {
	// Actor performing the change.
	Actor shared.Actor

	Type         registration.PeriodType
	AcademicYear shared.AcademicYear
	Semester     shared.Semester
	Department   shared.Department
}

// ClosePeriodHandler handles ClosePeriodCommand.
type ClosePeriodHandler struct {
	periodRepo registration.PeriodRepository
	clock      timeutil.Clock
	effects    *SideEffects
}

// NewClosePeriodHandler creates a new ClosePeriodHandler.
func NewClosePeriodHandler(periodRepo registration.PeriodRepository, clock timeutil.Clock, effects *SideEffects) *ClosePeriodHandler {
	return &ClosePeriodHandler{periodRepo: periodRepo, clock: clock, effects: effects}
}

// Handle deactivates the window.
func (h *ClosePeriodHandler) Handle(ctx context.Context, cmd ClosePeriodCommand) error {
	if err := cmd.Actor.Authorize("registration", "ClosePeriod", shared.ActionManagePeriods); err != nil {
		return err
	}

	p, err := h.periodRepo.GetActive(ctx, cmd.Type, cmd.AcademicYear, cmd.Semester, cmd.Department)
	if err != nil {
		return fmt.Errorf("close_period: %w", err)
	}

	p.Active = false
	p.UpdatedAt = h.clock.Now()
	if err := h.periodRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("close_period: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "period.close", p.ID, map[string]any{
		"type":          string(cmd.Type),
		"academic_year": cmd.AcademicYear.String(),
		"semester":      cmd.Semester.Int(),
		"department":    cmd.Department.String(),
	})

	return nil
}
