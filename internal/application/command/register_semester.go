package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/application/query"
	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER SEMESTER COMMAND
// Runs the eligibility gate, resolves the registrable set (repeat obligations
// dominate), and creates the registration with its generated number.
// ══════════════════════════════════════════════════════════════════════════════

// EligibilityGate decides registration eligibility. Satisfied by
// query.EligibilityHandler.
type EligibilityGate interface {
	Handle(ctx context.Context, q query.EligibilityQuery) (*query.EligibilityResult, error)
}

// RegisterSemesterCommand contains the data for a semester registration.
type RegisterSemesterCommand struct {
	// Actor - the registering student.
	Actor shared.Actor

	// AcademicYear and Semester being registered.
	AcademicYear shared.AcademicYear
	Semester     shared.Semester

	// CourseIDs - the courses the student selected.
	CourseIDs []shared.CourseID
}

// Validate validates the command.
func (c RegisterSemesterCommand) Validate() error {
	if !c.AcademicYear.IsValid() {
		return shared.Validationf("registration", "Register", "invalid academic year %q", c.AcademicYear)
	}
	if !c.Semester.IsValid() {
		return shared.Validationf("registration", "Register", "invalid semester %d", c.Semester)
	}
	if len(c.CourseIDs) == 0 {
		return shared.Validationf("registration", "Register", "at least one course is required")
	}
	seen := make(map[shared.CourseID]bool, len(c.CourseIDs))
	for _, id := range c.CourseIDs {
		if seen[id] {
			return shared.Validationf("registration", "Register", "duplicate course %s in selection", id)
		}
		seen[id] = true
	}
	return nil
}

// RegisterSemesterResult is the outcome of a registration.
type RegisterSemesterResult struct {
	RegistrationID string
	Number         string
	TotalCredits   int
	RepeatOnly     bool
}

// RegisterSemesterHandler handles RegisterSemesterCommand.
type RegisterSemesterHandler struct {
	regRepo     registration.Repository
	gradeRepo   grade.Repository
	courseRepo  course.Repository
	studentRepo student.Repository
	gate        EligibilityGate
	ids         shared.IDGenerator
	clock       timeutil.Clock
	effects     *SideEffects
}

// NewRegisterSemesterHandler creates a new RegisterSemesterHandler.
func NewRegisterSemesterHandler(
	regRepo registration.Repository,
	gradeRepo grade.Repository,
	courseRepo course.Repository,
	studentRepo student.Repository,
	gate EligibilityGate,
	ids shared.IDGenerator,
	clock timeutil.Clock,
	effects *SideEffects,
) *RegisterSemesterHandler {
	return &RegisterSemesterHandler{
		regRepo:     regRepo,
		gradeRepo:   gradeRepo,
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
		gate:        gate,
		ids:         ids,
		clock:       clock,
		effects:     effects,
	}
}

// Handle executes the registration.
func (h *RegisterSemesterHandler) Handle(ctx context.Context, cmd RegisterSemesterCommand) (*RegisterSemesterResult, error) {
	if err := cmd.Actor.Authorize("registration", "Register", shared.ActionRegisterSemester); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, cmd.Actor.ID)
	if err != nil {
		return nil, fmt.Errorf("register_semester: %w", err)
	}

	gate, err := h.gate.Handle(ctx, query.EligibilityQuery{
		StudentID:    stud.ID,
		AcademicYear: cmd.AcademicYear,
		Semester:     cmd.Semester,
	})
	if err != nil {
		return nil, fmt.Errorf("register_semester: %w", err)
	}
	if !gate.Eligible {
		return nil, denialError(gate)
	}

	items, repeatOnly, err := h.buildItems(ctx, stud, cmd)
	if err != nil {
		return nil, err
	}

	seq, err := h.regRepo.NextSequence(ctx, cmd.AcademicYear, stud.CurrentYear, cmd.Semester)
	if err != nil {
		return nil, fmt.Errorf("register_semester: %w", err)
	}

	now := h.clock.Now()
	reg, err := registration.NewRegistration(registration.NewRegistrationParams{
		ID:           h.ids.GenerateID(),
		StudentID:    stud.ID,
		AcademicYear: cmd.AcademicYear,
		Year:         stud.CurrentYear,
		Semester:     cmd.Semester,
		Items:        items,
		Sequence:     seq,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}

	// Two requests can pass the gate together; the unique key decides the
	// winner at insert time.
	if err := h.regRepo.Create(ctx, reg); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, shared.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("register_semester: %w", err)
	}

	h.effects.Audit(ctx, stud.ID, "registration.create", reg.ID, map[string]any{
		"number":        reg.Number,
		"academic_year": cmd.AcademicYear.String(),
		"semester":      cmd.Semester.Int(),
		"total_credits": reg.TotalCredits,
		"repeat_only":   repeatOnly,
	})

	h.effects.Notify(ctx, stud.ID,
		"Registration confirmed",
		fmt.Sprintf("Your registration %s for %s semester %d is confirmed (%d credits).",
			reg.Number, cmd.AcademicYear, cmd.Semester.Int(), reg.TotalCredits),
		notification.CategoryRegistration,
		"/registrations/"+reg.ID)

	h.effects.Publish(ctx, shared.RegistrationCreatedEvent{
		BaseEvent:          shared.NewBaseEvent(shared.EventRegistrationCreated, reg.ID, now),
		RegistrationID:     reg.ID,
		RegistrationNumber: reg.Number,
		StudentID:          stud.ID,
		AcademicYear:       cmd.AcademicYear,
		Semester:           cmd.Semester,
		TotalCredits:       reg.TotalCredits,
		RepeatOnly:         repeatOnly,
	})

	return &RegisterSemesterResult{
		RegistrationID: reg.ID,
		Number:         reg.Number,
		TotalCredits:   reg.TotalCredits,
		RepeatOnly:     repeatOnly,
	}, nil
}

// buildItems validates the selection against the registrable set and maps it
// to registration line items.
func (h *RegisterSemesterHandler) buildItems(ctx context.Context, stud *student.User, cmd RegisterSemesterCommand) ([]registration.Item, bool, error) {
	settled, err := h.gradeRepo.ListSettledByStudent(ctx, stud.ID, "")
	if err != nil {
		return nil, false, fmt.Errorf("register_semester: %w", err)
	}

	if obligations := registration.RepeatObligations(settled); len(obligations) > 0 {
		items, err := h.buildRepeatItems(ctx, obligations, cmd)
		return items, true, err
	}

	catalog, err := h.courseRepo.ListCatalog(ctx, stud.Department, stud.CurrentYear, cmd.Semester)
	if err != nil {
		return nil, false, fmt.Errorf("register_semester: %w", err)
	}
	registrable, _ := registration.RegistrableCourses(catalog, settled)
	allowed := make(map[shared.CourseID]*course.Course, len(registrable))
	for _, c := range registrable {
		allowed[c.ID] = c
	}

	items := make([]registration.Item, 0, len(cmd.CourseIDs))
	for _, id := range cmd.CourseIDs {
		c, ok := allowed[id]
		if !ok {
			return nil, false, shared.Conflictf("registration", "Register",
				"course %s is not registrable for this student", id)
		}
		items = append(items, registration.Item{
			CourseID:   c.ID,
			CourseCode: c.Code,
			Title:      c.Title,
			Credits:    c.Credits,
		})
	}
	return items, false, nil
}

// buildRepeatItems maps an all-obligations selection to line items. Obligated
// courses are resolved by ID, never through the term catalog: a course failed
// in an earlier term stays registrable even when it is not offered this
// semester.
func (h *RegisterSemesterHandler) buildRepeatItems(ctx context.Context, obligations []registration.Obligation, cmd RegisterSemesterCommand) ([]registration.Item, error) {
	ids := make([]shared.CourseID, len(obligations))
	for i, o := range obligations {
		ids[i] = o.CourseID
	}
	courses, err := h.courseRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("register_semester: %w", err)
	}
	allowed := make(map[shared.CourseID]*course.Course, len(courses))
	for _, c := range courses {
		allowed[c.ID] = c
	}

	// Every resolvable obligation must be in the selection, not merely some
	// of them.
	if len(cmd.CourseIDs) != len(allowed) {
		return nil, shared.Conflictf("registration", "Register",
			"%d repeat obligation(s) must be registered before any new course", len(allowed))
	}

	items := make([]registration.Item, 0, len(cmd.CourseIDs))
	for _, id := range cmd.CourseIDs {
		c, ok := allowed[id]
		if !ok {
			return nil, shared.Conflictf("registration", "Register",
				"course %s is not registrable for this student", id)
		}
		items = append(items, registration.Item{
			CourseID:   c.ID,
			CourseCode: c.Code,
			Title:      c.Title,
			Credits:    c.Credits,
			IsRepeat:   true,
		})
	}
	return items, nil
}

// denialError maps a gate denial to the matching domain error.
func denialError(gate *query.EligibilityResult) error {
	switch gate.Reason {
	case query.DenialEvaluationsPending:
		return shared.NewDomainError("registration", "Register", shared.ErrForbidden,
			fmt.Sprintf("%d instructor evaluation(s) outstanding", gate.EvaluationDeficit))
	case query.DenialAccountDismissed:
		return shared.ErrAccountDismissed
	case query.DenialAccountSuspended:
		return shared.ErrAccountSuspended
	case query.DenialPeriodClosed:
		return shared.ErrPeriodNotOpen
	case query.DenialAlreadyRegistered:
		return shared.ErrAlreadyRegistered
	default:
		return errors.New("registration denied")
	}
}
