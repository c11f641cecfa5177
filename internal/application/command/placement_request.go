package command

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLACEMENT REQUEST COMMANDS
// Draft creation/editing and submission. The CGPA/credit snapshot is taken
// from the student's current standing on every save, so the derived score
// tracks the latest finalized grades until submission freezes it.
// ══════════════════════════════════════════════════════════════════════════════

// SavePlacementDraftCommand creates or updates a draft placement request.
type SavePlacementDraftCommand struct {
	// Actor - the requesting freshman.
	Actor shared.Actor

	// AcademicYear the placement belongs to.
	AcademicYear shared.AcademicYear

	// FirstChoice and SecondChoice departments.
	FirstChoice  shared.Department
	SecondChoice shared.Department

	// Statement - the motivation statement.
	Statement string
}

// Validate validates the command.
func (c SavePlacementDraftCommand) Validate() error {
	if !c.AcademicYear.IsValid() {
		return shared.Validationf("placement", "SaveDraft", "invalid academic year %q", c.AcademicYear)
	}
	if !c.FirstChoice.IsValid() || c.FirstChoice.IsAll() {
		return shared.Validationf("placement", "SaveDraft", "first choice department is required")
	}
	if c.SecondChoice.IsAll() {
		return shared.Validationf("placement", "SaveDraft", "second choice must be a concrete department")
	}
	return nil
}

// SavePlacementDraftResult is the outcome of a draft save.
type SavePlacementDraftResult struct {
	RequestID string
	Score     int
	Created   bool
}

// SavePlacementDraftHandler handles SavePlacementDraftCommand.
type SavePlacementDraftHandler struct {
	placementRepo placement.Repository
	studentRepo   student.Repository
	deptRepo      course.DepartmentRepository
	ids           shared.IDGenerator
	clock         timeutil.Clock
	effects       *SideEffects
}

// NewSavePlacementDraftHandler creates a new SavePlacementDraftHandler.
func NewSavePlacementDraftHandler(
	placementRepo placement.Repository,
	studentRepo student.Repository,
	deptRepo course.DepartmentRepository,
	ids shared.IDGenerator,
	clock timeutil.Clock,
	effects *SideEffects,
) *SavePlacementDraftHandler {
	return &SavePlacementDraftHandler{
		placementRepo: placementRepo,
		studentRepo:   studentRepo,
		deptRepo:      deptRepo,
		ids:           ids,
		clock:         clock,
		effects:       effects,
	}
}

// Handle creates the draft when none exists, otherwise edits the existing one.
func (h *SavePlacementDraftHandler) Handle(ctx context.Context, cmd SavePlacementDraftCommand) (*SavePlacementDraftResult, error) {
	if err := cmd.Actor.Authorize("placement", "SaveDraft", shared.ActionSubmitPlacement); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, cmd.Actor.ID)
	if err != nil {
		return nil, fmt.Errorf("placement_draft: %w", err)
	}
	if err := placement.CheckEligibility(stud); err != nil {
		return nil, err
	}
	if err := h.checkDepartments(ctx, cmd.FirstChoice, cmd.SecondChoice); err != nil {
		return nil, err
	}

	now := h.clock.Now()

	existing, err := h.placementRepo.GetByStudentYear(ctx, stud.ID, cmd.AcademicYear)
	if err == nil {
		if err := existing.UpdateDraft(cmd.FirstChoice, cmd.SecondChoice, cmd.Statement,
			stud.Standing.CGPA, stud.Standing.TotalCreditsEarned, now); err != nil {
			return nil, err
		}
		if err := h.placementRepo.UpdateFromStatus(ctx, existing, placement.StatusDraft); err != nil {
			return nil, fmt.Errorf("placement_draft: %w", err)
		}
		return &SavePlacementDraftResult{RequestID: existing.ID, Score: existing.Score}, nil
	}
	if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("placement_draft: %w", err)
	}

	req, err := placement.NewRequest(placement.NewRequestParams{
		ID:           h.ids.GenerateID(),
		StudentID:    stud.ID,
		AcademicYear: cmd.AcademicYear,
		FirstChoice:  cmd.FirstChoice,
		SecondChoice: cmd.SecondChoice,
		Statement:    cmd.Statement,
		CGPA:         stud.Standing.CGPA,
		TotalCredits: stud.Standing.TotalCreditsEarned,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}

	if err := h.placementRepo.Create(ctx, req); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, shared.ErrPlacementAlreadyExists
		}
		return nil, fmt.Errorf("placement_draft: %w", err)
	}

	h.effects.Audit(ctx, stud.ID, "placement.draft", req.ID, map[string]any{
		"academic_year": cmd.AcademicYear.String(),
		"first_choice":  cmd.FirstChoice.String(),
	})

	return &SavePlacementDraftResult{RequestID: req.ID, Score: req.Score, Created: true}, nil
}

// checkDepartments verifies the chosen departments exist.
func (h *SavePlacementDraftHandler) checkDepartments(ctx context.Context, first, second shared.Department) error {
	if _, err := h.deptRepo.Get(ctx, first); err != nil {
		if shared.IsNotFound(err) {
			return shared.Validationf("placement", "SaveDraft", "unknown department %q", first)
		}
		return fmt.Errorf("placement_draft: %w", err)
	}
	if second.IsValid() {
		if _, err := h.deptRepo.Get(ctx, second); err != nil {
			if shared.IsNotFound(err) {
				return shared.Validationf("placement", "SaveDraft", "unknown department %q", second)
			}
			return fmt.Errorf("placement_draft: %w", err)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Submission
// ─────────────────────────────────────────────────────────────────────────────

// SubmitPlacementCommand submits a draft placement request for review.
type SubmitPlacementCommand struct {
	// Actor - the requesting student.
	Actor shared.Actor

	// RequestID - the draft to submit.
	RequestID string
}

// Validate validates the command.
func (c SubmitPlacementCommand) Validate() error {
	if c.RequestID == "" {
		return shared.Validationf("placement", "Submit", "request_id is required")
	}
	return nil
}

// SubmitPlacementResult is the outcome of a submission.
type SubmitPlacementResult struct {
	RequestID string
	Score     int
}

// SubmitPlacementHandler handles SubmitPlacementCommand.
type SubmitPlacementHandler struct {
	placementRepo placement.Repository
	studentRepo   student.Repository
	clock         timeutil.Clock
	effects       *SideEffects
}

// NewSubmitPlacementHandler creates a new SubmitPlacementHandler.
func NewSubmitPlacementHandler(
	placementRepo placement.Repository,
	studentRepo student.Repository,
	clock timeutil.Clock,
	effects *SideEffects,
) *SubmitPlacementHandler {
	return &SubmitPlacementHandler{
		placementRepo: placementRepo,
		studentRepo:   studentRepo,
		clock:         clock,
		effects:       effects,
	}
}

// Handle executes the submission.
func (h *SubmitPlacementHandler) Handle(ctx context.Context, cmd SubmitPlacementCommand) (*SubmitPlacementResult, error) {
	if err := cmd.Actor.Authorize("placement", "Submit", shared.ActionSubmitPlacement); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	req, err := h.placementRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, fmt.Errorf("placement_submit: %w", err)
	}
	if req.StudentID != cmd.Actor.ID {
		return nil, shared.NewDomainError("placement", "Submit", shared.ErrForbidden,
			"placement requests may only be submitted by their owner")
	}

	// Eligibility is re-checked at submission: standing may have moved since
	// the draft was saved.
	stud, err := h.studentRepo.GetByID(ctx, cmd.Actor.ID)
	if err != nil {
		return nil, fmt.Errorf("placement_submit: %w", err)
	}
	if err := placement.CheckEligibility(stud); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	req.CGPA = stud.Standing.CGPA
	req.TotalCredits = stud.Standing.TotalCreditsEarned
	if err := req.Submit(now); err != nil {
		return nil, err
	}
	if err := h.placementRepo.UpdateFromStatus(ctx, req, placement.StatusDraft); err != nil {
		return nil, fmt.Errorf("placement_submit: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "placement.submit", req.ID, map[string]any{
		"academic_year": req.AcademicYear.String(),
		"first_choice":  req.FirstChoice.String(),
		"score":         req.Score,
	})

	h.effects.Notify(ctx, cmd.Actor.ID,
		"Placement request submitted",
		fmt.Sprintf("Your placement request for %s is under review (priority score %d).", req.FirstChoice, req.Score),
		notification.CategoryPlacement,
		"/placements/"+req.ID)

	h.effects.Publish(ctx, shared.PlacementReviewedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventPlacementSubmitted, req.ID, now),
		RequestID:    req.ID,
		StudentID:    req.StudentID,
		AcademicYear: req.AcademicYear,
		Department:   req.FirstChoice,
	})

	return &SubmitPlacementResult{RequestID: req.ID, Score: req.Score}, nil
}
