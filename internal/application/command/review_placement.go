package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW PLACEMENT COMMANDS
// Approval is capacity-guarded against the department's placement quota and
// promotes the student into the department (year 2, semester 1). Rejection
// records the reason. Bulk review processes a ranked batch and reports
// per-item outcomes.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewPlacementCommand contains the data for a single placement review.
type ReviewPlacementCommand struct {
	// Actor performing the review.
	Actor shared.Actor

	// RequestID - the reviewed placement request.
	RequestID string

	// Approve - true to approve, false to reject.
	Approve bool

	// Department - the target department on approval. Defaults to the
	// request's first choice when empty.
	Department shared.Department

	// Reason - rejection reason (required on reject).
	Reason string
}

// Validate validates the command.
func (c ReviewPlacementCommand) Validate() error {
	if c.RequestID == "" {
		return shared.Validationf("placement", "Review", "request_id is required")
	}
	if !c.Approve && c.Reason == "" {
		return shared.Validationf("placement", "Review", "rejection reason is required")
	}
	return nil
}

// ReviewPlacementResult is the outcome of a review.
type ReviewPlacementResult struct {
	RequestID  string
	Status     placement.Status
	Department shared.Department
}

// ReviewPlacementHandler handles ReviewPlacementCommand.
type ReviewPlacementHandler struct {
	placementRepo placement.Repository
	studentRepo   student.Repository
	deptRepo      course.DepartmentRepository
	clock         timeutil.Clock
	effects       *SideEffects
}

// NewReviewPlacementHandler creates a new ReviewPlacementHandler.
func NewReviewPlacementHandler(
	placementRepo placement.Repository,
	studentRepo student.Repository,
	deptRepo course.DepartmentRepository,
	clock timeutil.Clock,
	effects *SideEffects,
) *ReviewPlacementHandler {
	return &ReviewPlacementHandler{
		placementRepo: placementRepo,
		studentRepo:   studentRepo,
		deptRepo:      deptRepo,
		clock:         clock,
		effects:       effects,
	}
}

// Handle executes the review.
func (h *ReviewPlacementHandler) Handle(ctx context.Context, cmd ReviewPlacementCommand) (*ReviewPlacementResult, error) {
	op := "Approve"
	if !cmd.Approve {
		op = "Reject"
	}
	if err := cmd.Actor.Authorize("placement", op, shared.ActionReviewPlacement); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	req, err := h.placementRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, fmt.Errorf("review_placement: %w", err)
	}

	if cmd.Approve {
		return h.approve(ctx, cmd, req)
	}
	return h.reject(ctx, cmd, req)
}

// approve flips the request under the capacity guard and promotes the
// student. The student is loaded before any write so a broken student row
// cannot strand an approved request, and a failed promotion write gives the
// seat back.
func (h *ReviewPlacementHandler) approve(ctx context.Context, cmd ReviewPlacementCommand, req *placement.Request) (*ReviewPlacementResult, error) {
	target := cmd.Department
	if target == "" {
		target = req.FirstChoice
	}

	dept, err := h.deptRepo.Get(ctx, target)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.Validationf("placement", "Approve", "unknown department %q", target)
		}
		return nil, fmt.Errorf("review_placement: %w", err)
	}

	stud, err := h.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("review_placement: %w", err)
	}

	now := h.clock.Now()
	if err := stud.PromoteToDepartment(target, now); err != nil {
		return nil, err
	}

	snapshot := *req
	if err := req.Approve(target, cmd.Actor.ID, now); err != nil {
		return nil, err
	}

	// The seat claim is atomic: the capacity check and the flip out of
	// "submitted" happen in one conditioned update, so neither a racing
	// reviewer nor a parallel approval into the same department can
	// oversubscribe it. An exactly-full department admits nobody.
	if err := h.placementRepo.ApproveWithinCapacity(ctx, req, dept.PlacementCapacity); err != nil {
		if errors.Is(err, shared.ErrDepartmentFull) {
			return nil, shared.WrapError("placement", "Approve", shared.ErrCapacity,
				fmt.Sprintf("department %q is full: all %d seats taken", target, dept.PlacementCapacity),
				shared.ErrDepartmentFull)
		}
		return nil, fmt.Errorf("review_placement: %w", err)
	}

	if err := h.studentRepo.Update(ctx, stud); err != nil {
		// Give the seat back: an approved request without the promotion
		// applied must not survive.
		if revErr := h.placementRepo.UpdateFromStatus(ctx, &snapshot, placement.StatusApproved); revErr != nil {
			return nil, fmt.Errorf("review_placement: promotion failed (%v), revert failed: %w", err, revErr)
		}
		return nil, fmt.Errorf("review_placement: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "placement.approve", req.ID, map[string]any{
		"student_id": req.StudentID.String(),
		"department": target.String(),
		"score":      req.Score,
	})

	h.effects.Notify(ctx, req.StudentID,
		"Placement approved",
		fmt.Sprintf("Congratulations! You have been placed into %s. Your studies continue there from year 2.", target),
		notification.CategoryPlacement,
		"/placements/"+req.ID)

	h.effects.Publish(ctx, shared.PlacementReviewedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventPlacementApproved, req.ID, now),
		RequestID:    req.ID,
		StudentID:    req.StudentID,
		AcademicYear: req.AcademicYear,
		Department:   target,
		Approved:     true,
		ReviewerID:   cmd.Actor.ID,
	})

	return &ReviewPlacementResult{RequestID: req.ID, Status: req.Status, Department: target}, nil
}

// reject flips the request to rejected with the recorded reason.
func (h *ReviewPlacementHandler) reject(ctx context.Context, cmd ReviewPlacementCommand, req *placement.Request) (*ReviewPlacementResult, error) {
	now := h.clock.Now()
	if err := req.Reject(cmd.Reason, cmd.Actor.ID, now); err != nil {
		return nil, err
	}
	if err := h.placementRepo.UpdateFromStatus(ctx, req, placement.StatusSubmitted); err != nil {
		return nil, fmt.Errorf("review_placement: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "placement.reject", req.ID, map[string]any{
		"student_id": req.StudentID.String(),
		"reason":     cmd.Reason,
	})

	h.effects.Notify(ctx, req.StudentID,
		"Placement request rejected",
		fmt.Sprintf("Your placement request was rejected: %s", cmd.Reason),
		notification.CategoryPlacement,
		"/placements/"+req.ID)

	h.effects.Publish(ctx, shared.PlacementReviewedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventPlacementRejected, req.ID, now),
		RequestID:    req.ID,
		StudentID:    req.StudentID,
		AcademicYear: req.AcademicYear,
		Approved:     false,
		ReviewerID:   cmd.Actor.ID,
	})

	return &ReviewPlacementResult{RequestID: req.ID, Status: req.Status}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk review
// ─────────────────────────────────────────────────────────────────────────────

// BulkReviewPlacementsCommand approves submitted requests for an academic year
// in priority-score order until capacities run out.
type BulkReviewPlacementsCommand struct {
	// Actor performing the review.
	Actor shared.Actor

	// AcademicYear to process.
	AcademicYear shared.AcademicYear

	// RejectOverflow - when true, requests that no longer fit any chosen
	// department are rejected instead of left submitted.
	RejectOverflow bool
}

// Validate validates the command.
func (c BulkReviewPlacementsCommand) Validate() error {
	if !c.AcademicYear.IsValid() {
		return shared.Validationf("placement", "BulkReview", "invalid academic year %q", c.AcademicYear)
	}
	return nil
}

// BulkItemOutcome is the per-request outcome of a bulk run.
type BulkItemOutcome struct {
	RequestID  string
	StudentID  shared.UserID
	Score      int
	Approved   bool
	Rejected   bool
	Department shared.Department
	Reason     string
}

// BulkReviewPlacementsResult reports the bulk outcome.
type BulkReviewPlacementsResult struct {
	Approved int
	Rejected int
	Skipped  int
	Items    []BulkItemOutcome
}

// BulkReviewPlacementsHandler handles BulkReviewPlacementsCommand.
type BulkReviewPlacementsHandler struct {
	placementRepo placement.Repository
	single        *ReviewPlacementHandler
}

// NewBulkReviewPlacementsHandler creates a new BulkReviewPlacementsHandler.
func NewBulkReviewPlacementsHandler(placementRepo placement.Repository, single *ReviewPlacementHandler) *BulkReviewPlacementsHandler {
	return &BulkReviewPlacementsHandler{placementRepo: placementRepo, single: single}
}

// Handle walks the submitted requests in score order, trying first choice then
// second. Per-item failures never abort the batch.
func (h *BulkReviewPlacementsHandler) Handle(ctx context.Context, cmd BulkReviewPlacementsCommand) (*BulkReviewPlacementsResult, error) {
	if err := cmd.Actor.Authorize("placement", "BulkReview", shared.ActionReviewPlacement); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	submitted, err := h.placementRepo.ListByStatus(ctx, cmd.AcademicYear, placement.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("bulk_review_placements: %w", err)
	}

	result := &BulkReviewPlacementsResult{}
	for _, req := range submitted {
		outcome := h.reviewOne(ctx, cmd, req)
		result.Items = append(result.Items, outcome)
		switch {
		case outcome.Approved:
			result.Approved++
		case outcome.Rejected:
			result.Rejected++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

// reviewOne tries the request's choices in order.
func (h *BulkReviewPlacementsHandler) reviewOne(ctx context.Context, cmd BulkReviewPlacementsCommand, req *placement.Request) BulkItemOutcome {
	outcome := BulkItemOutcome{RequestID: req.ID, StudentID: req.StudentID, Score: req.Score}

	choices := []shared.Department{req.FirstChoice}
	if req.SecondChoice.IsValid() {
		choices = append(choices, req.SecondChoice)
	}

	for _, dept := range choices {
		res, err := h.single.Handle(ctx, ReviewPlacementCommand{
			Actor:      cmd.Actor,
			RequestID:  req.ID,
			Approve:    true,
			Department: dept,
		})
		if err == nil {
			outcome.Approved = true
			outcome.Department = res.Department
			return outcome
		}
		if shared.IsCapacity(err) {
			outcome.Reason = err.Error()
			continue
		}
		// Anything other than a full department stops this item for good.
		outcome.Reason = err.Error()
		return outcome
	}

	// Every choice was full.
	if cmd.RejectOverflow {
		_, err := h.single.Handle(ctx, ReviewPlacementCommand{
			Actor:     cmd.Actor,
			RequestID: req.ID,
			Approve:   false,
			Reason:    "all chosen departments are at capacity",
		})
		if err == nil {
			outcome.Rejected = true
			outcome.Reason = "all chosen departments are at capacity"
		} else {
			outcome.Reason = err.Error()
		}
	}
	return outcome
}
