package command

import (
	"context"
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW GRADE COMMANDS
// Department head review of submitted grades: approve forwards the grade to
// the registrar, reject sends it back to the instructor.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewGradeCommand contains the data for a department head review.
type ReviewGradeCommand struct {
	// Actor performing the review.
	Actor shared.Actor

	// GradeID - the reviewed grade record.
	GradeID string

	// Approve - true to approve, false to reject.
	Approve bool

	// Comment - optional head comment (approve).
	Comment string

	// Reason - rejection reason (required on reject).
	Reason string
}

// Validate validates the command.
func (c ReviewGradeCommand) Validate() error {
	if c.GradeID == "" {
		return shared.Validationf("grade", "Review", "grade_id is required")
	}
	if !c.Approve && c.Reason == "" {
		return shared.Validationf("grade", "Review", "rejection reason is required")
	}
	return nil
}

// ReviewGradeResult is the outcome of a review.
type ReviewGradeResult struct {
	GradeID string
	Status  grade.Status
}

// ReviewGradeHandler handles ReviewGradeCommand.
type ReviewGradeHandler struct {
	gradeRepo   grade.Repository
	studentRepo student.Repository
	clock       timeutil.Clock
	effects     *SideEffects
}

// NewReviewGradeHandler creates a new ReviewGradeHandler.
func NewReviewGradeHandler(
	gradeRepo grade.Repository,
	studentRepo student.Repository,
	clock timeutil.Clock,
	effects *SideEffects,
) *ReviewGradeHandler {
	return &ReviewGradeHandler{
		gradeRepo:   gradeRepo,
		studentRepo: studentRepo,
		clock:       clock,
		effects:     effects,
	}
}

// Handle executes the review.
func (h *ReviewGradeHandler) Handle(ctx context.Context, cmd ReviewGradeCommand) (*ReviewGradeResult, error) {
	action := shared.ActionApproveGrade
	op := "Approve"
	if !cmd.Approve {
		action = shared.ActionRejectGrade
		op = "Reject"
	}
	if err := cmd.Actor.Authorize("grade", op, action); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.gradeRepo.GetByID(ctx, cmd.GradeID)
	if err != nil {
		return nil, fmt.Errorf("review_grade: %w", err)
	}

	// Review authority is scoped to the course's department.
	if cmd.Actor.Department != rec.Department {
		return nil, shared.NewDomainError("grade", op, shared.ErrUnauthorized,
			fmt.Sprintf("department head of %q may not review grades of %q", cmd.Actor.Department, rec.Department))
	}

	now := h.clock.Now()
	prev := rec.Status
	if cmd.Approve {
		err = rec.Approve(cmd.Comment, cmd.Actor.ID, now)
	} else {
		err = rec.Reject(cmd.Reason, cmd.Actor.ID, now)
	}
	if err != nil {
		return nil, err
	}

	if err := h.gradeRepo.UpdateFromStatus(ctx, rec, prev); err != nil {
		return nil, fmt.Errorf("review_grade: %w", err)
	}

	h.fanOut(ctx, cmd, rec, prev, now)
	return &ReviewGradeResult{GradeID: rec.ID, Status: rec.Status}, nil
}

// fanOut emits the best-effort side effects of a review.
func (h *ReviewGradeHandler) fanOut(ctx context.Context, cmd ReviewGradeCommand, rec *grade.Record, prev grade.Status, now time.Time) {
	auditAction := "grade.approve"
	eventType := shared.EventGradeApproved
	if !cmd.Approve {
		auditAction = "grade.reject"
		eventType = shared.EventGradeRejected
	}

	h.effects.Audit(ctx, cmd.Actor.ID, auditAction, rec.ID, map[string]any{
		"student_id":  rec.StudentID.String(),
		"course_code": rec.CourseCode.String(),
		"reason":      cmd.Reason,
	})

	if cmd.Approve {
		// All active registrars pick up approved grades for finalization.
		if registrars, err := h.studentRepo.ListByRole(ctx, shared.RoleRegistrar); err == nil {
			for _, r := range registrars {
				if r.Status != student.AccountActive {
					continue
				}
				h.effects.Notify(ctx, r.ID,
					"Grade approved",
					fmt.Sprintf("Grade for course %s approved and ready for finalization.", rec.CourseCode),
					notification.CategoryGrade,
					"/grades/"+rec.ID)
			}
		}
	} else {
		h.effects.Notify(ctx, rec.SubmittedBy,
			"Grade rejected",
			fmt.Sprintf("Your grade submission for %s was rejected: %s", rec.CourseCode, cmd.Reason),
			notification.CategoryGrade,
			"/grades/"+rec.ID)
	}

	h.effects.Publish(ctx, shared.GradeTransitionedEvent{
		BaseEvent:    shared.NewBaseEvent(eventType, rec.ID, now),
		GradeID:      rec.ID,
		StudentID:    rec.StudentID,
		CourseID:     rec.CourseID,
		CourseCode:   rec.CourseCode,
		AcademicYear: rec.AcademicYear,
		Semester:     rec.Semester,
		FromStatus:   prev.String(),
		ToStatus:     rec.Status.String(),
		LetterGrade:  rec.Letter.String(),
		ActorID:      cmd.Actor.ID,
	})
}
