package command

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FINALIZE GRADE COMMAND
// Registrar finalization. From this point the grade counts toward standing;
// the grade.finalized event triggers the standing recomputation handler.
// ══════════════════════════════════════════════════════════════════════════════

// FinalizeGradeCommand contains the data to finalize a grade.
type FinalizeGradeCommand struct {
	// Actor performing the finalization.
	Actor shared.Actor

	// GradeID - the finalized grade record.
	GradeID string

	// Comment - optional registrar comment.
	Comment string
}

// Validate validates the command.
func (c FinalizeGradeCommand) Validate() error {
	if c.GradeID == "" {
		return shared.Validationf("grade", "Finalize", "grade_id is required")
	}
	return nil
}

// FinalizeGradeResult is the outcome of a finalization.
type FinalizeGradeResult struct {
	GradeID string
	Letter  grade.LetterGrade
}

// FinalizeGradeHandler handles FinalizeGradeCommand.
type FinalizeGradeHandler struct {
	gradeRepo grade.Repository
	clock     timeutil.Clock
	effects   *SideEffects
}

// NewFinalizeGradeHandler creates a new FinalizeGradeHandler.
func NewFinalizeGradeHandler(gradeRepo grade.Repository, clock timeutil.Clock, effects *SideEffects) *FinalizeGradeHandler {
	return &FinalizeGradeHandler{gradeRepo: gradeRepo, clock: clock, effects: effects}
}

// Handle executes the finalization. The state write is durable before any
// downstream recomputation reads it: the event publishes only after
// UpdateFromStatus succeeds.
func (h *FinalizeGradeHandler) Handle(ctx context.Context, cmd FinalizeGradeCommand) (*FinalizeGradeResult, error) {
	if err := cmd.Actor.Authorize("grade", "Finalize", shared.ActionFinalizeGrade); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.gradeRepo.GetByID(ctx, cmd.GradeID)
	if err != nil {
		return nil, fmt.Errorf("finalize_grade: %w", err)
	}

	now := h.clock.Now()
	prev := rec.Status
	if err := rec.Finalize(cmd.Comment, cmd.Actor.ID, now); err != nil {
		return nil, err
	}

	// A racing finalizer loses here: the conditioned update sees the row has
	// already moved past "approved" and reports a conflict.
	if err := h.gradeRepo.UpdateFromStatus(ctx, rec, prev); err != nil {
		return nil, fmt.Errorf("finalize_grade: %w", err)
	}

	h.effects.Audit(ctx, cmd.Actor.ID, "grade.finalize", rec.ID, map[string]any{
		"student_id":  rec.StudentID.String(),
		"course_code": rec.CourseCode.String(),
		"letter":      rec.Letter.String(),
	})

	h.effects.Notify(ctx, rec.StudentID,
		"Grade finalized",
		fmt.Sprintf("Your final grade for %s is %s.", rec.CourseCode, rec.Letter),
		notification.CategoryGrade,
		"/grades/"+rec.ID)

	h.effects.Publish(ctx, shared.GradeTransitionedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventGradeFinalized, rec.ID, now),
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

	return &FinalizeGradeResult{GradeID: rec.ID, Letter: rec.Letter}, nil
}
