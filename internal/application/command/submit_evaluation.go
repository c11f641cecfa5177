package command

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/evaluation"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT EVALUATION COMMAND
// One anonymous instructor evaluation per settled course. Evaluations clear
// the registration gate, so the student can only evaluate courses they
// actually completed.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitEvaluationCommand contains the data for an evaluation submission.
type SubmitEvaluationCommand struct {
	// Actor - the evaluating student.
	Actor shared.Actor

	// CourseID and AcademicYear identify the completed course.
	CourseID     shared.CourseID
	AcademicYear shared.AcademicYear

	// Rating - overall rating, 1-5.
	Rating int

	// Comment - optional free text.
	Comment string
}

// Validate validates the command.
func (c SubmitEvaluationCommand) Validate() error {
	if c.CourseID.IsEmpty() {
		return shared.Validationf("evaluation", "Submit", "course_id is required")
	}
	if !c.AcademicYear.IsValid() {
		return shared.Validationf("evaluation", "Submit", "invalid academic year %q", c.AcademicYear)
	}
	if c.Rating < 1 || c.Rating > 5 {
		return shared.Validationf("evaluation", "Submit", "rating %d out of range 1-5", c.Rating)
	}
	return nil
}

// SubmitEvaluationResult is the outcome of a submission.
type SubmitEvaluationResult struct {
	EvaluationID string

	// Remaining - evaluations still outstanding for the academic year after
	// this one.
	Remaining int
}

// SubmitEvaluationHandler handles SubmitEvaluationCommand.
type SubmitEvaluationHandler struct {
	evalRepo  evaluation.Repository
	gradeRepo grade.Repository
	ids       shared.IDGenerator
	clock     timeutil.Clock
	effects   *SideEffects
}

// NewSubmitEvaluationHandler creates a new SubmitEvaluationHandler.
func NewSubmitEvaluationHandler(
	evalRepo evaluation.Repository,
	gradeRepo grade.Repository,
	ids shared.IDGenerator,
	clock timeutil.Clock,
	effects *SideEffects,
) *SubmitEvaluationHandler {
	return &SubmitEvaluationHandler{
		evalRepo:  evalRepo,
		gradeRepo: gradeRepo,
		ids:       ids,
		clock:     clock,
		effects:   effects,
	}
}

// Handle executes the submission.
func (h *SubmitEvaluationHandler) Handle(ctx context.Context, cmd SubmitEvaluationCommand) (*SubmitEvaluationResult, error) {
	if err := cmd.Actor.Authorize("evaluation", "Submit", shared.ActionSubmitEvaluation); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	settled, err := h.gradeRepo.ListSettledByStudent(ctx, cmd.Actor.ID, cmd.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("submit_evaluation: %w", err)
	}
	required := evaluation.RequiredPairs(settled)

	// The evaluated course must be one the student owes an evaluation for.
	var instructorID shared.UserID
	found := false
	for _, p := range required {
		if p.CourseID == cmd.CourseID {
			instructorID = p.InstructorID
			found = true
			break
		}
	}
	if !found {
		return nil, shared.Conflictf("evaluation", "Submit",
			"no settled grade for course %s in %s", cmd.CourseID, cmd.AcademicYear)
	}

	eval, err := evaluation.NewEvaluation(evaluation.NewEvaluationParams{
		ID:           h.ids.GenerateID(),
		StudentID:    cmd.Actor.ID,
		CourseID:     cmd.CourseID,
		InstructorID: instructorID,
		AcademicYear: cmd.AcademicYear,
		Rating:       cmd.Rating,
		Comment:      cmd.Comment,
		Now:          h.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := h.evalRepo.Create(ctx, eval); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, shared.ErrEvaluationExists
		}
		return nil, fmt.Errorf("submit_evaluation: %w", err)
	}

	// Ratings stay anonymous: the audit entry references the evaluation, the
	// details never carry the rating or comment.
	h.effects.Audit(ctx, cmd.Actor.ID, "evaluation.submit", eval.ID, map[string]any{
		"course_id":     cmd.CourseID.String(),
		"academic_year": cmd.AcademicYear.String(),
	})

	submitted, err := h.evalRepo.ListByStudentYear(ctx, cmd.Actor.ID, cmd.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("submit_evaluation: %w", err)
	}
	remaining := len(evaluation.Outstanding(required, submitted))

	return &SubmitEvaluationResult{EvaluationID: eval.ID, Remaining: remaining}, nil
}
