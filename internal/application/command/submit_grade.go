package command

import (
	"context"
	"fmt"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT GRADE COMMAND
// Creates the grade record on first submission, or resubmits a rejected one.
// Only the instructor assigned to the course may submit.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitGradeCommand contains the data to submit a grade.
type SubmitGradeCommand struct {
	// Actor performing the submission.
	Actor shared.Actor

	// StudentID - the graded student.
	StudentID shared.UserID

	// CourseID - the graded course.
	CourseID shared.CourseID

	// AcademicYear and Semester the grade belongs to.
	AcademicYear shared.AcademicYear
	Semester     shared.Semester

	// Marks - the three component marks.
	Marks grade.Marks

	// Comment - optional instructor comment.
	Comment string
}

// Validate validates the command.
func (c SubmitGradeCommand) Validate() error {
	if c.StudentID.IsEmpty() {
		return shared.Validationf("grade", "Submit", "student_id is required")
	}
	if c.CourseID.IsEmpty() {
		return shared.Validationf("grade", "Submit", "course_id is required")
	}
	if !c.AcademicYear.IsValid() {
		return shared.Validationf("grade", "Submit", "invalid academic year %q", c.AcademicYear)
	}
	if !c.Semester.IsValid() {
		return shared.Validationf("grade", "Submit", "invalid semester %d", c.Semester)
	}
	return c.Marks.Validate()
}

// SubmitGradeResult is the outcome of a submission.
type SubmitGradeResult struct {
	GradeID     string
	TotalMark   int
	Letter      grade.LetterGrade
	GradePoints float64
	Resubmitted bool
}

// SubmitGradeHandler handles SubmitGradeCommand.
type SubmitGradeHandler struct {
	gradeRepo   grade.Repository
	courseRepo  course.Repository
	studentRepo student.Repository
	ids         shared.IDGenerator
	clock       timeutil.Clock
	effects     *SideEffects
}

// NewSubmitGradeHandler creates a new SubmitGradeHandler.
func NewSubmitGradeHandler(
	gradeRepo grade.Repository,
	courseRepo course.Repository,
	studentRepo student.Repository,
	ids shared.IDGenerator,
	clock timeutil.Clock,
	effects *SideEffects,
) *SubmitGradeHandler {
	return &SubmitGradeHandler{
		gradeRepo:   gradeRepo,
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
		ids:         ids,
		clock:       clock,
		effects:     effects,
	}
}

// Handle executes the submission.
func (h *SubmitGradeHandler) Handle(ctx context.Context, cmd SubmitGradeCommand) (*SubmitGradeResult, error) {
	if err := cmd.Actor.Authorize("grade", "Submit", shared.ActionSubmitGrade); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	crs, err := h.courseRepo.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("submit_grade: %w", err)
	}

	// Only the assigned instructor may submit grades for the course.
	if crs.InstructorID != cmd.Actor.ID {
		return nil, shared.NewDomainError("grade", "Submit", shared.ErrUnauthorized,
			"only the assigned instructor may submit grades for "+crs.Code.String())
	}

	now := h.clock.Now()
	rec, resubmitted, err := h.loadOrCreate(ctx, cmd, crs, now)
	if err != nil {
		return nil, err
	}

	prevStatus := rec.Status
	if err := rec.Submit(cmd.Marks, cmd.Comment, cmd.Actor.ID, now); err != nil {
		return nil, err
	}

	if resubmitted {
		err = h.gradeRepo.UpdateFromStatus(ctx, rec, prevStatus)
	} else {
		err = h.gradeRepo.Create(ctx, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("submit_grade: %w", err)
	}

	h.fanOut(ctx, cmd, rec, crs, string(prevStatus), now)

	return &SubmitGradeResult{
		GradeID:     rec.ID,
		TotalMark:   rec.TotalMark,
		Letter:      rec.Letter,
		GradePoints: rec.GradePoints,
		Resubmitted: resubmitted,
	}, nil
}

// loadOrCreate fetches the existing record for the unique key or creates a
// fresh draft.
func (h *SubmitGradeHandler) loadOrCreate(ctx context.Context, cmd SubmitGradeCommand, crs *course.Course, now time.Time) (*grade.Record, bool, error) {
	rec, err := h.gradeRepo.GetByKey(ctx, cmd.StudentID, cmd.CourseID, cmd.AcademicYear)
	if err == nil {
		return rec, true, nil
	}
	if !shared.IsNotFound(err) {
		return nil, false, fmt.Errorf("submit_grade: %w", err)
	}

	rec, err = grade.NewRecord(grade.NewRecordParams{
		ID:           h.ids.GenerateID(),
		StudentID:    cmd.StudentID,
		CourseID:     crs.ID,
		CourseCode:   crs.Code,
		InstructorID: crs.InstructorID,
		Department:   crs.Department,
		AcademicYear: cmd.AcademicYear,
		Semester:     cmd.Semester,
		Now:          now,
	})
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

// fanOut emits the best-effort side effects of a submission.
func (h *SubmitGradeHandler) fanOut(ctx context.Context, cmd SubmitGradeCommand, rec *grade.Record, crs *course.Course, fromStatus string, now time.Time) {
	h.effects.Audit(ctx, cmd.Actor.ID, "grade.submit", rec.ID, map[string]any{
		"student_id":  rec.StudentID.String(),
		"course_code": rec.CourseCode.String(),
		"total_mark":  rec.TotalMark,
		"letter":      rec.Letter.String(),
	})

	if head, err := h.studentRepo.GetDepartmentHead(ctx, crs.Department); err == nil {
		h.effects.Notify(ctx, head.ID,
			"Grade submitted for review",
			fmt.Sprintf("%s: grade for course %s awaits your review.", rec.StudentID, rec.CourseCode),
			notification.CategoryGrade,
			"/grades/"+rec.ID)
	}

	h.effects.Publish(ctx, shared.GradeTransitionedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventGradeSubmitted, rec.ID, now),
		GradeID:      rec.ID,
		StudentID:    rec.StudentID,
		CourseID:     rec.CourseID,
		CourseCode:   rec.CourseCode,
		AcademicYear: rec.AcademicYear,
		Semester:     rec.Semester,
		FromStatus:   fromStatus,
		ToStatus:     rec.Status.String(),
		LetterGrade:  rec.Letter.String(),
		ActorID:      cmd.Actor.ID,
	})
}
