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
// RECOMPUTE STANDING COMMAND
// Aggregates settled grades into CGPA/credits and applies the derived
// probation/dismissal standing. Runs after every finalization via the event
// handler; idempotent, so it can also be run manually.
// ══════════════════════════════════════════════════════════════════════════════

// RecomputeStandingCommand identifies the student to recompute.
type RecomputeStandingCommand struct {
	StudentID shared.UserID

	// AcademicYear - optional filter; empty aggregates the full history.
	AcademicYear shared.AcademicYear
}

// Validate validates the command.
func (c RecomputeStandingCommand) Validate() error {
	if c.StudentID.IsEmpty() {
		return shared.Validationf("standing", "Recompute", "student_id is required")
	}
	return nil
}

// RecomputeStandingResult is the outcome of a recomputation.
type RecomputeStandingResult struct {
	Standing student.Standing
	Status   student.AccountStatus
	Change   student.StandingChange
}

// RecomputeStandingHandler handles RecomputeStandingCommand.
type RecomputeStandingHandler struct {
	studentRepo student.Repository
	gradeRepo   grade.Repository
	courseRepo  course.Repository
	cache       student.StandingCache
	clock       timeutil.Clock
	effects     *SideEffects

	// minCourses is the qualifying-course floor before standing is judged.
	minCourses int

	// cacheTTL bounds staleness of the standing cache.
	cacheTTL time.Duration
}

// NewRecomputeStandingHandler creates a new RecomputeStandingHandler.
// cache may be nil when Redis is disabled.
func NewRecomputeStandingHandler(
	studentRepo student.Repository,
	gradeRepo grade.Repository,
	courseRepo course.Repository,
	cache student.StandingCache,
	clock timeutil.Clock,
	effects *SideEffects,
	minCourses int,
) *RecomputeStandingHandler {
	if minCourses <= 0 {
		minCourses = student.DefaultMinCoursesForStanding
	}
	return &RecomputeStandingHandler{
		studentRepo: studentRepo,
		gradeRepo:   gradeRepo,
		courseRepo:  courseRepo,
		cache:       cache,
		clock:       clock,
		effects:     effects,
		minCourses:  minCourses,
		cacheTTL:    15 * time.Minute,
	}
}

// Handle executes the recomputation.
func (h *RecomputeStandingHandler) Handle(ctx context.Context, cmd RecomputeStandingCommand) (*RecomputeStandingResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("recompute_standing: %w", err)
	}

	creditGrades, err := h.loadCreditGrades(ctx, cmd.StudentID, cmd.AcademicYear)
	if err != nil {
		return nil, err
	}

	assessment := student.Assess(stud.Standing, stud.Status, creditGrades, h.minCourses)

	now := h.clock.Now()
	stud.ApplyAssessment(assessment, now)
	if err := h.studentRepo.UpdateStanding(ctx, stud.ID, stud.Standing, stud.Status); err != nil {
		return nil, fmt.Errorf("recompute_standing: %w", err)
	}

	if h.cache != nil {
		// Refresh rather than invalidate: the fresh value is already in hand.
		_ = h.cache.SetStanding(ctx, stud.ID.String(), stud.Standing, h.cacheTTL)
	}

	h.notifyChange(ctx, stud, assessment, now)

	return &RecomputeStandingResult{
		Standing: stud.Standing,
		Status:   stud.Status,
		Change:   assessment.Change,
	}, nil
}

// loadCreditGrades joins the student's settled grades to their course credit
// weights.
func (h *RecomputeStandingHandler) loadCreditGrades(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) ([]student.CreditGrade, error) {
	settled, err := h.gradeRepo.ListSettledByStudent(ctx, studentID, year)
	if err != nil {
		return nil, fmt.Errorf("recompute_standing: %w", err)
	}
	if len(settled) == 0 {
		return nil, nil
	}

	ids := make([]shared.CourseID, 0, len(settled))
	for _, rec := range settled {
		ids = append(ids, rec.CourseID)
	}
	courses, err := h.courseRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("recompute_standing: %w", err)
	}
	creditByID := make(map[shared.CourseID]int, len(courses))
	for _, c := range courses {
		creditByID[c.ID] = c.Credits.Int()
	}

	out := make([]student.CreditGrade, 0, len(settled))
	for _, rec := range settled {
		credits, ok := creditByID[rec.CourseID]
		if !ok {
			return nil, shared.WrapError("standing", "Recompute", shared.ErrNotFound,
				"course missing for settled grade", shared.ErrCourseNotFound)
		}
		out = append(out, student.CreditGrade{
			Letter:      rec.Letter,
			GradePoints: rec.GradePoints,
			Credits:     credits,
		})
	}
	return out, nil
}

// notifyChange emits exactly one standing-change notification when the
// derived triple moved, never more.
func (h *RecomputeStandingHandler) notifyChange(ctx context.Context, stud *student.User, a student.Assessment, now time.Time) {
	if a.Change == student.ChangeNone {
		return
	}

	var title, message string
	switch a.Change {
	case student.ChangeDismissal:
		title = "Academic dismissal"
		message = fmt.Sprintf("Your CGPA of %.2f has fallen below %.1f. Your account has been suspended; contact the registrar's office.", a.Standing.CGPA, student.DismissalCGPA)
	case student.ChangeProbation:
		title = "Academic probation"
		message = fmt.Sprintf("Your CGPA of %.2f places you on academic probation. A CGPA of %.1f or higher clears it.", a.Standing.CGPA, student.ProbationCGPA)
	case student.ChangeImproved:
		title = "Academic standing improved"
		message = fmt.Sprintf("Your CGPA of %.2f has restored your academic standing.", a.Standing.CGPA)
	}

	h.effects.Notify(ctx, stud.ID, title, message, notification.CategoryStanding, "/standing")

	h.effects.Publish(ctx, shared.StandingChangedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStandingChanged, stud.ID.String(), now),
		StudentID: stud.ID,
		CGPA:      a.Standing.CGPA,
		Probation: a.Standing.Probation,
		Dismissed: a.Standing.Dismissed,
		Change:    string(a.Change),
	})
}
