package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCK GRADES COMMAND
// Registrar bulk lock for a year/semester, optionally scoped to one
// department. Irreversible; emits one grouped notification per affected
// student listing the locked course codes.
// ══════════════════════════════════════════════════════════════════════════════

// LockGradesCommand contains the lock scope.
type LockGradesCommand struct {
	// Actor performing the lock.
	Actor shared.Actor

	// AcademicYear and Semester to lock.
	AcademicYear shared.AcademicYear
	Semester     shared.Semester

	// Department - optional scope; empty locks all departments.
	Department shared.Department
}

// Validate validates the command.
func (c LockGradesCommand) Validate() error {
	if !c.AcademicYear.IsValid() {
		return shared.Validationf("grade", "Lock", "invalid academic year %q", c.AcademicYear)
	}
	if !c.Semester.IsValid() {
		return shared.Validationf("grade", "Lock", "invalid semester %d", c.Semester)
	}
	return nil
}

// LockGradesResult reports the bulk outcome.
type LockGradesResult struct {
	Locked  int
	Skipped int
}

// LockGradesHandler handles LockGradesCommand.
type LockGradesHandler struct {
	gradeRepo grade.Repository
	clock     timeutil.Clock
	effects   *SideEffects
	log       *logger.Logger
}

// NewLockGradesHandler creates a new LockGradesHandler.
func NewLockGradesHandler(gradeRepo grade.Repository, clock timeutil.Clock, effects *SideEffects, log *logger.Logger) *LockGradesHandler {
	if log == nil {
		log = logger.Default()
	}
	return &LockGradesHandler{gradeRepo: gradeRepo, clock: clock, effects: effects, log: log}
}

// Handle executes the bulk lock. Records that race to a different state
// between listing and locking are skipped, not failed.
func (h *LockGradesHandler) Handle(ctx context.Context, cmd LockGradesCommand) (*LockGradesResult, error) {
	if err := cmd.Actor.Authorize("grade", "Lock", shared.ActionLockGrades); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	records, err := h.gradeRepo.ListFinalized(ctx, cmd.AcademicYear, cmd.Semester, cmd.Department)
	if err != nil {
		return nil, fmt.Errorf("lock_grades: %w", err)
	}

	now := h.clock.Now()
	result := &LockGradesResult{}
	lockedByStudent := make(map[shared.UserID][]string)

	for _, rec := range records {
		prev := rec.Status
		if err := rec.Lock(cmd.Actor.ID, now); err != nil {
			result.Skipped++
			continue
		}
		if err := h.gradeRepo.UpdateFromStatus(ctx, rec, prev); err != nil {
			if shared.IsConflict(err) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("lock_grades: %w", err)
		}

		result.Locked++
		lockedByStudent[rec.StudentID] = append(lockedByStudent[rec.StudentID], rec.CourseCode.String())

		h.effects.Audit(ctx, cmd.Actor.ID, "grade.lock", rec.ID, map[string]any{
			"student_id":  rec.StudentID.String(),
			"course_code": rec.CourseCode.String(),
		})
	}

	// One grouped notification per student.
	for studentID, codes := range lockedByStudent {
		sort.Strings(codes)
		h.effects.Notify(ctx, studentID,
			"Grades locked",
			fmt.Sprintf("Your grades for %s are now locked: %s.", cmd.AcademicYear, strings.Join(codes, ", ")),
			notification.CategoryGrade,
			"/grades")
	}

	h.effects.Publish(ctx, shared.GradeTransitionedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventGradesLocked, string(cmd.AcademicYear), now),
		AcademicYear: cmd.AcademicYear,
		Semester:     cmd.Semester,
		ToStatus:     grade.StatusLocked.String(),
		ActorID:      cmd.Actor.ID,
	})

	h.log.Info("bulk grade lock finished",
		logger.String("academic_year", cmd.AcademicYear.String()),
		logger.Int("semester", cmd.Semester.Int()),
		logger.Int("locked", result.Locked),
		logger.Int("skipped", result.Skipped))

	return result, nil
}
