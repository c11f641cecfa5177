// Package eventhandler contains subscribers that react to domain events.
package eventhandler

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/application/command"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
)

// OnGradeFinalized recomputes the student's standing immediately after a grade
// finalizes. Subscribed to grade.finalized and grade.locked; locking can only
// shrink the editable set, but a bulk lock may settle records finalized before
// the handler existed, so both trigger the same recomputation.
type OnGradeFinalized struct {
	recompute *command.RecomputeStandingHandler
	log       *logger.Logger
}

// NewOnGradeFinalized creates the subscriber.
func NewOnGradeFinalized(recompute *command.RecomputeStandingHandler, log *logger.Logger) *OnGradeFinalized {
	if log == nil {
		log = logger.Default()
	}
	return &OnGradeFinalized{recompute: recompute, log: log}
}

// HandlerName implements shared.EventHandler.
func (h *OnGradeFinalized) HandlerName() string {
	return "standing-recompute-on-finalize"
}

// Handle implements shared.EventHandler.
func (h *OnGradeFinalized) Handle(ctx context.Context, event shared.Event) error {
	e, ok := event.(shared.GradeTransitionedEvent)
	if !ok {
		return nil
	}
	// Bulk lock events carry no single student; per-record finalizations do.
	if e.StudentID.IsEmpty() {
		return nil
	}

	result, err := h.recompute.Handle(ctx, command.RecomputeStandingCommand{StudentID: e.StudentID})
	if err != nil {
		h.log.Error("standing recomputation failed",
			logger.String("student_id", e.StudentID.String()),
			logger.String("grade_id", e.GradeID),
			logger.Err(err))
		return err
	}

	h.log.Info("standing recomputed",
		logger.String("student_id", e.StudentID.String()),
		logger.Float64("cgpa", result.Standing.CGPA),
		logger.String("change", string(result.Change)))
	return nil
}
