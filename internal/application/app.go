// Package application wires the command handlers, query handlers and event
// subscribers into one unit a transport can serve.
package application

import (
	"fmt"

	"github.com/unihub/academic-records-hub/internal/application/command"
	"github.com/unihub/academic-records-hub/internal/application/eventhandler"
	"github.com/unihub/academic-records-hub/internal/application/query"
	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
)

// Application groups the wired handlers. Transports depend on this struct,
// never on the wiring.
type Application struct {
	SubmitGrade       *command.SubmitGradeHandler
	ReviewGrade       *command.ReviewGradeHandler
	FinalizeGrade     *command.FinalizeGradeHandler
	LockGrades        *command.LockGradesHandler
	RegisterSemester  *command.RegisterSemesterHandler
	SubmitEvaluation  *command.SubmitEvaluationHandler
	SaveDraft         *command.SavePlacementDraftHandler
	SubmitPlacement   *command.SubmitPlacementHandler
	ReviewPlacement   *command.ReviewPlacementHandler
	BulkReview        *command.BulkReviewPlacementsHandler
	OpenPeriod        *command.OpenPeriodHandler
	ClosePeriod       *command.ClosePeriodHandler
	CreateAccount     *command.CreateAccountHandler
	RecomputeStanding *command.RecomputeStandingHandler

	Eligibility        *query.EligibilityHandler
	RegistrableCourses *query.RegistrableCoursesHandler
	Standing           *query.AcademicStandingHandler
	Ranking            *query.PlacementRankingHandler
	PendingEvaluations *query.PendingEvaluationsHandler
	Transcript         *query.TranscriptHandler
	RepeatCourses      *query.RepeatCoursesHandler
	Prerequisites      *query.PrerequisitesHandler
}

// Subscribe attaches the application's event handlers to the bus: standing
// recomputation on settled grades and ranking invalidation on placement
// changes. rankingCache may be nil when Redis is disabled.
func (a *Application) Subscribe(bus shared.EventBus, rankingCache placement.RankingCache, log *logger.Logger) error {
	onFinalized := eventhandler.NewOnGradeFinalized(a.RecomputeStanding, log)
	for _, t := range []shared.EventType{shared.EventGradeFinalized, shared.EventGradesLocked} {
		if err := bus.Subscribe(t, onFinalized); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}

	if rankingCache != nil {
		onPlacement := eventhandler.NewOnPlacementChanged(rankingCache, log)
		for _, t := range []shared.EventType{
			shared.EventPlacementSubmitted,
			shared.EventPlacementApproved,
			shared.EventPlacementRejected,
		} {
			if err := bus.Subscribe(t, onPlacement); err != nil {
				return fmt.Errorf("subscribe %s: %w", t, err)
			}
		}
	}

	return nil
}
