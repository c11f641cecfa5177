// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/evaluation"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION ELIGIBILITY GATE
// Composes evaluation completion, account standing, the open period window
// and the duplicate-registration guard into one ordered decision.
// ══════════════════════════════════════════════════════════════════════════════

// DenialReason classifies why registration is blocked.
type DenialReason string

const (
	DenialEvaluationsPending DenialReason = "evaluations_pending"
	DenialAccountDismissed   DenialReason = "account_dismissed"
	DenialAccountSuspended   DenialReason = "account_suspended"
	DenialPeriodClosed       DenialReason = "period_closed"
	DenialAlreadyRegistered  DenialReason = "already_registered"
)

// EligibilityQuery identifies the student and target semester.
type EligibilityQuery struct {
	StudentID    shared.UserID
	AcademicYear shared.AcademicYear
	Semester     shared.Semester
}

// Validate validates the query.
func (q EligibilityQuery) Validate() error {
	if q.StudentID.IsEmpty() {
		return shared.Validationf("registration", "CheckEligibility", "student_id is required")
	}
	if !q.AcademicYear.IsValid() {
		return shared.Validationf("registration", "CheckEligibility", "invalid academic year %q", q.AcademicYear)
	}
	if !q.Semester.IsValid() {
		return shared.Validationf("registration", "CheckEligibility", "invalid semester %d", q.Semester)
	}
	return nil
}

// EligibilityResult is the gate decision.
type EligibilityResult struct {
	Eligible bool

	// Reason - the first gate that failed, in gate order.
	Reason DenialReason

	// EvaluationDeficit - the exact count of outstanding evaluations when
	// the first gate fails.
	EvaluationDeficit int

	// Period - the open window the decision was made against, when one was
	// found.
	Period *registration.Period
}

// EligibilityHandler handles EligibilityQuery.
type EligibilityHandler struct {
	studentRepo student.Repository
	gradeRepo   grade.Repository
	evalRepo    evaluation.Repository
	regRepo     registration.Repository
	periodRepo  registration.PeriodRepository
	clock       timeutil.Clock
}

// NewEligibilityHandler creates a new EligibilityHandler.
func NewEligibilityHandler(
	studentRepo student.Repository,
	gradeRepo grade.Repository,
	evalRepo evaluation.Repository,
	regRepo registration.Repository,
	periodRepo registration.PeriodRepository,
	clock timeutil.Clock,
) *EligibilityHandler {
	return &EligibilityHandler{
		studentRepo: studentRepo,
		gradeRepo:   gradeRepo,
		evalRepo:    evalRepo,
		regRepo:     regRepo,
		periodRepo:  periodRepo,
		clock:       clock,
	}
}

// Handle evaluates the gates in order and stops at the first failure.
func (h *EligibilityHandler) Handle(ctx context.Context, q EligibilityQuery) (*EligibilityResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("check_eligibility: %w", err)
	}

	// Gate 1: all evaluations for the academic year must be complete.
	deficit, err := h.evaluationDeficit(ctx, q.StudentID, q.AcademicYear)
	if err != nil {
		return nil, err
	}
	if deficit > 0 {
		return &EligibilityResult{Reason: DenialEvaluationsPending, EvaluationDeficit: deficit}, nil
	}

	// Gate 2: account must be neither dismissed nor suspended.
	if stud.Standing.Dismissed {
		return &EligibilityResult{Reason: DenialAccountDismissed}, nil
	}
	if stud.Status == student.AccountSuspended {
		return &EligibilityResult{Reason: DenialAccountSuspended}, nil
	}

	// Gate 3: a registration period must be open (department-specific, else
	// the "All" fallback).
	period, err := registration.ResolveOpenPeriod(ctx, h.periodRepo,
		registration.PeriodCourseRegistration, q.AcademicYear, q.Semester, stud.Department, h.clock.Now())
	if err != nil {
		if errors.Is(err, shared.ErrPeriodClosed) {
			return &EligibilityResult{Reason: DenialPeriodClosed}, nil
		}
		return nil, fmt.Errorf("check_eligibility: %w", err)
	}

	// Gate 4: no registration may already exist for the semester.
	if _, err := h.regRepo.GetForSemester(ctx, q.StudentID, q.AcademicYear, q.Semester); err == nil {
		return &EligibilityResult{Reason: DenialAlreadyRegistered, Period: period}, nil
	} else if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("check_eligibility: %w", err)
	}

	return &EligibilityResult{Eligible: true, Period: period}, nil
}

// evaluationDeficit computes the outstanding evaluation count for the year.
func (h *EligibilityHandler) evaluationDeficit(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) (int, error) {
	settled, err := h.gradeRepo.ListSettledByStudent(ctx, studentID, year)
	if err != nil {
		return 0, fmt.Errorf("check_eligibility: %w", err)
	}
	required := evaluation.RequiredPairs(settled)
	if len(required) == 0 {
		return 0, nil
	}

	submitted, err := h.evalRepo.ListByStudentYear(ctx, studentID, year)
	if err != nil {
		return 0, fmt.Errorf("check_eligibility: %w", err)
	}
	return len(evaluation.Outstanding(required, submitted)), nil
}
