package student

import (
	"math"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
)

// ══════════════════════════════════════════════════════════════════════════════
// STANDING CALCULATOR
// Aggregates settled grades into CGPA and credit totals and derives the
// probation/dismissal standing. Pure functions; persistence stays outside.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultMinCoursesForStanding is how many qualifying courses must exist
// before probation/dismissal is derived at all. Guards against judging a
// student on one or two grades.
const DefaultMinCoursesForStanding = 3

// CGPA thresholds for standing derivation.
const (
	DismissalCGPA = 1.0
	ProbationCGPA = 2.0
)

// CreditGrade is one settled grade joined to its course credit weight.
type CreditGrade struct {
	Letter      grade.LetterGrade
	GradePoints float64
	Credits     int
}

// StandingChange classifies the single notification-worthy outcome of a
// recomputation.
type StandingChange string

const (
	// ChangeNone - the derived triple did not change.
	ChangeNone StandingChange = ""
	// ChangeDismissal - the student fell below the dismissal threshold.
	ChangeDismissal StandingChange = "dismissal"
	// ChangeProbation - the student fell below the probation threshold.
	ChangeProbation StandingChange = "probation"
	// ChangeImproved - the student left probation or dismissal territory.
	ChangeImproved StandingChange = "improved"
)

// Assessment is the result of one standing recomputation: the new standing,
// the derived account status, and at most one change classification.
type Assessment struct {
	Standing      Standing
	AccountStatus AccountStatus
	Change        StandingChange
}

// ComputeCGPA returns the credit-weighted CGPA (rounded to 2 decimals) and
// total credits over the qualifying grades. Administrative letters must be
// filtered out by the caller via Qualifying.
func ComputeCGPA(grades []CreditGrade) (cgpa float64, totalCredits int) {
	var weighted float64
	for _, g := range grades {
		weighted += g.GradePoints * float64(g.Credits)
		totalCredits += g.Credits
	}
	if totalCredits == 0 {
		return 0, 0
	}
	cgpa = math.Round(weighted/float64(totalCredits)*100) / 100
	return cgpa, totalCredits
}

// Qualifying filters to grades that participate in CGPA (drops W, I, NG).
func Qualifying(grades []CreditGrade) []CreditGrade {
	out := make([]CreditGrade, 0, len(grades))
	for _, g := range grades {
		if g.Letter.CountsTowardGPA() {
			out = append(out, g)
		}
	}
	return out
}

// Assess recomputes standing from the student's settled grades and derives
// the account-status consequence. minCourses is the qualifying-course floor
// below which probation/dismissal is never derived.
//
// Rules:
//   - cgpa < 1.0: dismissed, account suspended.
//   - 1.0 <= cgpa < 2.0: probation; a suspended account is not reinstated by
//     probation alone.
//   - cgpa >= 2.0: clean; a previously suspended account is reinstated.
//
// The returned Change is non-empty only when the (probation, dismissed,
// status) triple differs from the previous values, and is always a single
// classification regardless of how many fields moved.
func Assess(prev Standing, prevStatus AccountStatus, grades []CreditGrade, minCourses int) Assessment {
	if minCourses <= 0 {
		minCourses = DefaultMinCoursesForStanding
	}

	qualifying := Qualifying(grades)
	cgpa, credits := ComputeCGPA(qualifying)

	next := Standing{
		CGPA:               cgpa,
		TotalCreditsEarned: credits,
		Probation:          prev.Probation,
		Dismissed:          prev.Dismissed,
		LastUpdated:        prev.LastUpdated,
	}
	status := prevStatus

	// Too little data to judge: carry the numbers, keep the flags.
	if len(qualifying) >= minCourses {
		switch {
		case cgpa < DismissalCGPA:
			next.Dismissed = true
			next.Probation = false
			status = AccountSuspended
		case cgpa < ProbationCGPA:
			next.Probation = true
			next.Dismissed = false
		default:
			next.Probation = false
			next.Dismissed = false
			if prevStatus == AccountSuspended {
				status = AccountActive
			}
		}
	}

	change := classifyChange(prev, prevStatus, next, status)
	return Assessment{Standing: next, AccountStatus: status, Change: change}
}

// classifyChange picks the single notification classification for a
// recomputation outcome.
func classifyChange(prev Standing, prevStatus AccountStatus, next Standing, nextStatus AccountStatus) StandingChange {
	if prev.Probation == next.Probation && prev.Dismissed == next.Dismissed && prevStatus == nextStatus {
		return ChangeNone
	}
	switch {
	case next.Dismissed && !prev.Dismissed:
		return ChangeDismissal
	case next.Probation && !prev.Probation:
		return ChangeProbation
	default:
		return ChangeImproved
	}
}
