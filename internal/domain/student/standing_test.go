package student

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
)

func cg(letter grade.LetterGrade, points float64, credits int) CreditGrade {
	return CreditGrade{Letter: letter, GradePoints: points, Credits: credits}
}

func TestComputeCGPA(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterA, 4.00, 3),
		cg(grade.LetterB, 3.00, 4),
		cg(grade.LetterC, 2.00, 3),
	}

	cgpa, credits := ComputeCGPA(grades)
	// (4*3 + 3*4 + 2*3) / 10 = 3.00
	assert.Equal(t, 3.00, cgpa)
	assert.Equal(t, 10, credits)
}

func TestComputeCGPA_Rounding(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterA, 4.00, 3),
		cg(grade.LetterBMinus, 2.75, 3),
		cg(grade.LetterD, 1.00, 3),
	}

	cgpa, credits := ComputeCGPA(grades)
	// (12 + 8.25 + 3) / 9 = 2.5833... -> 2.58
	assert.Equal(t, 2.58, cgpa)
	assert.Equal(t, 9, credits)
}

func TestComputeCGPA_Empty(t *testing.T) {
	cgpa, credits := ComputeCGPA(nil)
	assert.Equal(t, 0.0, cgpa)
	assert.Equal(t, 0, credits)
}

func TestQualifying_DropsAdministrativeLetters(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterA, 4.00, 3),
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterW, 0.00, 3),
		cg(grade.LetterI, 0.00, 3),
		cg(grade.LetterNG, 0.00, 3),
	}

	q := Qualifying(grades)
	assert.Len(t, q, 2)
	assert.Equal(t, grade.LetterA, q[0].Letter)
	assert.Equal(t, grade.LetterF, q[1].Letter)
}

func TestAssess_FCountsAsZero(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterA, 4.00, 3),
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterF, 0.00, 3),
	}

	a := Assess(Standing{}, AccountActive, grades, 3)
	// 12 / 9 = 1.33: probation, not dismissal.
	assert.Equal(t, 1.33, a.Standing.CGPA)
	assert.True(t, a.Standing.Probation)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, AccountActive, a.AccountStatus)
	assert.Equal(t, ChangeProbation, a.Change)
}

func TestAssess_DismissalSuspendsAccount(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterD, 1.00, 3),
	}

	a := Assess(Standing{}, AccountActive, grades, 3)
	assert.Equal(t, 0.33, a.Standing.CGPA)
	assert.True(t, a.Standing.Dismissed)
	assert.False(t, a.Standing.Probation)
	assert.Equal(t, AccountSuspended, a.AccountStatus)
	assert.Equal(t, ChangeDismissal, a.Change)
}

func TestAssess_ExactlyOneIsProbation(t *testing.T) {
	// CGPA exactly at the dismissal threshold is probation, not dismissal.
	grades := []CreditGrade{
		cg(grade.LetterD, 1.00, 3),
		cg(grade.LetterD, 1.00, 3),
		cg(grade.LetterD, 1.00, 3),
	}

	a := Assess(Standing{}, AccountActive, grades, 3)
	assert.Equal(t, 1.00, a.Standing.CGPA)
	assert.True(t, a.Standing.Probation)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, AccountActive, a.AccountStatus)
}

func TestAssess_ExactlyTwoIsClean(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterC, 2.00, 3),
		cg(grade.LetterC, 2.00, 3),
		cg(grade.LetterC, 2.00, 3),
	}

	a := Assess(Standing{}, AccountActive, grades, 3)
	assert.Equal(t, 2.00, a.Standing.CGPA)
	assert.False(t, a.Standing.Probation)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, ChangeNone, a.Change)
}

func TestAssess_TooFewCoursesCarriesNumbersOnly(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterF, 0.00, 3),
	}

	a := Assess(Standing{}, AccountActive, grades, 3)
	assert.Equal(t, 0.00, a.Standing.CGPA)
	assert.Equal(t, 6, a.Standing.TotalCreditsEarned)
	assert.False(t, a.Standing.Probation)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, AccountActive, a.AccountStatus)
	assert.Equal(t, ChangeNone, a.Change)
}

func TestAssess_AdministrativeGradesDoNotCountTowardMinimum(t *testing.T) {
	// Two qualifying grades plus three withdrawals is still below the floor.
	grades := []CreditGrade{
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterW, 0.00, 3),
		cg(grade.LetterW, 0.00, 3),
		cg(grade.LetterNG, 0.00, 3),
	}

	a := Assess(Standing{}, AccountActive, grades, 3)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, ChangeNone, a.Change)
}

func TestAssess_Idempotent(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterD, 1.00, 3),
		cg(grade.LetterD, 1.00, 3),
		cg(grade.LetterD, 1.00, 3),
	}

	first := Assess(Standing{}, AccountActive, grades, 3)
	assert.Equal(t, ChangeProbation, first.Change)

	second := Assess(first.Standing, first.AccountStatus, grades, 3)
	assert.Equal(t, ChangeNone, second.Change)
	assert.Equal(t, first.Standing.Probation, second.Standing.Probation)
	assert.Equal(t, first.AccountStatus, second.AccountStatus)
}

func TestAssess_RecoveryReinstatesSuspendedAccount(t *testing.T) {
	prev := Standing{CGPA: 0.50, Dismissed: true}

	grades := []CreditGrade{
		cg(grade.LetterB, 3.00, 3),
		cg(grade.LetterB, 3.00, 3),
		cg(grade.LetterB, 3.00, 3),
	}

	a := Assess(prev, AccountSuspended, grades, 3)
	assert.False(t, a.Standing.Dismissed)
	assert.False(t, a.Standing.Probation)
	assert.Equal(t, AccountActive, a.AccountStatus)
	assert.Equal(t, ChangeImproved, a.Change)
}

func TestAssess_ProbationDoesNotReinstate(t *testing.T) {
	prev := Standing{CGPA: 0.50, Dismissed: true}

	grades := []CreditGrade{
		cg(grade.LetterD, 1.00, 3),
		cg(grade.LetterC, 2.00, 3),
		cg(grade.LetterD, 1.00, 3),
	}

	a := Assess(prev, AccountSuspended, grades, 3)
	assert.True(t, a.Standing.Probation)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, AccountSuspended, a.AccountStatus)
}

func TestAssess_MinCoursesFallback(t *testing.T) {
	grades := []CreditGrade{
		cg(grade.LetterF, 0.00, 3),
		cg(grade.LetterF, 0.00, 3),
	}

	// Zero floor falls back to the default, which two courses stay under.
	a := Assess(Standing{}, AccountActive, grades, 0)
	assert.False(t, a.Standing.Dismissed)
	assert.Equal(t, ChangeNone, a.Change)
}
