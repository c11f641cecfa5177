package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade_Bands(t *testing.T) {
	tests := []struct {
		total  int
		letter LetterGrade
		points float64
	}{
		{100, LetterAPlus, 4.00},
		{90, LetterAPlus, 4.00},
		{89, LetterA, 4.00},
		{85, LetterA, 4.00},
		{84, LetterAMinus, 3.75},
		{80, LetterAMinus, 3.75},
		{79, LetterBPlus, 3.50},
		{75, LetterBPlus, 3.50},
		{74, LetterB, 3.00},
		{70, LetterB, 3.00},
		{69, LetterBMinus, 2.75},
		{65, LetterBMinus, 2.75},
		{64, LetterCPlus, 2.50},
		{60, LetterCPlus, 2.50},
		{59, LetterC, 2.00},
		{50, LetterC, 2.00},
		{49, LetterD, 1.00},
		{40, LetterD, 1.00},
		{39, LetterF, 0.00},
		{0, LetterF, 0.00},
	}

	for _, tt := range tests {
		letter, points := Grade(tt.total)
		assert.Equal(t, tt.letter, letter, "total %d", tt.total)
		assert.Equal(t, tt.points, points, "total %d", tt.total)
	}
}

func TestGrade_ComponentMaximaSumToA(t *testing.T) {
	m := Marks{Midterm: 28, Continuous: 25, FinalExam: 35}
	assert.NoError(t, m.Validate())
	assert.Equal(t, 88, m.Total())

	letter, points := Grade(m.Total())
	assert.Equal(t, LetterA, letter)
	assert.Equal(t, 4.00, points)
}

func TestGrade_Monotonic(t *testing.T) {
	prevRank := -1
	for total := 0; total <= 100; total++ {
		letter, _ := Grade(total)
		rank := letter.Rank()
		assert.GreaterOrEqual(t, rank, prevRank, "rank must not drop at total %d", total)
		prevRank = rank
	}
}

func TestLetterGrade_Classification(t *testing.T) {
	assert.True(t, LetterF.IsFailing())
	assert.True(t, LetterNG.IsFailing())
	assert.False(t, LetterD.IsFailing())

	// F counts toward GPA as 0.0; administrative grades do not count at all.
	assert.True(t, LetterF.CountsTowardGPA())
	assert.False(t, LetterNG.CountsTowardGPA())
	assert.False(t, LetterW.CountsTowardGPA())
	assert.False(t, LetterI.CountsTowardGPA())

	// F never satisfies a prerequisite; D does.
	assert.False(t, LetterF.SatisfiesPrerequisite())
	assert.True(t, LetterD.SatisfiesPrerequisite())
	assert.False(t, LetterW.SatisfiesPrerequisite())
}

func TestMarks_Validate(t *testing.T) {
	assert.NoError(t, Marks{Midterm: 30, Continuous: 30, FinalExam: 40}.Validate())
	assert.NoError(t, Marks{}.Validate())

	err := Marks{Midterm: 31}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "midterm")

	err = Marks{Continuous: -1}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "continuous")

	err = Marks{FinalExam: 41}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "final exam")
}
