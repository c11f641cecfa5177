package grade

// LetterGrade is the ordered letter grade enum. NG, W and I are administrative
// grades: no transition in the lifecycle assigns them, they are reserved for
// withdrawal/incomplete workflows.
type LetterGrade string

const (
	LetterAPlus  LetterGrade = "A+"
	LetterA      LetterGrade = "A"
	LetterAMinus LetterGrade = "A-"
	LetterBPlus  LetterGrade = "B+"
	LetterB      LetterGrade = "B"
	LetterBMinus LetterGrade = "B-"
	LetterCPlus  LetterGrade = "C+"
	LetterC      LetterGrade = "C"
	LetterD      LetterGrade = "D"
	LetterF      LetterGrade = "F"
	LetterNG     LetterGrade = "NG"
	LetterW      LetterGrade = "W"
	LetterI      LetterGrade = "I"
)

// IsValid checks that the letter grade is one of the known values.
func (l LetterGrade) IsValid() bool {
	switch l {
	case LetterAPlus, LetterA, LetterAMinus, LetterBPlus, LetterB, LetterBMinus,
		LetterCPlus, LetterC, LetterD, LetterF, LetterNG, LetterW, LetterI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (l LetterGrade) String() string {
	return string(l)
}

// IsFailing reports whether the grade creates a repeat obligation.
func (l LetterGrade) IsFailing() bool {
	return l == LetterF || l == LetterNG
}

// IsAdministrative reports whether the grade is one of the reserved
// withdrawal/incomplete grades.
func (l LetterGrade) IsAdministrative() bool {
	return l == LetterNG || l == LetterW || l == LetterI
}

// CountsTowardGPA reports whether the grade participates in CGPA. F counts
// (as 0.0 points); the administrative grades do not.
func (l LetterGrade) CountsTowardGPA() bool {
	return l.IsValid() && !l.IsAdministrative()
}

// SatisfiesPrerequisite reports whether a finalized grade with this letter
// satisfies a prerequisite on the course.
func (l LetterGrade) SatisfiesPrerequisite() bool {
	return l.CountsTowardGPA() && l != LetterF
}

// band is one row of the grading scale: minimum total mark, letter and points.
type band struct {
	min    int
	letter LetterGrade
	points float64
}

// gradingScale is ordered descending; the first band whose minimum the total
// mark reaches wins.
var gradingScale = []band{
	{90, LetterAPlus, 4.00},
	{85, LetterA, 4.00},
	{80, LetterAMinus, 3.75},
	{75, LetterBPlus, 3.50},
	{70, LetterB, 3.00},
	{65, LetterBMinus, 2.75},
	{60, LetterCPlus, 2.50},
	{50, LetterC, 2.00},
	{40, LetterD, 1.00},
}

// Grade maps a total mark to its letter grade and grade points. It is a pure
// function of the total mark.
func Grade(totalMark int) (LetterGrade, float64) {
	for _, b := range gradingScale {
		if totalMark >= b.min {
			return b.letter, b.points
		}
	}
	return LetterF, 0.00
}

// rank orders letter grades for comparison; higher is better. Administrative
// grades sort below F so they never look like an improvement.
var letterRank = map[LetterGrade]int{
	LetterAPlus:  10,
	LetterA:      9,
	LetterAMinus: 8,
	LetterBPlus:  7,
	LetterB:      6,
	LetterBMinus: 5,
	LetterCPlus:  4,
	LetterC:      3,
	LetterD:      2,
	LetterF:      1,
	LetterNG:     0,
	LetterW:      0,
	LetterI:      0,
}

// Rank returns the ordinal position of the letter grade; higher is better.
func (l LetterGrade) Rank() int {
	return letterRank[l]
}
