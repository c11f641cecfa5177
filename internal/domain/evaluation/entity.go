// Package evaluation contains instructor evaluations and the completion
// arithmetic that gates semester registration.
package evaluation

import (
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Evaluation is one student's evaluation of an instructor for a course they
// completed. Unique per (student, course, academic year).
type Evaluation struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	StudentID    shared.UserID
	CourseID     shared.CourseID
	InstructorID shared.UserID
	AcademicYear shared.AcademicYear

	// Rating - overall rating, 1-5.
	Rating int

	// Comment - optional free text.
	Comment string

	SubmittedAt time.Time
}

// NewEvaluationParams contains the parameters for submitting an evaluation.
type NewEvaluationParams struct {
	ID           string
	StudentID    shared.UserID
	CourseID     shared.CourseID
	InstructorID shared.UserID
	AcademicYear shared.AcademicYear
	Rating       int
	Comment      string
	Now          time.Time
}

// NewEvaluation creates an evaluation with validation.
func NewEvaluation(p NewEvaluationParams) (*Evaluation, error) {
	if p.ID == "" {
		return nil, shared.Validationf("evaluation", "Create", "evaluation id is required")
	}
	if p.StudentID.IsEmpty() || p.CourseID.IsEmpty() || p.InstructorID.IsEmpty() {
		return nil, shared.Validationf("evaluation", "Create", "student, course and instructor are required")
	}
	if !p.AcademicYear.IsValid() {
		return nil, shared.Validationf("evaluation", "Create", "invalid academic year %q", p.AcademicYear)
	}
	if p.Rating < 1 || p.Rating > 5 {
		return nil, shared.Validationf("evaluation", "Create", "rating %d out of range 1-5", p.Rating)
	}

	return &Evaluation{
		ID:           p.ID,
		StudentID:    p.StudentID,
		CourseID:     p.CourseID,
		InstructorID: p.InstructorID,
		AcademicYear: p.AcademicYear,
		Rating:       p.Rating,
		Comment:      p.Comment,
		SubmittedAt:  p.Now.UTC(),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Completion arithmetic (derived, not persisted)
// ─────────────────────────────────────────────────────────────────────────────

// Pair identifies one required evaluation: the course and its instructor.
type Pair struct {
	CourseID     shared.CourseID
	InstructorID shared.UserID
}

// RequiredPairs derives the evaluations a student owes for an academic year:
// one per settled grade.
func RequiredPairs(settled []*grade.Record) []Pair {
	var pairs []Pair
	seen := make(map[Pair]bool)
	for _, rec := range settled {
		if !rec.Status.IsSettled() {
			continue
		}
		p := Pair{CourseID: rec.CourseID, InstructorID: rec.InstructorID}
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// Outstanding returns the required pairs not yet covered by a submitted
// evaluation. The length of the result is the registration-blocking deficit.
func Outstanding(required []Pair, submitted []*Evaluation) []Pair {
	done := make(map[Pair]bool, len(submitted))
	for _, e := range submitted {
		done[Pair{CourseID: e.CourseID, InstructorID: e.InstructorID}] = true
	}

	var missing []Pair
	for _, p := range required {
		if !done[p] {
			missing = append(missing, p)
		}
	}
	return missing
}
