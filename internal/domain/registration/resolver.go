package registration

import (
	"sort"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREREQUISITE & REPEAT RESOLVER
// Pure functions over the student's settled grade history. Repeat obligations
// strictly dominate: when any exist, they are the only registrable courses.
// ══════════════════════════════════════════════════════════════════════════════

// PrerequisiteCheck is the outcome of checking one course against a student's
// history.
type PrerequisiteCheck struct {
	Eligible bool

	// Missing lists the specific prerequisite codes not yet passed, so the
	// caller can display them.
	Missing []shared.CourseCode
}

// Obligation is one mandatory repeat: a previously failed course not yet
// superseded by a passing retake.
type Obligation struct {
	CourseID   shared.CourseID
	CourseCode shared.CourseCode
}

// PassedCodes computes the set of course codes for which the student holds a
// settled grade whose letter satisfies prerequisites (not F, NG, W, I).
func PassedCodes(settled []*grade.Record) map[shared.CourseCode]bool {
	passed := make(map[shared.CourseCode]bool)
	for _, rec := range settled {
		if !rec.Status.IsSettled() {
			continue
		}
		if rec.Letter.SatisfiesPrerequisite() {
			passed[rec.CourseCode] = true
		}
	}
	return passed
}

// CheckPrerequisites determines whether the student may take the course. A
// course with no prerequisites is trivially eligible regardless of history.
func CheckPrerequisites(c *course.Course, passed map[shared.CourseCode]bool) PrerequisiteCheck {
	if !c.HasPrerequisites() {
		return PrerequisiteCheck{Eligible: true}
	}

	var missing []shared.CourseCode
	for _, code := range c.Prerequisites {
		if !passed[code] {
			missing = append(missing, code)
		}
	}
	return PrerequisiteCheck{Eligible: len(missing) == 0, Missing: missing}
}

// RepeatObligations returns the student's outstanding repeat obligations:
// every settled failing grade (F/NG) whose course has no later settled
// passing attempt. Results are sorted by course code for determinism.
func RepeatObligations(settled []*grade.Record) []Obligation {
	type history struct {
		failed   bool
		passed   bool
		courseID shared.CourseID
	}
	byCode := make(map[shared.CourseCode]*history)

	for _, rec := range settled {
		if !rec.Status.IsSettled() {
			continue
		}
		h := byCode[rec.CourseCode]
		if h == nil {
			h = &history{courseID: rec.CourseID}
			byCode[rec.CourseCode] = h
		}
		if rec.Letter.IsFailing() {
			h.failed = true
		} else if rec.Letter.SatisfiesPrerequisite() {
			h.passed = true
		}
	}

	var obligations []Obligation
	for code, h := range byCode {
		if h.failed && !h.passed {
			obligations = append(obligations, Obligation{CourseID: h.courseID, CourseCode: code})
		}
	}
	sort.Slice(obligations, func(i, j int) bool {
		return obligations[i].CourseCode < obligations[j].CourseCode
	})
	return obligations
}

// RegistrableCourses resolves the full registrable set for a student. When
// repeat obligations exist they are returned exclusively and no catalog
// courses are offered: an obligation stays registrable even when its course
// is not in the current-term catalog, so callers resolve the obligated
// courses by ID instead. Without obligations the catalog is filtered by
// prerequisite eligibility.
func RegistrableCourses(catalog []*course.Course, settled []*grade.Record) (courses []*course.Course, obligations []Obligation) {
	obligations = RepeatObligations(settled)
	if len(obligations) > 0 {
		return nil, obligations
	}

	passed := PassedCodes(settled)
	for _, c := range catalog {
		// A course already passed is not offered again.
		if passed[c.Code] {
			continue
		}
		if CheckPrerequisites(c, passed).Eligible {
			courses = append(courses, c)
		}
	}
	return courses, nil
}
