package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

func settled(code shared.CourseCode, letter grade.LetterGrade) *grade.Record {
	return &grade.Record{
		ID:         "grade-" + string(code) + "-" + string(letter),
		StudentID:  "student-1",
		CourseID:   shared.CourseID("course-" + string(code)),
		CourseCode: code,
		Status:     grade.StatusFinalized,
		Letter:     letter,
	}
}

func catalogCourse(code shared.CourseCode, prereqs ...shared.CourseCode) *course.Course {
	return &course.Course{
		ID:            shared.CourseID("course-" + string(code)),
		Code:          code,
		Title:         string(code),
		Credits:       3,
		Year:          1,
		Semester:      1,
		Prerequisites: prereqs,
	}
}

func TestPassedCodes(t *testing.T) {
	passed := PassedCodes([]*grade.Record{
		settled("CS101", grade.LetterA),
		settled("CS102", grade.LetterD),
		settled("CS103", grade.LetterF),
		settled("CS104", grade.LetterW),
		settled("CS105", grade.LetterNG),
	})

	assert.True(t, passed["CS101"])
	// D passes a prerequisite; F and administrative letters do not.
	assert.True(t, passed["CS102"])
	assert.False(t, passed["CS103"])
	assert.False(t, passed["CS104"])
	assert.False(t, passed["CS105"])
}

func TestPassedCodes_IgnoresUnsettledRecords(t *testing.T) {
	rec := settled("CS101", grade.LetterA)
	rec.Status = grade.StatusSubmitted

	passed := PassedCodes([]*grade.Record{rec})
	assert.False(t, passed["CS101"])
}

func TestCheckPrerequisites(t *testing.T) {
	passed := map[shared.CourseCode]bool{"CS101": true}

	// No prerequisites: trivially eligible even with no history.
	check := CheckPrerequisites(catalogCourse("CS100"), nil)
	assert.True(t, check.Eligible)
	assert.Empty(t, check.Missing)

	check = CheckPrerequisites(catalogCourse("CS201", "CS101"), passed)
	assert.True(t, check.Eligible)

	check = CheckPrerequisites(catalogCourse("CS301", "CS101", "CS201", "MATH101"), passed)
	assert.False(t, check.Eligible)
	assert.Equal(t, []shared.CourseCode{"CS201", "MATH101"}, check.Missing)
}

func TestRepeatObligations(t *testing.T) {
	obligations := RepeatObligations([]*grade.Record{
		settled("CS101", grade.LetterF),
		settled("MATH101", grade.LetterNG),
		settled("CS102", grade.LetterB),
	})

	require.Len(t, obligations, 2)
	// Sorted by course code.
	assert.Equal(t, shared.CourseCode("CS101"), obligations[0].CourseCode)
	assert.Equal(t, shared.CourseCode("MATH101"), obligations[1].CourseCode)
	assert.Equal(t, shared.CourseID("course-CS101"), obligations[0].CourseID)
}

func TestRepeatObligations_PassingRetakeSupersedes(t *testing.T) {
	obligations := RepeatObligations([]*grade.Record{
		settled("CS101", grade.LetterF),
		settled("CS101", grade.LetterC),
	})
	assert.Empty(t, obligations)
}

func TestRepeatObligations_DGradeIsNotAnObligation(t *testing.T) {
	obligations := RepeatObligations([]*grade.Record{
		settled("CS101", grade.LetterD),
	})
	assert.Empty(t, obligations)
}

func TestRegistrableCourses_RepeatsDominate(t *testing.T) {
	catalog := []*course.Course{
		catalogCourse("CS101"),
		catalogCourse("CS102"),
		catalogCourse("CS201", "CS101"),
	}
	history := []*grade.Record{
		settled("CS101", grade.LetterF),
		settled("CS102", grade.LetterB),
	}

	courses, obligations := RegistrableCourses(catalog, history)

	// The failed course is the only registrable option; the catalog offers
	// nothing else, not even courses the obligation does not cover.
	require.Len(t, obligations, 1)
	assert.Equal(t, shared.CourseCode("CS101"), obligations[0].CourseCode)
	assert.Equal(t, shared.CourseID("course-CS101"), obligations[0].CourseID)
	assert.Empty(t, courses)
}

func TestRegistrableCourses_ObligationOffCatalog(t *testing.T) {
	// MATH101 was failed in a term whose catalog no longer offers it. The
	// obligation must survive the catalog intersection regardless.
	catalog := []*course.Course{
		catalogCourse("CS102"),
	}
	history := []*grade.Record{
		settled("MATH101", grade.LetterF),
	}

	courses, obligations := RegistrableCourses(catalog, history)

	require.Len(t, obligations, 1)
	assert.Equal(t, shared.CourseCode("MATH101"), obligations[0].CourseCode)
	assert.Empty(t, courses)
}

func TestRegistrableCourses_NoObligations(t *testing.T) {
	catalog := []*course.Course{
		catalogCourse("CS101"),
		catalogCourse("CS201", "CS101"),
		catalogCourse("CS301", "CS201"),
	}
	history := []*grade.Record{
		settled("CS101", grade.LetterA),
	}

	courses, obligations := RegistrableCourses(catalog, history)

	assert.Empty(t, obligations)
	// CS101 is already passed, CS301 is gated on CS201.
	require.Len(t, courses, 1)
	assert.Equal(t, shared.CourseCode("CS201"), courses[0].Code)
}

func TestRegistrableCourses_FreshStudent(t *testing.T) {
	catalog := []*course.Course{
		catalogCourse("CS101"),
		catalogCourse("CS201", "CS101"),
	}

	courses, obligations := RegistrableCourses(catalog, nil)

	assert.Empty(t, obligations)
	require.Len(t, courses, 1)
	assert.Equal(t, shared.CourseCode("CS101"), courses[0].Code)
}
