package registration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

var testNow = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

func newParams() NewRegistrationParams {
	return NewRegistrationParams{
		ID:           "reg-1",
		StudentID:    "student-1",
		AcademicYear: "2025-2026",
		Year:         2,
		Semester:     1,
		Items: []Item{
			{CourseID: "course-1", CourseCode: "CS201", Title: "Algorithms", Credits: 4},
			{CourseID: "course-2", CourseCode: "CS202", Title: "Databases", Credits: 3},
		},
		Sequence: 42,
		Now:      testNow,
	}
}

func TestNewRegistration(t *testing.T) {
	reg, err := NewRegistration(newParams())
	require.NoError(t, err)

	assert.Equal(t, "REG-2025-2026-Y2S1-0042", reg.Number)
	assert.Equal(t, 7, reg.TotalCredits)
	assert.False(t, reg.IsRepeatOnly())
	assert.Equal(t, []shared.CourseCode{"CS201", "CS202"}, reg.CourseCodes())
}

func TestNewRegistration_RepeatOnlyNumber(t *testing.T) {
	p := newParams()
	p.Items = []Item{
		{CourseID: "course-1", CourseCode: "CS101", Title: "Intro", Credits: 3, IsRepeat: true},
	}
	p.Sequence = 7

	reg, err := NewRegistration(p)
	require.NoError(t, err)

	assert.Equal(t, "REP-2025-2026-Y2S1-0007", reg.Number)
	assert.True(t, reg.IsRepeatOnly())
}

func TestNewRegistration_MixedItemsAreNotRepeatOnly(t *testing.T) {
	p := newParams()
	p.Items[0].IsRepeat = true

	reg, err := NewRegistration(p)
	require.NoError(t, err)
	assert.False(t, reg.IsRepeatOnly())
	assert.Equal(t, "REG-2025-2026-Y2S1-0042", reg.Number)
}

func TestNewRegistration_Validation(t *testing.T) {
	p := newParams()
	p.ID = ""
	_, err := NewRegistration(p)
	assert.True(t, shared.IsValidation(err))

	p = newParams()
	p.Items = nil
	_, err = NewRegistration(p)
	assert.True(t, shared.IsValidation(err))

	p = newParams()
	p.Sequence = 0
	_, err = NewRegistration(p)
	assert.True(t, shared.IsValidation(err))

	p = newParams()
	p.AcademicYear = "2025"
	_, err = NewRegistration(p)
	assert.True(t, shared.IsValidation(err))
}

func TestRegistration_IsMutable(t *testing.T) {
	reg, err := NewRegistration(newParams())
	require.NoError(t, err)

	assert.True(t, reg.IsMutable(testNow.Add(time.Hour), false))
	assert.True(t, reg.IsMutable(testNow.Add(GraceWindow-time.Second), false))

	// The grace window closes, and any existing grade closes it early.
	assert.False(t, reg.IsMutable(testNow.Add(GraceWindow), false))
	assert.False(t, reg.IsMutable(testNow.Add(time.Hour), true))
}
