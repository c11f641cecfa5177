package grade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

var (
	testNow        = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	testInstructor = shared.UserID("instructor-1")
	testHead       = shared.UserID("head-1")
	testRegistrar  = shared.UserID("registrar-1")
)

func newDraft(t *testing.T) *Record {
	t.Helper()
	rec, err := NewRecord(NewRecordParams{
		ID:           "grade-1",
		StudentID:    "student-1",
		CourseID:     "course-1",
		CourseCode:   "CS101",
		InstructorID: testInstructor,
		Department:   "Computer Science",
		AcademicYear: "2025-2026",
		Semester:     1,
		Now:          testNow,
	})
	require.NoError(t, err)
	return rec
}

func TestNewRecord_Validation(t *testing.T) {
	_, err := NewRecord(NewRecordParams{StudentID: "s", CourseID: "c", AcademicYear: "2025-2026", Semester: 1})
	assert.True(t, shared.IsValidation(err))

	_, err = NewRecord(NewRecordParams{ID: "g", CourseID: "c", AcademicYear: "2025-2026", Semester: 1})
	assert.True(t, shared.IsValidation(err))

	_, err = NewRecord(NewRecordParams{ID: "g", StudentID: "s", CourseID: "c", AcademicYear: "bad", Semester: 1})
	assert.True(t, shared.IsValidation(err))

	_, err = NewRecord(NewRecordParams{ID: "g", StudentID: "s", CourseID: "c", AcademicYear: "2025-2026", Semester: 3})
	assert.True(t, shared.IsValidation(err))
}

func TestRecord_FullLifecycle(t *testing.T) {
	rec := newDraft(t)
	assert.Equal(t, StatusDraft, rec.Status)

	marks := Marks{Midterm: 28, Continuous: 25, FinalExam: 35}
	require.NoError(t, rec.Submit(marks, "solid work", testInstructor, testNow))
	assert.Equal(t, StatusSubmitted, rec.Status)
	assert.Equal(t, 88, rec.TotalMark)
	assert.Equal(t, LetterA, rec.Letter)
	assert.Equal(t, 4.00, rec.GradePoints)
	assert.False(t, rec.RepeatRequired)
	require.NotNil(t, rec.SubmittedAt)
	assert.Equal(t, testInstructor, rec.SubmittedBy)

	require.NoError(t, rec.Approve("ok", testHead, testNow.Add(time.Hour)))
	assert.Equal(t, StatusApproved, rec.Status)
	assert.Equal(t, testHead, rec.ApprovedBy)

	require.NoError(t, rec.Finalize("", testRegistrar, testNow.Add(2*time.Hour)))
	assert.Equal(t, StatusFinalized, rec.Status)
	assert.True(t, rec.Status.IsSettled())

	require.NoError(t, rec.Lock(testRegistrar, testNow.Add(3*time.Hour)))
	assert.Equal(t, StatusLocked, rec.Status)
}

func TestRecord_RejectAndResubmit(t *testing.T) {
	rec := newDraft(t)
	require.NoError(t, rec.Submit(Marks{Midterm: 10, Continuous: 10, FinalExam: 10}, "", testInstructor, testNow))

	require.NoError(t, rec.Reject("marks look wrong", testHead, testNow))
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Equal(t, "marks look wrong", rec.RejectionReason)
	assert.True(t, rec.Status.IsEditable())

	// Resubmission with corrected marks recomputes the derived grade.
	require.NoError(t, rec.Submit(Marks{Midterm: 20, Continuous: 20, FinalExam: 30}, "corrected", testInstructor, testNow))
	assert.Equal(t, StatusSubmitted, rec.Status)
	assert.Equal(t, 70, rec.TotalMark)
	assert.Equal(t, LetterB, rec.Letter)
}

func TestRecord_RejectRequiresReason(t *testing.T) {
	rec := newDraft(t)
	require.NoError(t, rec.Submit(Marks{Midterm: 10}, "", testInstructor, testNow))

	err := rec.Reject("", testHead, testNow)
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, StatusSubmitted, rec.Status)
}

func TestRecord_FailingSubmissionSetsRepeat(t *testing.T) {
	rec := newDraft(t)
	require.NoError(t, rec.Submit(Marks{Midterm: 10, Continuous: 10, FinalExam: 10}, "", testInstructor, testNow))

	assert.Equal(t, LetterF, rec.Letter)
	assert.True(t, rec.RepeatRequired)
}

func TestRecord_InvalidTransitions(t *testing.T) {
	rec := newDraft(t)

	// Draft cannot skip straight past submission.
	assert.True(t, shared.IsConflict(rec.Approve("", testHead, testNow)))
	assert.True(t, shared.IsConflict(rec.Finalize("", testRegistrar, testNow)))
	assert.True(t, shared.IsConflict(rec.Lock(testRegistrar, testNow)))

	require.NoError(t, rec.Submit(Marks{Midterm: 20, Continuous: 20, FinalExam: 20}, "", testInstructor, testNow))

	// Submitted cannot be resubmitted or finalized.
	assert.True(t, shared.IsConflict(rec.Submit(Marks{}, "", testInstructor, testNow)))
	assert.True(t, shared.IsConflict(rec.Finalize("", testRegistrar, testNow)))

	require.NoError(t, rec.Approve("", testHead, testNow))
	require.NoError(t, rec.Finalize("", testRegistrar, testNow))

	// Finalized grades no longer move backwards.
	assert.True(t, shared.IsConflict(rec.Submit(Marks{}, "", testInstructor, testNow)))
	assert.True(t, shared.IsConflict(rec.Approve("", testHead, testNow)))
}

func TestRecord_LockedIsTerminal(t *testing.T) {
	rec := newDraft(t)
	require.NoError(t, rec.Submit(Marks{Midterm: 20, Continuous: 20, FinalExam: 20}, "", testInstructor, testNow))
	require.NoError(t, rec.Approve("", testHead, testNow))
	require.NoError(t, rec.Finalize("", testRegistrar, testNow))
	require.NoError(t, rec.Lock(testRegistrar, testNow))

	err := rec.Lock(testRegistrar, testNow)
	assert.ErrorIs(t, err, shared.ErrRecordLocked)

	assert.Error(t, rec.Submit(Marks{}, "", testInstructor, testNow))
	assert.Error(t, rec.Approve("", testHead, testNow))
	assert.Error(t, rec.Finalize("", testRegistrar, testNow))
	assert.Equal(t, StatusLocked, rec.Status)
}

func TestRecord_Clone(t *testing.T) {
	rec := newDraft(t)
	clone := rec.Clone()
	require.NotNil(t, clone)

	clone.Status = StatusLocked
	assert.Equal(t, StatusDraft, rec.Status)
}
