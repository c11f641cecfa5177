package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

var (
	testNow       = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	registrarUser = shared.Actor{ID: "registrar-1", Role: shared.RoleRegistrar}
	studentActor  = shared.Actor{ID: "student-1", Role: shared.RoleStudent, Department: "Computer Science"}
	headActor     = shared.Actor{ID: "head-1", Role: shared.RoleDepartmentHead, Department: "Computer Science"}
)

func approvedRecord(t *testing.T, id string) *grade.Record {
	t.Helper()
	rec, err := grade.NewRecord(grade.NewRecordParams{
		ID:           id,
		StudentID:    "student-1",
		CourseID:     "course-1",
		CourseCode:   "CS101",
		InstructorID: "instructor-1",
		Department:   "Computer Science",
		AcademicYear: "2025-2026",
		Semester:     1,
		Now:          testNow,
	})
	require.NoError(t, err)
	require.NoError(t, rec.Submit(grade.Marks{Midterm: 25, Continuous: 25, FinalExam: 35}, "", "instructor-1", testNow))
	require.NoError(t, rec.Approve("", "head-1", testNow))
	return rec
}

func TestFinalizeGrade(t *testing.T) {
	repo := newFakeGradeRepo()
	repo.put(approvedRecord(t, "grade-1"))

	h := NewFinalizeGradeHandler(repo, timeutil.NewFakeClock(testNow), NewSideEffects(nil, nil, nil, nil))

	res, err := h.Handle(context.Background(), FinalizeGradeCommand{Actor: registrarUser, GradeID: "grade-1"})
	require.NoError(t, err)
	assert.Equal(t, grade.LetterA, res.Letter)

	stored, err := repo.GetByID(context.Background(), "grade-1")
	require.NoError(t, err)
	assert.Equal(t, grade.StatusFinalized, stored.Status)
	assert.Equal(t, registrarUser.ID, stored.FinalizedBy)
}

func TestFinalizeGrade_Unauthorized(t *testing.T) {
	repo := newFakeGradeRepo()
	repo.put(approvedRecord(t, "grade-1"))

	h := NewFinalizeGradeHandler(repo, timeutil.NewFakeClock(testNow), NewSideEffects(nil, nil, nil, nil))

	_, err := h.Handle(context.Background(), FinalizeGradeCommand{Actor: studentActor, GradeID: "grade-1"})
	assert.True(t, shared.IsUnauthorized(err))
}

func TestFinalizeGrade_NotFound(t *testing.T) {
	h := NewFinalizeGradeHandler(newFakeGradeRepo(), timeutil.NewFakeClock(testNow), NewSideEffects(nil, nil, nil, nil))

	_, err := h.Handle(context.Background(), FinalizeGradeCommand{Actor: registrarUser, GradeID: "missing"})
	assert.True(t, shared.IsNotFound(err))
}

// staleGradeRepo serves a snapshot taken before another writer moved the row,
// forcing the conditioned update to detect the race.
type staleGradeRepo struct {
	*fakeGradeRepo
	stale *grade.Record
}

func (r *staleGradeRepo) GetByID(_ context.Context, _ string) (*grade.Record, error) {
	return r.stale.Clone(), nil
}

func TestFinalizeGrade_RacingFinalizerLoses(t *testing.T) {
	repo := newFakeGradeRepo()
	rec := approvedRecord(t, "grade-1")
	repo.put(rec)
	clock := timeutil.NewFakeClock(testNow)

	// First finalizer wins.
	h := NewFinalizeGradeHandler(repo, clock, NewSideEffects(nil, nil, nil, nil))
	_, err := h.Handle(context.Background(), FinalizeGradeCommand{Actor: registrarUser, GradeID: "grade-1"})
	require.NoError(t, err)

	// The loser read the row while it was still approved.
	loser := NewFinalizeGradeHandler(&staleGradeRepo{fakeGradeRepo: repo, stale: rec}, clock, NewSideEffects(nil, nil, nil, nil))
	_, err = loser.Handle(context.Background(), FinalizeGradeCommand{Actor: registrarUser, GradeID: "grade-1"})
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
}

func TestFinalizeGrade_AlreadyFinalizedIsConflict(t *testing.T) {
	repo := newFakeGradeRepo()
	repo.put(approvedRecord(t, "grade-1"))
	h := NewFinalizeGradeHandler(repo, timeutil.NewFakeClock(testNow), NewSideEffects(nil, nil, nil, nil))

	_, err := h.Handle(context.Background(), FinalizeGradeCommand{Actor: registrarUser, GradeID: "grade-1"})
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), FinalizeGradeCommand{Actor: registrarUser, GradeID: "grade-1"})
	assert.True(t, shared.IsConflict(err))
}
