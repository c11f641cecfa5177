package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/application/query"
	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/evaluation"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

const testYear = shared.AcademicYear("2025-2026")

type regFixture struct {
	gradeRepo   *fakeGradeRepo
	studentRepo *fakeStudentRepo
	regRepo     *fakeRegRepo
	periodRepo  *fakePeriodRepo
	evalRepo    *fakeEvalRepo
	handler     *RegisterSemesterHandler
}

func newRegFixture(t *testing.T) *regFixture {
	t.Helper()

	f := &regFixture{
		gradeRepo:   newFakeGradeRepo(),
		studentRepo: newFakeStudentRepo(),
		regRepo:     newFakeRegRepo(),
		periodRepo:  &fakePeriodRepo{},
		evalRepo:    &fakeEvalRepo{},
	}

	f.studentRepo.put(&student.User{
		ID:              "student-1",
		StudentNumber:   "S-0001",
		Role:            shared.RoleStudent,
		Department:      "Computer Science",
		CurrentYear:     1,
		CurrentSemester: 1,
		Status:          student.AccountActive,
	})

	f.periodRepo.put(&registration.Period{
		ID:           "period-1",
		Type:         registration.PeriodCourseRegistration,
		AcademicYear: testYear,
		Semester:     1,
		Department:   shared.DepartmentAll,
		StartDate:    testNow.Add(-24 * time.Hour),
		EndDate:      testNow.Add(24 * time.Hour),
		Active:       true,
	})

	courseRepo := newFakeCourseRepo(
		&course.Course{ID: "course-101", Code: "CS101", Title: "Programming I", Department: "Computer Science", Credits: 3, Year: 1, Semester: 1, InstructorID: "instructor-1"},
		&course.Course{ID: "course-102", Code: "CS102", Title: "Discrete Mathematics", Department: "Computer Science", Credits: 4, Year: 1, Semester: 1, InstructorID: "instructor-1"},
		&course.Course{ID: "course-201", Code: "CS201", Title: "Algorithms", Department: "Computer Science", Credits: 4, Year: 1, Semester: 1, InstructorID: "instructor-1", Prerequisites: []shared.CourseCode{"CS101"}},
		&course.Course{ID: "course-math", Code: "MATH101", Title: "Calculus I", Department: "Computer Science", Credits: 3, Year: 1, Semester: 2, InstructorID: "instructor-1"},
	)

	clock := timeutil.NewFakeClock(testNow)
	gate := query.NewEligibilityHandler(f.studentRepo, f.gradeRepo, f.evalRepo, f.regRepo, f.periodRepo, clock)
	f.handler = NewRegisterSemesterHandler(
		f.regRepo, f.gradeRepo, courseRepo, f.studentRepo, gate,
		&seqIDs{}, clock, NewSideEffects(nil, nil, nil, nil))
	return f
}

// settleGrade stores a finalized grade for student-1 on the given course.
func (f *regFixture) settleGrade(t *testing.T, courseID shared.CourseID, code shared.CourseCode, marks grade.Marks) {
	t.Helper()
	rec, err := grade.NewRecord(grade.NewRecordParams{
		ID:           "grade-" + string(code),
		StudentID:    "student-1",
		CourseID:     courseID,
		CourseCode:   code,
		InstructorID: "instructor-1",
		Department:   "Computer Science",
		AcademicYear: testYear,
		Semester:     1,
		Now:          testNow,
	})
	require.NoError(t, err)
	require.NoError(t, rec.Submit(marks, "", "instructor-1", testNow))
	require.NoError(t, rec.Approve("", "head-1", testNow))
	require.NoError(t, rec.Finalize("", "registrar-1", testNow))
	f.gradeRepo.put(rec)
}

// evaluateCourse records the instructor evaluation the settled grade demands.
func (f *regFixture) evaluateCourse(courseID shared.CourseID) {
	f.evalRepo.evals = append(f.evalRepo.evals, &evaluation.Evaluation{
		ID:           "eval-" + string(courseID),
		StudentID:    "student-1",
		CourseID:     courseID,
		InstructorID: "instructor-1",
		AcademicYear: testYear,
		Rating:       4,
	})
}

func register(f *regFixture, courseIDs ...shared.CourseID) (*RegisterSemesterResult, error) {
	return f.handler.Handle(context.Background(), RegisterSemesterCommand{
		Actor:        studentActor,
		AcademicYear: testYear,
		Semester:     1,
		CourseIDs:    courseIDs,
	})
}

func TestRegisterSemester(t *testing.T) {
	f := newRegFixture(t)

	res, err := register(f, "course-101", "course-102")
	require.NoError(t, err)

	assert.Equal(t, "REG-2025-2026-Y1S1-0001", res.Number)
	assert.Equal(t, 7, res.TotalCredits)
	assert.False(t, res.RepeatOnly)

	stored, err := f.regRepo.GetForSemester(context.Background(), "student-1", testYear, 1)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestRegisterSemester_Unauthorized(t *testing.T) {
	f := newRegFixture(t)

	_, err := f.handler.Handle(context.Background(), RegisterSemesterCommand{
		Actor:        registrarUser,
		AcademicYear: testYear,
		Semester:     1,
		CourseIDs:    []shared.CourseID{"course-101"},
	})
	assert.True(t, shared.IsUnauthorized(err))
}

func TestRegisterSemester_DuplicateSelection(t *testing.T) {
	f := newRegFixture(t)

	_, err := register(f, "course-101", "course-101")
	assert.True(t, shared.IsValidation(err))
}

func TestRegisterSemester_PendingEvaluationBlocksFirst(t *testing.T) {
	f := newRegFixture(t)
	f.settleGrade(t, "course-101", "CS101", grade.Marks{Midterm: 25, Continuous: 25, FinalExam: 30})

	// The account problem is masked: the evaluation gate fires before the
	// status gate.
	stud, _ := f.studentRepo.GetByID(context.Background(), "student-1")
	stud.Status = student.AccountSuspended
	f.studentRepo.put(stud)

	_, err := register(f, "course-102")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
	assert.Contains(t, err.Error(), "evaluation")
}

func TestRegisterSemester_SuspendedAccount(t *testing.T) {
	f := newRegFixture(t)
	stud, _ := f.studentRepo.GetByID(context.Background(), "student-1")
	stud.Status = student.AccountSuspended
	f.studentRepo.put(stud)

	_, err := register(f, "course-101")
	assert.ErrorIs(t, err, shared.ErrAccountSuspended)
}

func TestRegisterSemester_DismissedStudent(t *testing.T) {
	f := newRegFixture(t)
	stud, _ := f.studentRepo.GetByID(context.Background(), "student-1")
	stud.Standing.Dismissed = true
	f.studentRepo.put(stud)

	_, err := register(f, "course-101")
	assert.ErrorIs(t, err, shared.ErrAccountDismissed)
}

func TestRegisterSemester_PeriodClosed(t *testing.T) {
	f := newRegFixture(t)
	f.periodRepo.periods[0].Active = false

	_, err := register(f, "course-101")
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestRegisterSemester_AlreadyRegistered(t *testing.T) {
	f := newRegFixture(t)

	_, err := register(f, "course-101")
	require.NoError(t, err)

	_, err = register(f, "course-102")
	assert.ErrorIs(t, err, shared.ErrAlreadyRegistered)
}

func TestRegisterSemester_PrerequisiteNotMet(t *testing.T) {
	f := newRegFixture(t)

	_, err := register(f, "course-201")
	assert.True(t, shared.IsConflict(err))
}

func TestRegisterSemester_RepeatObligationsDominate(t *testing.T) {
	f := newRegFixture(t)
	f.settleGrade(t, "course-101", "CS101", grade.Marks{Midterm: 10, Continuous: 10, FinalExam: 10})
	f.evaluateCourse("course-101")

	// Mixing a new course into an outstanding-repeat semester is refused.
	_, err := register(f, "course-101", "course-102")
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))

	res, err := register(f, "course-101")
	require.NoError(t, err)
	assert.Equal(t, "REP-2025-2026-Y1S1-0001", res.Number)
	assert.True(t, res.RepeatOnly)

	stored, err := f.regRepo.GetForSemester(context.Background(), "student-1", testYear, 1)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].IsRepeat)
}

func TestRegisterSemester_RepeatObligationOffCatalog(t *testing.T) {
	f := newRegFixture(t)

	// MATH101 is only offered in semester 2, so the semester-1 catalog never
	// lists it. Failing it must not strand the student: both obligations stay
	// registrable together.
	f.settleGrade(t, "course-101", "CS101", grade.Marks{Midterm: 10, Continuous: 10, FinalExam: 10})
	f.settleGrade(t, "course-math", "MATH101", grade.Marks{Midterm: 10, Continuous: 10, FinalExam: 10})
	f.evaluateCourse("course-101")
	f.evaluateCourse("course-math")

	// Covering only the on-catalog obligation is still a partial selection.
	_, err := register(f, "course-101")
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))

	res, err := register(f, "course-101", "course-math")
	require.NoError(t, err)
	assert.Equal(t, "REP-2025-2026-Y1S1-0001", res.Number)
	assert.True(t, res.RepeatOnly)

	stored, err := f.regRepo.GetForSemester(context.Background(), "student-1", testYear, 1)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	for _, item := range stored.Items {
		assert.True(t, item.IsRepeat)
	}
}
