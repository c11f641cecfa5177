package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

type placementFixture struct {
	placementRepo *fakePlacementRepo
	studentRepo   *fakeStudentRepo
	handler       *ReviewPlacementHandler
	bulk          *BulkReviewPlacementsHandler
}

func newPlacementFixture(t *testing.T, capacities map[shared.Department]int) *placementFixture {
	t.Helper()

	depts := make([]*course.Department, 0, len(capacities))
	for name, capacity := range capacities {
		depts = append(depts, &course.Department{Name: name, PlacementCapacity: capacity})
	}

	f := &placementFixture{
		placementRepo: newFakePlacementRepo(),
		studentRepo:   newFakeStudentRepo(),
	}
	f.handler = NewReviewPlacementHandler(
		f.placementRepo, f.studentRepo, newFakeDeptRepo(depts...),
		timeutil.NewFakeClock(testNow), NewSideEffects(nil, nil, nil, nil))
	f.bulk = NewBulkReviewPlacementsHandler(f.placementRepo, f.handler)
	return f
}

// submittedRequest seeds a freshman and their submitted placement request.
func (f *placementFixture) submittedRequest(t *testing.T, id string, studentID shared.UserID, first, second shared.Department, cgpa float64) *placement.Request {
	t.Helper()

	f.studentRepo.put(&student.User{
		ID:              studentID,
		StudentNumber:   "S-" + string(studentID),
		Role:            shared.RoleStudent,
		Department:      "General Studies",
		CurrentYear:     1,
		CurrentSemester: 2,
		Status:          student.AccountActive,
		Standing:        student.Standing{CGPA: cgpa, TotalCreditsEarned: 27},
	})

	req, err := placement.NewRequest(placement.NewRequestParams{
		ID:           id,
		StudentID:    studentID,
		AcademicYear: testYear,
		FirstChoice:  first,
		SecondChoice: second,
		CGPA:         cgpa,
		TotalCredits: 27,
		Now:          testNow,
	})
	require.NoError(t, err)
	require.NoError(t, req.Submit(testNow))
	f.placementRepo.put(req)
	return req
}

func TestReviewPlacement_ApprovePromotesStudent(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 5})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	res, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     headActor,
		RequestID: "placement-1",
		Approve:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, placement.StatusApproved, res.Status)
	assert.Equal(t, shared.Department("Computer Science"), res.Department)

	stud, err := f.studentRepo.GetByID(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, shared.Department("Computer Science"), stud.Department)
	assert.Equal(t, shared.StudyYear(2), stud.CurrentYear)
	assert.Equal(t, shared.Semester(1), stud.CurrentSemester)
}

func TestReviewPlacement_RejectRecordsReason(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 5})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	_, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     headActor,
		RequestID: "placement-1",
		Approve:   false,
	})
	assert.True(t, shared.IsValidation(err), "rejection without a reason must fail")

	res, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     headActor,
		RequestID: "placement-1",
		Approve:   false,
		Reason:    "statement incomplete",
	})
	require.NoError(t, err)
	assert.Equal(t, placement.StatusRejected, res.Status)

	stored, err := f.placementRepo.GetByID(context.Background(), "placement-1")
	require.NoError(t, err)
	assert.Equal(t, "statement incomplete", stored.RejectionReason)
}

func TestReviewPlacement_FullDepartmentAdmitsNobody(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 2})

	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.9)
	f.submittedRequest(t, "placement-2", "student-2", "Computer Science", "Mathematics", 3.7)
	f.submittedRequest(t, "placement-3", "student-3", "Computer Science", "Mathematics", 3.5)

	for _, id := range []string{"placement-1", "placement-2"} {
		_, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
			Actor: headActor, RequestID: id, Approve: true,
		})
		require.NoError(t, err)
	}

	// Seats taken equals capacity: the third approval is refused.
	_, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor: headActor, RequestID: "placement-3", Approve: true,
	})
	assert.ErrorIs(t, err, shared.ErrDepartmentFull)
	assert.True(t, shared.IsCapacity(err))
}

func TestReviewPlacement_MissingStudentLeavesRequestSubmitted(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 5})

	// A request whose student row is gone must not be stranded approved.
	req, err := placement.NewRequest(placement.NewRequestParams{
		ID:           "placement-1",
		StudentID:    "ghost",
		AcademicYear: testYear,
		FirstChoice:  "Computer Science",
		SecondChoice: "Mathematics",
		CGPA:         3.5,
		TotalCredits: 27,
		Now:          testNow,
	})
	require.NoError(t, err)
	require.NoError(t, req.Submit(testNow))
	f.placementRepo.put(req)

	_, err = f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     headActor,
		RequestID: "placement-1",
		Approve:   true,
	})
	require.Error(t, err)

	stored, err := f.placementRepo.GetByID(context.Background(), "placement-1")
	require.NoError(t, err)
	assert.Equal(t, placement.StatusSubmitted, stored.Status)

	count, err := f.placementRepo.CountApproved(context.Background(), "Computer Science", testYear)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "a failed approval must not consume a seat")
}

// failingStudentUpdates refuses every student write.
type failingStudentUpdates struct {
	*fakeStudentRepo
}

func (r *failingStudentUpdates) Update(context.Context, *student.User) error {
	return errors.New("storage offline")
}

func TestReviewPlacement_PromotionFailureFreesSeat(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 1})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	broken := NewReviewPlacementHandler(
		f.placementRepo, &failingStudentUpdates{f.studentRepo},
		newFakeDeptRepo(&course.Department{Name: "Computer Science", PlacementCapacity: 1}),
		timeutil.NewFakeClock(testNow), NewSideEffects(nil, nil, nil, nil))

	_, err := broken.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     headActor,
		RequestID: "placement-1",
		Approve:   true,
	})
	require.Error(t, err)

	// The flip is rolled back and the seat returns to the pool.
	stored, err := f.placementRepo.GetByID(context.Background(), "placement-1")
	require.NoError(t, err)
	assert.Equal(t, placement.StatusSubmitted, stored.Status)

	count, err := f.placementRepo.CountApproved(context.Background(), "Computer Science", testYear)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// With the student store healthy again the same request takes the seat.
	res, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     headActor,
		RequestID: "placement-1",
		Approve:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, placement.StatusApproved, res.Status)
}

func TestReviewPlacement_UnknownDepartment(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 5})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	_, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:      headActor,
		RequestID:  "placement-1",
		Approve:    true,
		Department: "Astrology",
	})
	assert.True(t, shared.IsValidation(err))
}

func TestReviewPlacement_Unauthorized(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{"Computer Science": 5})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	_, err := f.handler.Handle(context.Background(), ReviewPlacementCommand{
		Actor:     studentActor,
		RequestID: "placement-1",
		Approve:   true,
	})
	assert.True(t, shared.IsUnauthorized(err))
}

func TestBulkReview_SecondChoiceFallback(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{
		"Computer Science": 1,
		"Mathematics":      5,
	})

	// The higher score wins the contested seat.
	f.submittedRequest(t, "placement-lo", "student-2", "Computer Science", "Mathematics", 3.0)
	f.submittedRequest(t, "placement-hi", "student-1", "Computer Science", "Mathematics", 3.9)

	res, err := f.bulk.Handle(context.Background(), BulkReviewPlacementsCommand{
		Actor:        headActor,
		AcademicYear: testYear,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Approved)
	assert.Equal(t, 0, res.Rejected)
	require.Len(t, res.Items, 2)

	assert.Equal(t, "placement-hi", res.Items[0].RequestID)
	assert.Equal(t, shared.Department("Computer Science"), res.Items[0].Department)

	assert.Equal(t, "placement-lo", res.Items[1].RequestID)
	assert.Equal(t, shared.Department("Mathematics"), res.Items[1].Department)
}

func TestBulkReview_RejectOverflow(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{
		"Computer Science": 0,
		"Mathematics":      0,
	})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	res, err := f.bulk.Handle(context.Background(), BulkReviewPlacementsCommand{
		Actor:          headActor,
		AcademicYear:   testYear,
		RejectOverflow: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Approved)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Rejected)

	stored, err := f.placementRepo.GetByID(context.Background(), "placement-1")
	require.NoError(t, err)
	assert.Equal(t, placement.StatusRejected, stored.Status)
}

func TestBulkReview_OverflowLeftSubmittedByDefault(t *testing.T) {
	f := newPlacementFixture(t, map[shared.Department]int{
		"Computer Science": 0,
		"Mathematics":      0,
	})
	f.submittedRequest(t, "placement-1", "student-1", "Computer Science", "Mathematics", 3.5)

	res, err := f.bulk.Handle(context.Background(), BulkReviewPlacementsCommand{
		Actor:        headActor,
		AcademicYear: testYear,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)

	stored, err := f.placementRepo.GetByID(context.Background(), "placement-1")
	require.NoError(t, err)
	assert.Equal(t, placement.StatusSubmitted, stored.Status)
}
