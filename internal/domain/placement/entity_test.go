package placement

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

var (
	testNow      = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	testReviewer = shared.UserID("registrar-1")
)

func newDraft(t *testing.T) *Request {
	t.Helper()
	req, err := NewRequest(NewRequestParams{
		ID:           "placement-1",
		StudentID:    "student-1",
		AcademicYear: "2025-2026",
		FirstChoice:  "Computer Science",
		SecondChoice: "Mathematics",
		Statement:    strings.Repeat("x", 250),
		CGPA:         3.20,
		TotalCredits: 27,
		Now:          testNow,
	})
	require.NoError(t, err)
	return req
}

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		name         string
		cgpa         float64
		credits      int
		statementLen int
		want         int
	}{
		{"perfect", 4.0, 30, 300, 100},
		{"strong", 3.2, 27, 250, 78}, // 56 + 15 + 7
		{"minimum eligible", 1.5, 12, 0, 26},
		{"credit tier 18", 2.0, 18, 0, 45},
		{"credit tier 24", 2.0, 24, 0, 50},
		{"credit tier 30", 2.0, 30, 0, 55},
		{"statement tier 100", 2.0, 0, 100, 40},
		{"statement tier 200", 2.0, 0, 200, 42},
		{"statement tier 300", 2.0, 0, 299, 42},
		{"zero everything", 0, 0, 0, 0},
		{"cgpa clamped", 5.0, 30, 300, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityScore(tt.cgpa, tt.credits, tt.statementLen))
		})
	}
}

func TestCheckEligibility(t *testing.T) {
	u := &student.User{
		Role:            shared.RoleStudent,
		CurrentYear:     1,
		CurrentSemester: 2,
		Status:          student.AccountActive,
		Standing:        student.Standing{CGPA: 2.50},
	}
	assert.NoError(t, CheckEligibility(u))

	dismissed := *u
	dismissed.Standing.Dismissed = true
	assert.ErrorIs(t, CheckEligibility(&dismissed), shared.ErrAccountDismissed)

	sophomore := *u
	sophomore.CurrentYear = 2
	assert.True(t, shared.IsConflict(CheckEligibility(&sophomore)))

	firstSemester := *u
	firstSemester.CurrentSemester = 1
	assert.True(t, shared.IsConflict(CheckEligibility(&firstSemester)))

	lowCGPA := *u
	lowCGPA.Standing.CGPA = 1.49
	assert.True(t, shared.IsValidation(CheckEligibility(&lowCGPA)))

	instructor := *u
	instructor.Role = shared.RoleInstructor
	assert.True(t, shared.IsValidation(CheckEligibility(&instructor)))
}

func TestNewRequest(t *testing.T) {
	req := newDraft(t)

	assert.Equal(t, StatusDraft, req.Status)
	// 70*(3.2/4) + 15 (27 credits) + 7 (250 chars) = 78
	assert.Equal(t, 78, req.Score)
}

func TestNewRequest_Validation(t *testing.T) {
	_, err := NewRequest(NewRequestParams{
		ID: "p", StudentID: "s", AcademicYear: "2025-2026",
		FirstChoice: "Computer Science", SecondChoice: "Computer Science",
		Now: testNow,
	})
	assert.True(t, shared.IsValidation(err))

	_, err = NewRequest(NewRequestParams{
		ID: "p", StudentID: "s", AcademicYear: "2025-2026",
		SecondChoice: "Mathematics", Now: testNow,
	})
	assert.True(t, shared.IsValidation(err))
}

func TestRequest_UpdateDraftRescores(t *testing.T) {
	req := newDraft(t)

	require.NoError(t, req.UpdateDraft("Mathematics", "Physics", "", 2.0, 12, testNow))
	assert.Equal(t, shared.Department("Mathematics"), req.FirstChoice)
	assert.Equal(t, 35, req.Score)

	err := req.UpdateDraft("Physics", "Physics", "", 2.0, 12, testNow)
	assert.True(t, shared.IsValidation(err))
}

func TestRequest_SubmitApprove(t *testing.T) {
	req := newDraft(t)

	require.NoError(t, req.Submit(testNow))
	assert.Equal(t, StatusSubmitted, req.Status)

	require.NoError(t, req.Approve("Computer Science", testReviewer, testNow.Add(time.Hour)))
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, shared.Department("Computer Science"), req.ApprovedDepartment)
	assert.Equal(t, testReviewer, req.ReviewedBy)
	require.NotNil(t, req.ReviewedAt)
}

func TestRequest_SubmitReject(t *testing.T) {
	req := newDraft(t)
	require.NoError(t, req.Submit(testNow))

	err := req.Reject("", testReviewer, testNow)
	assert.True(t, shared.IsValidation(err))

	require.NoError(t, req.Reject("no capacity this year", testReviewer, testNow))
	assert.Equal(t, StatusRejected, req.Status)
	assert.Equal(t, "no capacity this year", req.RejectionReason)
}

func TestRequest_InvalidTransitions(t *testing.T) {
	req := newDraft(t)

	// Drafts cannot be reviewed.
	assert.True(t, shared.IsConflict(req.Approve("Computer Science", testReviewer, testNow)))
	assert.True(t, shared.IsConflict(req.Reject("reason", testReviewer, testNow)))

	require.NoError(t, req.Submit(testNow))
	assert.True(t, shared.IsConflict(req.Submit(testNow)))
	assert.True(t, shared.IsConflict(req.UpdateDraft("Mathematics", "Physics", "", 2.0, 12, testNow)))

	require.NoError(t, req.Approve("Computer Science", testReviewer, testNow))

	// Terminal states stay terminal.
	assert.True(t, shared.IsConflict(req.Submit(testNow)))
	assert.True(t, shared.IsConflict(req.Reject("reason", testReviewer, testNow)))
}

func TestRequest_ApproveRequiresExplicitDepartment(t *testing.T) {
	req := newDraft(t)
	require.NoError(t, req.Submit(testNow))

	err := req.Approve("", testReviewer, testNow)
	assert.True(t, shared.IsValidation(err))

	err = req.Approve(shared.DepartmentAll, testReviewer, testNow)
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, StatusSubmitted, req.Status)
}
