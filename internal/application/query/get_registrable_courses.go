package query

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRABLE COURSES QUERY
// Resolves what the student may register for right now: repeat obligations
// exclusively when any exist, otherwise the catalog filtered by
// prerequisites.
// ══════════════════════════════════════════════════════════════════════════════

// RegistrableCoursesQuery identifies the student and target semester.
type RegistrableCoursesQuery struct {
	StudentID shared.UserID
	Semester  shared.Semester
}

// Validate validates the query.
func (q RegistrableCoursesQuery) Validate() error {
	if q.StudentID.IsEmpty() {
		return shared.Validationf("registration", "ListRegistrable", "student_id is required")
	}
	if !q.Semester.IsValid() {
		return shared.Validationf("registration", "ListRegistrable", "invalid semester %d", q.Semester)
	}
	return nil
}

// RegistrableCourse is one offerable course with its repeat marker.
type RegistrableCourse struct {
	CourseID   shared.CourseID
	CourseCode shared.CourseCode
	Title      string
	Credits    int
	IsRepeat   bool

	// MissingPrerequisites is populated on ineligible catalog courses so the
	// student sees exactly what blocks each one.
	MissingPrerequisites []shared.CourseCode
}

// RegistrableCoursesResult is the resolved set.
type RegistrableCoursesResult struct {
	// Registrable - the courses the student may select.
	Registrable []RegistrableCourse

	// Blocked - catalog courses excluded by missing prerequisites. Empty while
	// repeat obligations dominate.
	Blocked []RegistrableCourse

	// RepeatOnly - true when outstanding repeats restrict the set.
	RepeatOnly bool
}

// RegistrableCoursesHandler handles RegistrableCoursesQuery.
type RegistrableCoursesHandler struct {
	studentRepo student.Repository
	gradeRepo   grade.Repository
	courseRepo  course.Repository
}

// NewRegistrableCoursesHandler creates a new RegistrableCoursesHandler.
func NewRegistrableCoursesHandler(studentRepo student.Repository, gradeRepo grade.Repository, courseRepo course.Repository) *RegistrableCoursesHandler {
	return &RegistrableCoursesHandler{studentRepo: studentRepo, gradeRepo: gradeRepo, courseRepo: courseRepo}
}

// Handle resolves the registrable set.
func (h *RegistrableCoursesHandler) Handle(ctx context.Context, q RegistrableCoursesQuery) (*RegistrableCoursesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list_registrable: %w", err)
	}

	settled, err := h.gradeRepo.ListSettledByStudent(ctx, q.StudentID, "")
	if err != nil {
		return nil, fmt.Errorf("list_registrable: %w", err)
	}

	// Obligated courses are resolved by ID so an obligation stays visible
	// even when its course is not in the current-term catalog.
	if obligations := registration.RepeatObligations(settled); len(obligations) > 0 {
		return h.repeatSet(ctx, obligations)
	}

	catalog, err := h.courseRepo.ListCatalog(ctx, stud.Department, stud.CurrentYear, q.Semester)
	if err != nil {
		return nil, fmt.Errorf("list_registrable: %w", err)
	}

	registrable, _ := registration.RegistrableCourses(catalog, settled)
	result := &RegistrableCoursesResult{}
	for _, c := range registrable {
		result.Registrable = append(result.Registrable, RegistrableCourse{
			CourseID:   c.ID,
			CourseCode: c.Code,
			Title:      c.Title,
			Credits:    c.Credits.Int(),
		})
	}

	// Surface what is blocked and why.
	passed := registration.PassedCodes(settled)
	offered := make(map[shared.CourseID]bool, len(registrable))
	for _, c := range registrable {
		offered[c.ID] = true
	}
	for _, c := range catalog {
		if offered[c.ID] || passed[c.Code] {
			continue
		}
		check := registration.CheckPrerequisites(c, passed)
		result.Blocked = append(result.Blocked, RegistrableCourse{
			CourseID:             c.ID,
			CourseCode:           c.Code,
			Title:                c.Title,
			Credits:              c.Credits.Int(),
			MissingPrerequisites: check.Missing,
		})
	}
	return result, nil
}

// repeatSet resolves the outstanding obligations into the exclusive
// registrable set, in obligation order.
func (h *RegistrableCoursesHandler) repeatSet(ctx context.Context, obligations []registration.Obligation) (*RegistrableCoursesResult, error) {
	ids := make([]shared.CourseID, len(obligations))
	for i, o := range obligations {
		ids[i] = o.CourseID
	}
	courses, err := h.courseRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list_registrable: %w", err)
	}
	byID := make(map[shared.CourseID]*course.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	result := &RegistrableCoursesResult{RepeatOnly: true}
	for _, o := range obligations {
		c, ok := byID[o.CourseID]
		if !ok {
			continue
		}
		result.Registrable = append(result.Registrable, RegistrableCourse{
			CourseID:   c.ID,
			CourseCode: c.Code,
			Title:      c.Title,
			Credits:    c.Credits.Int(),
			IsRepeat:   true,
		})
	}
	return result, nil
}
