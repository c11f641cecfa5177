package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT QUERY
// Settled grade history grouped by academic year, with per-year GPA and the
// running standing. Only finalized and locked grades appear; drafts and
// submissions under review never leak into the transcript.
// ══════════════════════════════════════════════════════════════════════════════

// TranscriptQuery identifies the student.
type TranscriptQuery struct {
	StudentID shared.UserID
}

// TranscriptLine is one settled grade on the transcript.
type TranscriptLine struct {
	CourseCode  shared.CourseCode
	CourseTitle string
	Credits     int
	Semester    shared.Semester
	TotalMark   int
	Letter      grade.LetterGrade
	GradePoints float64
	Repeat      bool
}

// TranscriptYear groups one academic year's lines with the year GPA.
type TranscriptYear struct {
	AcademicYear shared.AcademicYear
	Lines        []TranscriptLine

	// YearGPA - credit-weighted over this year's qualifying grades only.
	YearGPA float64
}

// TranscriptResult is the full transcript view.
type TranscriptResult struct {
	StudentID     shared.UserID
	StudentNumber string
	Name          string
	Years         []TranscriptYear
	Standing      student.Standing
}

// TranscriptHandler handles TranscriptQuery.
type TranscriptHandler struct {
	studentRepo student.Repository
	gradeRepo   grade.Repository
	courseRepo  course.Repository
}

// NewTranscriptHandler creates a new TranscriptHandler.
func NewTranscriptHandler(studentRepo student.Repository, gradeRepo grade.Repository, courseRepo course.Repository) *TranscriptHandler {
	return &TranscriptHandler{studentRepo: studentRepo, gradeRepo: gradeRepo, courseRepo: courseRepo}
}

// Handle builds the transcript.
func (h *TranscriptHandler) Handle(ctx context.Context, q TranscriptQuery) (*TranscriptResult, error) {
	if q.StudentID.IsEmpty() {
		return nil, shared.Validationf("grade", "Transcript", "student_id is required")
	}

	stud, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}

	settled, err := h.gradeRepo.ListSettledByStudent(ctx, q.StudentID, "")
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}

	courses, err := h.loadCourses(ctx, settled)
	if err != nil {
		return nil, err
	}

	byYear := make(map[shared.AcademicYear][]TranscriptLine)
	gradesByYear := make(map[shared.AcademicYear][]student.CreditGrade)
	for _, rec := range settled {
		c := courses[rec.CourseID]
		line := TranscriptLine{
			CourseCode:  rec.CourseCode,
			Semester:    rec.Semester,
			TotalMark:   rec.TotalMark,
			Letter:      rec.Letter,
			GradePoints: rec.GradePoints,
			Repeat:      rec.RepeatRequired,
		}
		if c != nil {
			line.CourseTitle = c.Title
			line.Credits = c.Credits.Int()
		}
		byYear[rec.AcademicYear] = append(byYear[rec.AcademicYear], line)
		gradesByYear[rec.AcademicYear] = append(gradesByYear[rec.AcademicYear], student.CreditGrade{
			Letter:      rec.Letter,
			GradePoints: rec.GradePoints,
			Credits:     line.Credits,
		})
	}

	result := &TranscriptResult{
		StudentID:     stud.ID,
		StudentNumber: stud.StudentNumber,
		Name:          stud.Name,
		Standing:      stud.Standing,
	}
	for year, lines := range byYear {
		sort.Slice(lines, func(i, j int) bool {
			if lines[i].Semester != lines[j].Semester {
				return lines[i].Semester < lines[j].Semester
			}
			return lines[i].CourseCode < lines[j].CourseCode
		})
		yearGPA, _ := student.ComputeCGPA(student.Qualifying(gradesByYear[year]))
		result.Years = append(result.Years, TranscriptYear{
			AcademicYear: year,
			Lines:        lines,
			YearGPA:      yearGPA,
		})
	}
	sort.Slice(result.Years, func(i, j int) bool {
		return result.Years[i].AcademicYear < result.Years[j].AcademicYear
	})
	return result, nil
}

// loadCourses maps the settled records' course IDs to catalog rows.
func (h *TranscriptHandler) loadCourses(ctx context.Context, settled []*grade.Record) (map[shared.CourseID]*course.Course, error) {
	ids := make([]shared.CourseID, 0, len(settled))
	seen := make(map[shared.CourseID]bool, len(settled))
	for _, rec := range settled {
		if !seen[rec.CourseID] {
			seen[rec.CourseID] = true
			ids = append(ids, rec.CourseID)
		}
	}
	if len(ids) == 0 {
		return map[shared.CourseID]*course.Course{}, nil
	}
	list, err := h.courseRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	out := make(map[shared.CourseID]*course.Course, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out, nil
}
