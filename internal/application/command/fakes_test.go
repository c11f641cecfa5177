package command

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/evaluation"
	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes. Conditioned updates mirror the repository contract so the
// optimistic-concurrency paths are exercised for real.
// ─────────────────────────────────────────────────────────────────────────────

type seqIDs struct{ n int }

func (s *seqIDs) GenerateID() string {
	s.n++
	return fmt.Sprintf("id-%04d", s.n)
}

// ── grades ───────────────────────────────────────────────────────────────────

type fakeGradeRepo struct {
	records map[string]*grade.Record
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{records: make(map[string]*grade.Record)}
}

func (f *fakeGradeRepo) put(rec *grade.Record) {
	f.records[rec.ID] = rec.Clone()
}

func (f *fakeGradeRepo) Create(_ context.Context, rec *grade.Record) error {
	for _, existing := range f.records {
		if existing.StudentID == rec.StudentID && existing.CourseID == rec.CourseID && existing.AcademicYear == rec.AcademicYear {
			return shared.ErrGradeAlreadyExists
		}
	}
	f.records[rec.ID] = rec.Clone()
	return nil
}

func (f *fakeGradeRepo) GetByID(_ context.Context, id string) (*grade.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, shared.ErrGradeNotFound
	}
	return rec.Clone(), nil
}

func (f *fakeGradeRepo) GetByKey(_ context.Context, studentID shared.UserID, courseID shared.CourseID, year shared.AcademicYear) (*grade.Record, error) {
	for _, rec := range f.records {
		if rec.StudentID == studentID && rec.CourseID == courseID && rec.AcademicYear == year {
			return rec.Clone(), nil
		}
	}
	return nil, shared.ErrGradeNotFound
}

func (f *fakeGradeRepo) UpdateFromStatus(_ context.Context, rec *grade.Record, expected grade.Status) error {
	stored, ok := f.records[rec.ID]
	if !ok {
		return shared.ErrGradeNotFound
	}
	if stored.Status != expected {
		return shared.ErrConcurrentModification
	}
	f.records[rec.ID] = rec.Clone()
	return nil
}

func (f *fakeGradeRepo) ListByStudent(_ context.Context, studentID shared.UserID, filter grade.Filter) ([]*grade.Record, error) {
	var out []*grade.Record
	for _, rec := range f.records {
		if rec.StudentID != studentID {
			continue
		}
		if filter.AcademicYear != "" && rec.AcademicYear != filter.AcademicYear {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if rec.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (f *fakeGradeRepo) ListSettledByStudent(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) ([]*grade.Record, error) {
	return f.ListByStudent(ctx, studentID, grade.Filter{
		AcademicYear: year,
		Statuses:     []grade.Status{grade.StatusFinalized, grade.StatusLocked},
	})
}

func (f *fakeGradeRepo) ListFinalized(_ context.Context, year shared.AcademicYear, semester shared.Semester, department shared.Department) ([]*grade.Record, error) {
	var out []*grade.Record
	for _, rec := range f.records {
		if rec.Status != grade.StatusFinalized {
			continue
		}
		if rec.AcademicYear != year || rec.Semester != semester {
			continue
		}
		if department != "" && rec.Department != department {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// ── students ─────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	users map[shared.UserID]*student.User
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{users: make(map[shared.UserID]*student.User)}
}

func (f *fakeStudentRepo) put(u *student.User) {
	cp := *u
	f.users[u.ID] = &cp
}

func (f *fakeStudentRepo) Create(_ context.Context, u *student.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email || (u.StudentNumber != "" && existing.StudentNumber == u.StudentNumber) {
			return shared.ErrUserAlreadyExists
		}
	}
	f.put(u)
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id shared.UserID) (*student.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStudentRepo) GetByStudentNumber(_ context.Context, number string) (*student.User, error) {
	for _, u := range f.users {
		if u.StudentNumber == number {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (f *fakeStudentRepo) Update(_ context.Context, u *student.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return shared.ErrUserNotFound
	}
	f.put(u)
	return nil
}

func (f *fakeStudentRepo) UpdateStanding(_ context.Context, id shared.UserID, standing student.Standing, status student.AccountStatus) error {
	u, ok := f.users[id]
	if !ok {
		return shared.ErrUserNotFound
	}
	u.Standing = standing
	u.Status = status
	return nil
}

func (f *fakeStudentRepo) ListByRole(_ context.Context, role shared.Role) ([]*student.User, error) {
	var out []*student.User
	for _, u := range f.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) GetDepartmentHead(_ context.Context, department shared.Department) (*student.User, error) {
	for _, u := range f.users {
		if u.Role == shared.RoleDepartmentHead && u.Department == department {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

// ── courses ──────────────────────────────────────────────────────────────────

type fakeCourseRepo struct {
	courses map[shared.CourseID]*course.Course
}

func newFakeCourseRepo(courses ...*course.Course) *fakeCourseRepo {
	f := &fakeCourseRepo{courses: make(map[shared.CourseID]*course.Course)}
	for _, c := range courses {
		f.courses[c.ID] = c
	}
	return f
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id shared.CourseID) (*course.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeCourseRepo) GetByCode(_ context.Context, code shared.CourseCode) (*course.Course, error) {
	for _, c := range f.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, shared.ErrCourseNotFound
}

func (f *fakeCourseRepo) ListByIDs(_ context.Context, ids []shared.CourseID) ([]*course.Course, error) {
	var out []*course.Course
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListCatalog(_ context.Context, department shared.Department, year shared.StudyYear, semester shared.Semester) ([]*course.Course, error) {
	var out []*course.Course
	for _, c := range f.courses {
		if c.Department != department || c.Year != year || c.Semester != semester {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeDeptRepo struct {
	depts map[shared.Department]*course.Department
}

func newFakeDeptRepo(depts ...*course.Department) *fakeDeptRepo {
	f := &fakeDeptRepo{depts: make(map[shared.Department]*course.Department)}
	for _, d := range depts {
		f.depts[d.Name] = d
	}
	return f
}

func (f *fakeDeptRepo) Get(_ context.Context, name shared.Department) (*course.Department, error) {
	d, ok := f.depts[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (f *fakeDeptRepo) List(_ context.Context) ([]*course.Department, error) {
	var out []*course.Department
	for _, d := range f.depts {
		out = append(out, d)
	}
	return out, nil
}

// ── placements ───────────────────────────────────────────────────────────────

type fakePlacementRepo struct {
	requests map[string]*placement.Request
}

func newFakePlacementRepo() *fakePlacementRepo {
	return &fakePlacementRepo{requests: make(map[string]*placement.Request)}
}

func clonePlacement(r *placement.Request) *placement.Request {
	cp := *r
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		cp.ReviewedAt = &t
	}
	return &cp
}

func (f *fakePlacementRepo) put(r *placement.Request) {
	f.requests[r.ID] = clonePlacement(r)
}

func (f *fakePlacementRepo) Create(_ context.Context, r *placement.Request) error {
	for _, existing := range f.requests {
		if existing.StudentID == r.StudentID && existing.AcademicYear == r.AcademicYear {
			return shared.ErrPlacementAlreadyExists
		}
	}
	f.put(r)
	return nil
}

func (f *fakePlacementRepo) GetByID(_ context.Context, id string) (*placement.Request, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, shared.ErrPlacementNotFound
	}
	return clonePlacement(r), nil
}

func (f *fakePlacementRepo) GetByStudentYear(_ context.Context, studentID shared.UserID, year shared.AcademicYear) (*placement.Request, error) {
	for _, r := range f.requests {
		if r.StudentID == studentID && r.AcademicYear == year {
			return clonePlacement(r), nil
		}
	}
	return nil, shared.ErrPlacementNotFound
}

func (f *fakePlacementRepo) UpdateFromStatus(_ context.Context, r *placement.Request, expected placement.Status) error {
	stored, ok := f.requests[r.ID]
	if !ok {
		return shared.ErrPlacementNotFound
	}
	if stored.Status != expected {
		return shared.ErrConcurrentModification
	}
	f.put(r)
	return nil
}

func (f *fakePlacementRepo) ApproveWithinCapacity(_ context.Context, r *placement.Request, capacity int) error {
	stored, ok := f.requests[r.ID]
	if !ok {
		return shared.ErrPlacementNotFound
	}
	if stored.Status != placement.StatusSubmitted {
		return shared.ErrConcurrentModification
	}
	count := 0
	for _, existing := range f.requests {
		if existing.Status == placement.StatusApproved &&
			existing.ApprovedDepartment == r.ApprovedDepartment &&
			existing.AcademicYear == r.AcademicYear {
			count++
		}
	}
	if count >= capacity {
		return shared.ErrDepartmentFull
	}
	f.put(r)
	return nil
}

func (f *fakePlacementRepo) CountApproved(_ context.Context, department shared.Department, year shared.AcademicYear) (int, error) {
	count := 0
	for _, r := range f.requests {
		if r.Status == placement.StatusApproved && r.ApprovedDepartment == department && r.AcademicYear == year {
			count++
		}
	}
	return count, nil
}

func (f *fakePlacementRepo) ListByStatus(_ context.Context, year shared.AcademicYear, status placement.Status) ([]*placement.Request, error) {
	var out []*placement.Request
	for _, r := range f.requests {
		if r.AcademicYear == year && r.Status == status {
			out = append(out, clonePlacement(r))
		}
	}
	// Score descending, matching the repository ordering contract.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Score > out[i].Score {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// ── registrations ────────────────────────────────────────────────────────────

type fakeRegRepo struct {
	regs map[string]*registration.Registration
	seq  map[string]int
}

func newFakeRegRepo() *fakeRegRepo {
	return &fakeRegRepo{
		regs: make(map[string]*registration.Registration),
		seq:  make(map[string]int),
	}
}

func (f *fakeRegRepo) Create(_ context.Context, reg *registration.Registration) error {
	for _, existing := range f.regs {
		if existing.StudentID == reg.StudentID && existing.AcademicYear == reg.AcademicYear && existing.Semester == reg.Semester {
			return shared.ErrAlreadyRegistered
		}
	}
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRegRepo) GetByID(_ context.Context, id string) (*registration.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, shared.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRegRepo) GetForSemester(_ context.Context, studentID shared.UserID, year shared.AcademicYear, semester shared.Semester) (*registration.Registration, error) {
	for _, reg := range f.regs {
		if reg.StudentID == studentID && reg.AcademicYear == year && reg.Semester == semester {
			return reg, nil
		}
	}
	return nil, shared.ErrRegistrationNotFound
}

func (f *fakeRegRepo) NextSequence(_ context.Context, year shared.AcademicYear, studyYear shared.StudyYear, semester shared.Semester) (int, error) {
	key := fmt.Sprintf("%s-%d-%d", year, studyYear, semester)
	f.seq[key]++
	return f.seq[key], nil
}

// ── periods ──────────────────────────────────────────────────────────────────

type fakePeriodRepo struct {
	periods []*registration.Period
}

func (f *fakePeriodRepo) put(p *registration.Period) {
	f.periods = append(f.periods, p)
}

func (f *fakePeriodRepo) Create(_ context.Context, p *registration.Period) error {
	for _, existing := range f.periods {
		if existing.Active && existing.Type == p.Type && existing.AcademicYear == p.AcademicYear &&
			existing.Semester == p.Semester && existing.Department == p.Department {
			return shared.ErrAlreadyExists
		}
	}
	f.put(p)
	return nil
}

func (f *fakePeriodRepo) GetActive(_ context.Context, t registration.PeriodType, year shared.AcademicYear, semester shared.Semester, department shared.Department) (*registration.Period, error) {
	for _, p := range f.periods {
		if p.Active && p.Type == t && p.AcademicYear == year && p.Semester == semester && p.Department == department {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakePeriodRepo) Update(_ context.Context, p *registration.Period) error {
	for i, existing := range f.periods {
		if existing.ID == p.ID {
			f.periods[i] = p
			return nil
		}
	}
	return shared.ErrNotFound
}

// ── evaluations ──────────────────────────────────────────────────────────────

type fakeEvalRepo struct {
	evals []*evaluation.Evaluation
}

func (f *fakeEvalRepo) Create(_ context.Context, e *evaluation.Evaluation) error {
	for _, existing := range f.evals {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID && existing.AcademicYear == e.AcademicYear {
			return shared.ErrEvaluationExists
		}
	}
	f.evals = append(f.evals, e)
	return nil
}

func (f *fakeEvalRepo) ListByStudentYear(_ context.Context, studentID shared.UserID, year shared.AcademicYear) ([]*evaluation.Evaluation, error) {
	var out []*evaluation.Evaluation
	for _, e := range f.evals {
		if e.StudentID == studentID && e.AcademicYear == year {
			out = append(out, e)
		}
	}
	return out, nil
}
