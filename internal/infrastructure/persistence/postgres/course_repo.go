package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/unihub/academic-records-hub/internal/domain/course"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const courseColumns = `
	id, code, title, department, credits, year, semester, prerequisites,
	COALESCE(instructor_id::text, ''), created_at, updated_at
`

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// GetByID returns a course by internal ID.
func (r *CourseRepository) GetByID(ctx context.Context, id shared.CourseID) (*course.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses WHERE id = $1"
	return r.scanCourse(r.conn.QueryRow(ctx, query, id.String()))
}

// GetByCode returns a course by catalog code.
func (r *CourseRepository) GetByCode(ctx context.Context, code shared.CourseCode) (*course.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses WHERE code = $1"
	return r.scanCourse(r.conn.QueryRow(ctx, query, code.String()))
}

// ListByIDs returns the courses for the given IDs.
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []shared.CourseID) ([]*course.Course, error) {
	if len(ids) == 0 {
		return []*course.Course{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id.String()
	}

	query := fmt.Sprintf(
		"SELECT %s FROM courses WHERE id IN (%s)",
		courseColumns, strings.Join(placeholders, ", "),
	)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses by ids: %w", err)
	}
	defer rows.Close()

	return r.scanCourses(rows)
}

// ListCatalog returns the catalog for (department, year, semester).
func (r *CourseRepository) ListCatalog(ctx context.Context, department shared.Department, year shared.StudyYear, semester shared.Semester) ([]*course.Course, error) {
	query := "SELECT " + courseColumns + ` FROM courses
		WHERE department = $1 AND year = $2 AND semester = $3
		ORDER BY code`

	rows, err := r.conn.Query(ctx, query, department.String(), year.Int(), semester.Int())
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	return r.scanCourses(rows)
}

// scanCourse scans a single course from a row.
func (r *CourseRepository) scanCourse(row pgx.Row) (*course.Course, error) {
	c, err := scanCourseRow(row)
	if IsNoRows(err) {
		return nil, shared.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}
	return c, nil
}

// scanCourses scans multiple courses from rows.
func (r *CourseRepository) scanCourses(rows pgx.Rows) ([]*course.Course, error) {
	var courses []*course.Course
	for rows.Next() {
		c, err := scanCourseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return courses, nil
}

// scanCourseRow scans one course from any row source.
func scanCourseRow(row pgx.Row) (*course.Course, error) {
	var c course.Course
	var id, code, department, instructorID string
	var credits, year, semester int
	var prereqs []string

	err := row.Scan(
		&id,
		&code,
		&c.Title,
		&department,
		&credits,
		&year,
		&semester,
		&prereqs,
		&instructorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ID = shared.CourseID(id)
	c.Code = shared.CourseCode(code)
	c.Department = shared.Department(department)
	c.Credits = shared.Credits(credits)
	c.Year = shared.StudyYear(year)
	c.Semester = shared.Semester(semester)
	c.InstructorID = shared.UserID(instructorID)
	for _, p := range prereqs {
		c.Prerequisites = append(c.Prerequisites, shared.CourseCode(p))
	}

	return &c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPARTMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// DepartmentRepository implements course.DepartmentRepository for PostgreSQL.
type DepartmentRepository struct {
	conn *Connection
}

// NewDepartmentRepository creates a new DepartmentRepository.
func NewDepartmentRepository(conn *Connection) *DepartmentRepository {
	return &DepartmentRepository{conn: conn}
}

// Get returns a department by name.
func (r *DepartmentRepository) Get(ctx context.Context, name shared.Department) (*course.Department, error) {
	query := `
		SELECT name, placement_capacity, created_at, updated_at
		FROM departments
		WHERE name = $1
	`

	var d course.Department
	var deptName string
	err := r.conn.QueryRow(ctx, query, name.String()).Scan(
		&deptName,
		&d.PlacementCapacity,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.NewDomainError("course", "GetDepartment", shared.ErrNotFound,
			fmt.Sprintf("department %q not found", name))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	d.Name = shared.Department(deptName)
	return &d, nil
}

// List returns all departments.
func (r *DepartmentRepository) List(ctx context.Context) ([]*course.Department, error) {
	query := `
		SELECT name, placement_capacity, created_at, updated_at
		FROM departments
		ORDER BY name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*course.Department
	for rows.Next() {
		var d course.Department
		var name string
		if err := rows.Scan(&name, &d.PlacementCapacity, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		d.Name = shared.Department(name)
		departments = append(departments, &d)
	}

	return departments, rows.Err()
}
