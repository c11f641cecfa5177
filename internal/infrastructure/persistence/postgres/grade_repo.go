package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/unihub/academic-records-hub/internal/domain/grade"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REPOSITORY IMPLEMENTATION
// Lifecycle transitions persist through UpdateFromStatus: the UPDATE is
// conditioned on the expected status, so a racing transition loses with
// ErrConcurrentModification instead of silently overwriting.
// ══════════════════════════════════════════════════════════════════════════════

const gradeColumns = `
	id, student_id, course_id, course_code, instructor_id, department,
	academic_year, semester, midterm, continuous, final_exam,
	total_mark, letter, grade_points, repeat_required, status,
	rejection_reason, instructor_comment, head_comment, registrar_comment,
	submitted_at, COALESCE(submitted_by::text, ''),
	approved_at, COALESCE(approved_by::text, ''),
	finalized_at, COALESCE(finalized_by::text, ''),
	locked_at, COALESCE(locked_by::text, ''),
	created_at, updated_at
`

// GradeRepository implements grade.Repository for PostgreSQL.
type GradeRepository struct {
	conn *Connection
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(conn *Connection) *GradeRepository {
	return &GradeRepository{conn: conn}
}

// Create persists a new grade record.
func (r *GradeRepository) Create(ctx context.Context, rec *grade.Record) error {
	query := `
		INSERT INTO grades (
			id, student_id, course_id, course_code, instructor_id, department,
			academic_year, semester, midterm, continuous, final_exam,
			total_mark, letter, grade_points, repeat_required, status,
			rejection_reason, instructor_comment, head_comment, registrar_comment,
			submitted_at, submitted_by, approved_at, approved_by,
			finalized_at, finalized_by, locked_at, locked_by,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		)
	`

	_, err := r.conn.Exec(ctx, query, r.writeArgs(rec)...)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrGradeAlreadyExists
		}
		return fmt.Errorf("failed to create grade: %w", err)
	}

	return nil
}

// GetByID returns a record by internal ID.
func (r *GradeRepository) GetByID(ctx context.Context, id string) (*grade.Record, error) {
	query := "SELECT " + gradeColumns + " FROM grades WHERE id = $1"
	return r.scanGrade(r.conn.QueryRow(ctx, query, id))
}

// GetByKey returns the record for the (student, course, academic year) key.
func (r *GradeRepository) GetByKey(ctx context.Context, studentID shared.UserID, courseID shared.CourseID, year shared.AcademicYear) (*grade.Record, error) {
	query := "SELECT " + gradeColumns + ` FROM grades
		WHERE student_id = $1 AND course_id = $2 AND academic_year = $3`
	return r.scanGrade(r.conn.QueryRow(ctx, query, studentID.String(), courseID.String(), year.String()))
}

// UpdateFromStatus persists the record only if the stored status still equals
// expected. A zero-row update against an existing row means someone else
// transitioned it first.
func (r *GradeRepository) UpdateFromStatus(ctx context.Context, rec *grade.Record, expected grade.Status) error {
	query := `
		UPDATE grades SET
			midterm = $1,
			continuous = $2,
			final_exam = $3,
			total_mark = $4,
			letter = $5,
			grade_points = $6,
			repeat_required = $7,
			status = $8,
			rejection_reason = $9,
			instructor_comment = $10,
			head_comment = $11,
			registrar_comment = $12,
			submitted_at = $13,
			submitted_by = $14,
			approved_at = $15,
			approved_by = $16,
			finalized_at = $17,
			finalized_by = $18,
			locked_at = $19,
			locked_by = $20,
			updated_at = $21
		WHERE id = $22 AND status = $23
	`

	result, err := r.conn.Exec(ctx, query,
		rec.Marks.Midterm,
		rec.Marks.Continuous,
		rec.Marks.FinalExam,
		rec.TotalMark,
		string(rec.Letter),
		rec.GradePoints,
		rec.RepeatRequired,
		string(rec.Status),
		rec.RejectionReason,
		rec.InstructorComment,
		rec.HeadComment,
		rec.RegistrarComment,
		rec.SubmittedAt,
		nullableID(rec.SubmittedBy),
		rec.ApprovedAt,
		nullableID(rec.ApprovedBy),
		rec.FinalizedAt,
		nullableID(rec.FinalizedBy),
		rec.LockedAt,
		nullableID(rec.LockedBy),
		time.Now().UTC(),
		rec.ID,
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update grade: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a vanished row from a lost race.
		var exists bool
		checkErr := r.conn.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM grades WHERE id = $1)", rec.ID,
		).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("failed to update grade: %w", checkErr)
		}
		if !exists {
			return shared.ErrGradeNotFound
		}
		return shared.ErrConcurrentModification
	}

	return nil
}

// ListByStudent returns the student's records matching the filter.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID shared.UserID, f grade.Filter) ([]*grade.Record, error) {
	conditions := []string{"student_id = $1"}
	args := []interface{}{studentID.String()}

	if f.AcademicYear != "" {
		args = append(args, f.AcademicYear.String())
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)))
	}
	if f.Semester != 0 {
		args = append(args, f.Semester.Int())
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if f.Department != "" {
		args = append(args, f.Department.String())
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			args = append(args, string(s))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM grades WHERE %s ORDER BY academic_year, semester, course_code",
		gradeColumns, strings.Join(conditions, " AND "),
	)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	defer rows.Close()

	return r.scanGrades(rows)
}

// ListSettledByStudent returns the student's finalized and locked records.
// An empty year returns all years.
func (r *GradeRepository) ListSettledByStudent(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) ([]*grade.Record, error) {
	f := grade.Filter{
		AcademicYear: year,
		Statuses:     []grade.Status{grade.StatusFinalized, grade.StatusLocked},
	}
	return r.ListByStudent(ctx, studentID, f)
}

// ListFinalized returns finalized records for a year/semester, optionally
// scoped to one department.
func (r *GradeRepository) ListFinalized(ctx context.Context, year shared.AcademicYear, semester shared.Semester, department shared.Department) ([]*grade.Record, error) {
	conditions := []string{"academic_year = $1", "semester = $2", "status = $3"}
	args := []interface{}{year.String(), semester.Int(), string(grade.StatusFinalized)}

	if department != "" {
		args = append(args, department.String())
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM grades WHERE %s ORDER BY student_id, course_code",
		gradeColumns, strings.Join(conditions, " AND "),
	)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized grades: %w", err)
	}
	defer rows.Close()

	return r.scanGrades(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

// writeArgs builds the insert argument list in column order.
func (r *GradeRepository) writeArgs(rec *grade.Record) []interface{} {
	return []interface{}{
		rec.ID,
		rec.StudentID.String(),
		rec.CourseID.String(),
		rec.CourseCode.String(),
		rec.InstructorID.String(),
		rec.Department.String(),
		rec.AcademicYear.String(),
		rec.Semester.Int(),
		rec.Marks.Midterm,
		rec.Marks.Continuous,
		rec.Marks.FinalExam,
		rec.TotalMark,
		string(rec.Letter),
		rec.GradePoints,
		rec.RepeatRequired,
		string(rec.Status),
		rec.RejectionReason,
		rec.InstructorComment,
		rec.HeadComment,
		rec.RegistrarComment,
		rec.SubmittedAt,
		nullableID(rec.SubmittedBy),
		rec.ApprovedAt,
		nullableID(rec.ApprovedBy),
		rec.FinalizedAt,
		nullableID(rec.FinalizedBy),
		rec.LockedAt,
		nullableID(rec.LockedBy),
		rec.CreatedAt,
		rec.UpdatedAt,
	}
}

// scanGrade scans a single record from a row.
func (r *GradeRepository) scanGrade(row pgx.Row) (*grade.Record, error) {
	rec, err := scanGradeRow(row)
	if IsNoRows(err) {
		return nil, shared.ErrGradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan grade: %w", err)
	}
	return rec, nil
}

// scanGrades scans multiple records from rows.
func (r *GradeRepository) scanGrades(rows pgx.Rows) ([]*grade.Record, error) {
	var records []*grade.Record
	for rows.Next() {
		rec, err := scanGradeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// scanGradeRow scans one record from any row source.
func scanGradeRow(row pgx.Row) (*grade.Record, error) {
	var rec grade.Record
	var studentID, courseID, courseCode, instructorID, department string
	var academicYear, letter, status string
	var semester int
	var submittedBy, approvedBy, finalizedBy, lockedBy string

	err := row.Scan(
		&rec.ID,
		&studentID,
		&courseID,
		&courseCode,
		&instructorID,
		&department,
		&academicYear,
		&semester,
		&rec.Marks.Midterm,
		&rec.Marks.Continuous,
		&rec.Marks.FinalExam,
		&rec.TotalMark,
		&letter,
		&rec.GradePoints,
		&rec.RepeatRequired,
		&status,
		&rec.RejectionReason,
		&rec.InstructorComment,
		&rec.HeadComment,
		&rec.RegistrarComment,
		&rec.SubmittedAt,
		&submittedBy,
		&rec.ApprovedAt,
		&approvedBy,
		&rec.FinalizedAt,
		&finalizedBy,
		&rec.LockedAt,
		&lockedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.StudentID = shared.UserID(studentID)
	rec.CourseID = shared.CourseID(courseID)
	rec.CourseCode = shared.CourseCode(courseCode)
	rec.InstructorID = shared.UserID(instructorID)
	rec.Department = shared.Department(department)
	rec.AcademicYear = shared.AcademicYear(academicYear)
	rec.Semester = shared.Semester(semester)
	rec.Letter = grade.LetterGrade(letter)
	rec.Status = grade.Status(status)
	rec.SubmittedBy = shared.UserID(submittedBy)
	rec.ApprovedBy = shared.UserID(approvedBy)
	rec.FinalizedBy = shared.UserID(finalizedBy)
	rec.LockedBy = shared.UserID(lockedBy)

	return &rec, nil
}

// nullableID maps an empty user ID to NULL for UUID columns.
func nullableID(id shared.UserID) interface{} {
	if id == "" {
		return nil
	}
	return id.String()
}
