package postgres

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/evaluation"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// EvaluationRepository implements evaluation.Repository for PostgreSQL.
type EvaluationRepository struct {
	conn *Connection
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(conn *Connection) *EvaluationRepository {
	return &EvaluationRepository{conn: conn}
}

// Create persists an evaluation. The unique key enforces one evaluation per
// (student, course, academic year).
func (r *EvaluationRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	query := `
		INSERT INTO evaluations (
			id, student_id, course_id, instructor_id, academic_year,
			rating, comment, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.StudentID.String(),
		e.CourseID.String(),
		e.InstructorID.String(),
		e.AcademicYear.String(),
		e.Rating,
		e.Comment,
		e.SubmittedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrEvaluationExists
		}
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	return nil
}

// ListByStudentYear returns the student's evaluations for an academic year.
func (r *EvaluationRepository) ListByStudentYear(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) ([]*evaluation.Evaluation, error) {
	query := `
		SELECT id, student_id, course_id, instructor_id, academic_year,
			rating, comment, submitted_at
		FROM evaluations
		WHERE student_id = $1 AND academic_year = $2
		ORDER BY submitted_at
	`

	rows, err := r.conn.Query(ctx, query, studentID.String(), year.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*evaluation.Evaluation
	for rows.Next() {
		var e evaluation.Evaluation
		var sid, cid, iid, ay string

		err := rows.Scan(&e.ID, &sid, &cid, &iid, &ay, &e.Rating, &e.Comment, &e.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}

		e.StudentID = shared.UserID(sid)
		e.CourseID = shared.CourseID(cid)
		e.InstructorID = shared.UserID(iid)
		e.AcademicYear = shared.AcademicYear(ay)
		evaluations = append(evaluations, &e)
	}

	return evaluations, rows.Err()
}
