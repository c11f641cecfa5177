package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLACEMENT REPOSITORY IMPLEMENTATION
// Reviews go through the same state-conditioned update as grade transitions:
// two reviewers racing over one request cannot both win.
// ══════════════════════════════════════════════════════════════════════════════

const placementColumns = `
	id, student_id, academic_year, first_choice, second_choice, statement,
	cgpa, total_credits, score, status, approved_department, rejection_reason,
	COALESCE(reviewed_by::text, ''), reviewed_at, created_at, updated_at
`

// PlacementRepository implements placement.Repository for PostgreSQL.
type PlacementRepository struct {
	conn *Connection
}

// NewPlacementRepository creates a new PlacementRepository.
func NewPlacementRepository(conn *Connection) *PlacementRepository {
	return &PlacementRepository{conn: conn}
}

// Create persists a request.
func (r *PlacementRepository) Create(ctx context.Context, req *placement.Request) error {
	query := `
		INSERT INTO placement_requests (
			id, student_id, academic_year, first_choice, second_choice, statement,
			cgpa, total_credits, score, status, approved_department,
			rejection_reason, reviewed_by, reviewed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.conn.Exec(ctx, query,
		req.ID,
		req.StudentID.String(),
		req.AcademicYear.String(),
		req.FirstChoice.String(),
		req.SecondChoice.String(),
		req.Statement,
		req.CGPA,
		req.TotalCredits,
		req.Score,
		string(req.Status),
		req.ApprovedDepartment.String(),
		req.RejectionReason,
		nullableID(req.ReviewedBy),
		req.ReviewedAt,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrPlacementAlreadyExists
		}
		return fmt.Errorf("failed to create placement request: %w", err)
	}

	return nil
}

// GetByID returns a request by internal ID.
func (r *PlacementRepository) GetByID(ctx context.Context, id string) (*placement.Request, error) {
	query := "SELECT " + placementColumns + " FROM placement_requests WHERE id = $1"
	return r.scanRequest(r.conn.QueryRow(ctx, query, id))
}

// GetByStudentYear returns the student's request for the academic year.
func (r *PlacementRepository) GetByStudentYear(ctx context.Context, studentID shared.UserID, year shared.AcademicYear) (*placement.Request, error) {
	query := "SELECT " + placementColumns + ` FROM placement_requests
		WHERE student_id = $1 AND academic_year = $2`
	return r.scanRequest(r.conn.QueryRow(ctx, query, studentID.String(), year.String()))
}

const placementUpdateSQL = `
	UPDATE placement_requests SET
		first_choice = $1,
		second_choice = $2,
		statement = $3,
		cgpa = $4,
		total_credits = $5,
		score = $6,
		status = $7,
		approved_department = $8,
		rejection_reason = $9,
		reviewed_by = $10,
		reviewed_at = $11,
		updated_at = $12
	WHERE id = $13 AND status = $14
`

// UpdateFromStatus persists the request only if the stored status still equals
// expected.
func (r *PlacementRepository) UpdateFromStatus(ctx context.Context, req *placement.Request, expected placement.Status) error {
	result, err := r.conn.Exec(ctx, placementUpdateSQL, placementUpdateArgs(req, expected)...)
	if err != nil {
		return fmt.Errorf("failed to update placement request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.explainZeroRows(ctx, r.conn, req.ID)
	}

	return nil
}

// ApproveWithinCapacity persists an approval while a seat is still free. The
// department row lock serializes approvals into the same department, so the
// seat count cannot be read stale by a racing reviewer.
func (r *PlacementRepository) ApproveWithinCapacity(ctx context.Context, req *placement.Request, capacity int) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var name string
		err := tx.QueryRow(ctx,
			"SELECT name FROM departments WHERE name = $1 FOR UPDATE",
			req.ApprovedDepartment.String(),
		).Scan(&name)
		if err != nil {
			if IsNoRows(err) {
				return shared.ErrNotFound
			}
			return fmt.Errorf("failed to lock department: %w", err)
		}

		var count int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM placement_requests
			WHERE approved_department = $1 AND academic_year = $2 AND status = $3
		`, req.ApprovedDepartment.String(), req.AcademicYear.String(), string(placement.StatusApproved)).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count approved placements: %w", err)
		}
		if count >= capacity {
			return shared.ErrDepartmentFull
		}

		result, err := tx.Exec(ctx, placementUpdateSQL, placementUpdateArgs(req, placement.StatusSubmitted)...)
		if err != nil {
			return fmt.Errorf("failed to update placement request: %w", err)
		}
		if result.RowsAffected() == 0 {
			return r.explainZeroRows(ctx, tx, req.ID)
		}
		return nil
	})
}

// placementUpdateArgs builds the argument list for placementUpdateSQL.
func placementUpdateArgs(req *placement.Request, expected placement.Status) []interface{} {
	return []interface{}{
		req.FirstChoice.String(),
		req.SecondChoice.String(),
		req.Statement,
		req.CGPA,
		req.TotalCredits,
		req.Score,
		string(req.Status),
		req.ApprovedDepartment.String(),
		req.RejectionReason,
		nullableID(req.ReviewedBy),
		req.ReviewedAt,
		time.Now().UTC(),
		req.ID,
		string(expected),
	}
}

// explainZeroRows distinguishes a vanished row from a row that moved on.
func (r *PlacementRepository) explainZeroRows(ctx context.Context, q Querier, id string) error {
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM placement_requests WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to update placement request: %w", err)
	}
	if !exists {
		return shared.ErrPlacementNotFound
	}
	return shared.ErrConcurrentModification
}

// CountApproved returns how many requests are approved into the department for
// the academic year.
func (r *PlacementRepository) CountApproved(ctx context.Context, department shared.Department, year shared.AcademicYear) (int, error) {
	query := `
		SELECT COUNT(*) FROM placement_requests
		WHERE approved_department = $1 AND academic_year = $2 AND status = $3
	`

	var count int
	err := r.conn.QueryRow(ctx, query, department.String(), year.String(), string(placement.StatusApproved)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved placements: %w", err)
	}

	return count, nil
}

// ListByStatus returns the requests in a status, highest priority score first.
func (r *PlacementRepository) ListByStatus(ctx context.Context, year shared.AcademicYear, status placement.Status) ([]*placement.Request, error) {
	query := "SELECT " + placementColumns + ` FROM placement_requests
		WHERE academic_year = $1 AND status = $2
		ORDER BY score DESC, created_at`

	rows, err := r.conn.Query(ctx, query, year.String(), string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list placement requests: %w", err)
	}
	defer rows.Close()

	var requests []*placement.Request
	for rows.Next() {
		req, err := scanPlacementRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan placement request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, nil
}

// scanRequest scans a single request from a row.
func (r *PlacementRepository) scanRequest(row pgx.Row) (*placement.Request, error) {
	req, err := scanPlacementRow(row)
	if IsNoRows(err) {
		return nil, shared.ErrPlacementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan placement request: %w", err)
	}
	return req, nil
}

// scanPlacementRow scans one request from any row source.
func scanPlacementRow(row pgx.Row) (*placement.Request, error) {
	var req placement.Request
	var studentID, academicYear, firstChoice, secondChoice string
	var status, approvedDept, reviewedBy string

	err := row.Scan(
		&req.ID,
		&studentID,
		&academicYear,
		&firstChoice,
		&secondChoice,
		&req.Statement,
		&req.CGPA,
		&req.TotalCredits,
		&req.Score,
		&status,
		&approvedDept,
		&req.RejectionReason,
		&reviewedBy,
		&req.ReviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.StudentID = shared.UserID(studentID)
	req.AcademicYear = shared.AcademicYear(academicYear)
	req.FirstChoice = shared.Department(firstChoice)
	req.SecondChoice = shared.Department(secondChoice)
	req.Status = placement.Status(status)
	req.ApprovedDepartment = shared.Department(approvedDept)
	req.ReviewedBy = shared.UserID(reviewedBy)

	return &req, nil
}
