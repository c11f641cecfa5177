package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const userColumns = `
	id, COALESCE(student_number, ''), name, email, password_hash, role, department,
	current_year, current_semester, status, cgpa, total_credits_earned,
	probation, dismissed, standing_updated_at, created_at, updated_at
`

// UserRepository implements student.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *student.User) error {
	query := `
		INSERT INTO users (
			id, student_number, name, email, password_hash, role, department,
			current_year, current_semester, status, cgpa, total_credits_earned,
			probation, dismissed, standing_updated_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID.String(),
		u.StudentNumber,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role.String(),
		u.Department.String(),
		u.CurrentYear.Int(),
		u.CurrentSemester.Int(),
		u.Status.String(),
		u.Standing.CGPA,
		u.Standing.TotalCreditsEarned,
		u.Standing.Probation,
		u.Standing.Dismissed,
		nullableTime(u.Standing.LastUpdated),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.UserID) (*student.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return r.scanUser(r.conn.QueryRow(ctx, query, id.String()))
}

// GetByStudentNumber returns a student by student number.
func (r *UserRepository) GetByStudentNumber(ctx context.Context, number string) (*student.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE student_number = $1"
	return r.scanUser(r.conn.QueryRow(ctx, query, number))
}

// Update updates a user.
func (r *UserRepository) Update(ctx context.Context, u *student.User) error {
	query := `
		UPDATE users SET
			student_number = $1,
			name = $2,
			email = $3,
			password_hash = $4,
			role = $5,
			department = $6,
			current_year = $7,
			current_semester = $8,
			status = $9,
			cgpa = $10,
			total_credits_earned = $11,
			probation = $12,
			dismissed = $13,
			standing_updated_at = $14,
			updated_at = $15
		WHERE id = $16
	`

	result, err := r.conn.Exec(ctx, query,
		u.StudentNumber,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role.String(),
		u.Department.String(),
		u.CurrentYear.Int(),
		u.CurrentSemester.Int(),
		u.Status.String(),
		u.Standing.CGPA,
		u.Standing.TotalCreditsEarned,
		u.Standing.Probation,
		u.Standing.Dismissed,
		nullableTime(u.Standing.LastUpdated),
		time.Now().UTC(),
		u.ID.String(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// UpdateStanding persists the standing and account status only.
func (r *UserRepository) UpdateStanding(ctx context.Context, id shared.UserID, standing student.Standing, status student.AccountStatus) error {
	query := `
		UPDATE users SET
			cgpa = $1,
			total_credits_earned = $2,
			probation = $3,
			dismissed = $4,
			standing_updated_at = $5,
			status = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		standing.CGPA,
		standing.TotalCreditsEarned,
		standing.Probation,
		standing.Dismissed,
		nullableTime(standing.LastUpdated),
		status.String(),
		time.Now().UTC(),
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update standing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// ListByRole returns users holding the role.
func (r *UserRepository) ListByRole(ctx context.Context, role shared.Role) ([]*student.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE role = $1 AND status = 'active' ORDER BY name"

	rows, err := r.conn.Query(ctx, query, role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// GetDepartmentHead returns the department head for a department.
func (r *UserRepository) GetDepartmentHead(ctx context.Context, department shared.Department) (*student.User, error) {
	query := "SELECT " + userColumns + ` FROM users
		WHERE role = $1 AND department = $2 AND status = 'active'
		LIMIT 1`

	return r.scanUser(r.conn.QueryRow(ctx, query, shared.RoleDepartmentHead.String(), department.String()))
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanUser scans a single user from a row.
func (r *UserRepository) scanUser(row pgx.Row) (*student.User, error) {
	var u student.User
	var id, role, department, status string
	var currentYear, currentSemester int
	var standingUpdated *time.Time

	err := row.Scan(
		&id,
		&u.StudentNumber,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&department,
		&currentYear,
		&currentSemester,
		&status,
		&u.Standing.CGPA,
		&u.Standing.TotalCreditsEarned,
		&u.Standing.Probation,
		&u.Standing.Dismissed,
		&standingUpdated,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.ID = shared.UserID(id)
	u.Role = shared.Role(role)
	u.Department = shared.Department(department)
	u.CurrentYear = shared.StudyYear(currentYear)
	u.CurrentSemester = shared.Semester(currentSemester)
	u.Status = student.AccountStatus(status)
	if standingUpdated != nil {
		u.Standing.LastUpdated = *standingUpdated
	}

	return &u, nil
}

// scanUsers scans multiple users from rows.
func (r *UserRepository) scanUsers(rows pgx.Rows) ([]*student.User, error) {
	var users []*student.User

	for rows.Next() {
		var u student.User
		var id, role, department, status string
		var currentYear, currentSemester int
		var standingUpdated *time.Time

		err := rows.Scan(
			&id,
			&u.StudentNumber,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&role,
			&department,
			&currentYear,
			&currentSemester,
			&status,
			&u.Standing.CGPA,
			&u.Standing.TotalCreditsEarned,
			&u.Standing.Probation,
			&u.Standing.Dismissed,
			&standingUpdated,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		u.ID = shared.UserID(id)
		u.Role = shared.Role(role)
		u.Department = shared.Department(department)
		u.CurrentYear = shared.StudyYear(currentYear)
		u.CurrentSemester = shared.Semester(currentSemester)
		u.Status = student.AccountStatus(status)
		if standingUpdated != nil {
			u.Standing.LastUpdated = *standingUpdated
		}

		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

// nullableTime maps a zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
