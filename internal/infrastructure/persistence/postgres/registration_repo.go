package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/registration"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION REPOSITORY IMPLEMENTATION
// Course line items live in a JSONB column; the registration number and the
// (student, year, semester) pair each carry a unique constraint so racing
// registrations are decided here.
// ══════════════════════════════════════════════════════════════════════════════

const registrationColumns = `
	id, number, student_id, academic_year, study_year, semester,
	items, total_credits, created_at
`

// registrationItem is the JSONB shape of one course line item.
type registrationItem struct {
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	Credits    int    `json:"credits"`
	IsRepeat   bool   `json:"is_repeat,omitempty"`
}

// RegistrationRepository implements registration.Repository for PostgreSQL.
type RegistrationRepository struct {
	conn *Connection
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(conn *Connection) *RegistrationRepository {
	return &RegistrationRepository{conn: conn}
}

// Create persists a registration.
func (r *RegistrationRepository) Create(ctx context.Context, reg *registration.Registration) error {
	items := make([]registrationItem, len(reg.Items))
	for i, item := range reg.Items {
		items[i] = registrationItem{
			CourseID:   item.CourseID.String(),
			CourseCode: item.CourseCode.String(),
			Title:      item.Title,
			Credits:    item.Credits.Int(),
			IsRepeat:   item.IsRepeat,
		}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal registration items: %w", err)
	}

	query := `
		INSERT INTO registrations (
			id, number, student_id, academic_year, study_year, semester,
			items, total_credits, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.conn.Exec(ctx, query,
		reg.ID,
		reg.Number,
		reg.StudentID.String(),
		reg.AcademicYear.String(),
		reg.Year.Int(),
		reg.Semester.Int(),
		itemsJSON,
		reg.TotalCredits,
		reg.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			// Either the semester slot or the number collided. A duplicate
			// number only happens when two registrations drew the same
			// sequence, so the semester slot is the common case.
			var taken bool
			checkErr := r.conn.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM registrations
					WHERE student_id = $1 AND academic_year = $2 AND semester = $3)`,
				reg.StudentID.String(), reg.AcademicYear.String(), reg.Semester.Int(),
			).Scan(&taken)
			if checkErr == nil && taken {
				return shared.ErrAlreadyRegistered
			}
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}

	return nil
}

// GetByID returns a registration by internal ID.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*registration.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE id = $1"
	return r.scanRegistration(ctx, query, id)
}

// GetForSemester returns the student's registration for the semester.
func (r *RegistrationRepository) GetForSemester(ctx context.Context, studentID shared.UserID, year shared.AcademicYear, semester shared.Semester) (*registration.Registration, error) {
	query := "SELECT " + registrationColumns + ` FROM registrations
		WHERE student_id = $1 AND academic_year = $2 AND semester = $3`
	return r.scanRegistration(ctx, query, studentID.String(), year.String(), semester.Int())
}

// NextSequence atomically increments and returns the running sequence for the
// (academic year, study year, semester) bucket. The upsert does the increment
// inside one statement, so concurrent callers always draw distinct values.
func (r *RegistrationRepository) NextSequence(ctx context.Context, year shared.AcademicYear, studyYear shared.StudyYear, semester shared.Semester) (int, error) {
	query := `
		INSERT INTO registration_sequences (academic_year, study_year, semester, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (academic_year, study_year, semester)
		DO UPDATE SET value = registration_sequences.value + 1
		RETURNING value
	`

	var value int
	err := r.conn.QueryRow(ctx, query, year.String(), studyYear.Int(), semester.Int()).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance registration sequence: %w", err)
	}

	return value, nil
}

// scanRegistration runs a single-row query and maps the result.
func (r *RegistrationRepository) scanRegistration(ctx context.Context, query string, args ...interface{}) (*registration.Registration, error) {
	var reg registration.Registration
	var studentID, academicYear string
	var studyYear, semester int
	var itemsJSON []byte

	err := r.conn.QueryRow(ctx, query, args...).Scan(
		&reg.ID,
		&reg.Number,
		&studentID,
		&academicYear,
		&studyYear,
		&semester,
		&itemsJSON,
		&reg.TotalCredits,
		&reg.CreatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}

	var items []registrationItem
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registration items: %w", err)
	}

	reg.StudentID = shared.UserID(studentID)
	reg.AcademicYear = shared.AcademicYear(academicYear)
	reg.Year = shared.StudyYear(studyYear)
	reg.Semester = shared.Semester(semester)
	for _, item := range items {
		reg.Items = append(reg.Items, registration.Item{
			CourseID:   shared.CourseID(item.CourseID),
			CourseCode: shared.CourseCode(item.CourseCode),
			Title:      item.Title,
			Credits:    shared.Credits(item.Credits),
			IsRepeat:   item.IsRepeat,
		})
	}

	return &reg, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PERIOD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const periodColumns = `
	id, period_type, academic_year, semester, department,
	start_date, end_date, active, created_at, updated_at
`

// PeriodRepository implements registration.PeriodRepository for PostgreSQL.
type PeriodRepository struct {
	conn *Connection
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(conn *Connection) *PeriodRepository {
	return &PeriodRepository{conn: conn}
}

// Create persists a period. The partial unique index on active rows rejects a
// second active window for the same key.
func (r *PeriodRepository) Create(ctx context.Context, p *registration.Period) error {
	query := `
		INSERT INTO registration_periods (
			id, period_type, academic_year, semester, department,
			start_date, end_date, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		string(p.Type),
		p.AcademicYear.String(),
		p.Semester.Int(),
		p.Department.String(),
		p.StartDate,
		p.EndDate,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create period: %w", err)
	}

	return nil
}

// GetActive returns the active period for the exact key.
func (r *PeriodRepository) GetActive(ctx context.Context, t registration.PeriodType, year shared.AcademicYear, semester shared.Semester, department shared.Department) (*registration.Period, error) {
	query := "SELECT " + periodColumns + ` FROM registration_periods
		WHERE period_type = $1 AND academic_year = $2 AND semester = $3
			AND department = $4 AND active`

	var p registration.Period
	var periodType, academicYear, dept string
	var sem int

	err := r.conn.QueryRow(ctx, query, string(t), year.String(), semester.Int(), department.String()).Scan(
		&p.ID,
		&periodType,
		&academicYear,
		&sem,
		&dept,
		&p.StartDate,
		&p.EndDate,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.NewDomainError("registration", "GetActivePeriod", shared.ErrNotFound,
			"no active period for the requested window")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active period: %w", err)
	}

	p.Type = registration.PeriodType(periodType)
	p.AcademicYear = shared.AcademicYear(academicYear)
	p.Semester = shared.Semester(sem)
	p.Department = shared.Department(dept)

	return &p, nil
}

// Update persists period changes.
func (r *PeriodRepository) Update(ctx context.Context, p *registration.Period) error {
	query := `
		UPDATE registration_periods SET
			start_date = $1,
			end_date = $2,
			active = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query, p.StartDate, p.EndDate, p.Active, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update period: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NewDomainError("registration", "UpdatePeriod", shared.ErrNotFound,
			"period not found")
	}

	return nil
}
