package course

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Repository defines read access to the course catalog.
type Repository interface {
	// GetByID returns a course by internal ID.
	// Returns ErrCourseNotFound when absent.
	GetByID(ctx context.Context, id shared.CourseID) (*Course, error)

	// GetByCode returns a course by catalog code.
	// Returns ErrCourseNotFound when absent.
	GetByCode(ctx context.Context, code shared.CourseCode) (*Course, error)

	// ListByIDs returns the courses for the given IDs, in no particular order.
	ListByIDs(ctx context.Context, ids []shared.CourseID) ([]*Course, error)

	// ListCatalog returns the catalog for (department, year, semester).
	ListCatalog(ctx context.Context, department shared.Department, year shared.StudyYear, semester shared.Semester) ([]*Course, error)
}

// DepartmentRepository defines access to departments and their placement
// capacities.
type DepartmentRepository interface {
	// Get returns a department by name.
	// Returns shared.ErrNotFound when absent.
	Get(ctx context.Context, name shared.Department) (*Department, error)

	// List returns all departments.
	List(ctx context.Context) ([]*Department, error)
}
