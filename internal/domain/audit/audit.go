// Package audit contains the audit trail contract. Every state transition is
// recorded with its actor; recording is best-effort and never blocks the
// transition.
package audit

import (
	"context"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Entry is one audit record.
type Entry struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	ActorID  shared.UserID
	Action   string
	TargetID string
	Details  map[string]any

	CreatedAt time.Time
}

// Recorder records audit entries.
type Recorder interface {
	// Record persists one entry. Best-effort: the caller logs and swallows
	// errors.
	Record(ctx context.Context, actorID shared.UserID, action, targetID string, details map[string]any) error
}

// Repository defines persistence for audit entries.
type Repository interface {
	// Create persists an entry.
	Create(ctx context.Context, e *Entry) error

	// ListByTarget returns entries for a target, newest first.
	ListByTarget(ctx context.Context, targetID string, limit int) ([]*Entry, error)
}
