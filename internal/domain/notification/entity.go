// Package notification contains the notification entity and the one-way sink
// the engine emits through. Delivery is best-effort: sink failures are logged
// by callers and never abort the triggering transition.
package notification

import (
	"context"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// Category classifies notifications for display grouping.
type Category string

const (
	CategoryGrade        Category = "grade"
	CategoryStanding     Category = "standing"
	CategoryRegistration Category = "registration"
	CategoryPlacement    Category = "placement"
	CategoryEvaluation   Category = "evaluation"
)

// Notification is one message to one recipient.
type Notification struct {
	// ID - internal unique identifier (UUID in string format).
	ID string

	RecipientID shared.UserID
	Title       string
	Message     string
	Category    Category

	// Link - optional in-app link target.
	Link string

	Read      bool
	CreatedAt time.Time
}

// Sink is the one-way emission interface the engine depends on.
type Sink interface {
	// Emit delivers a notification. Fire-and-forget: the caller logs and
	// swallows errors.
	Emit(ctx context.Context, recipientID shared.UserID, title, message string, category Category, link string) error
}

// Repository defines persistence for notifications.
type Repository interface {
	// Create persists a notification.
	Create(ctx context.Context, n *Notification) error

	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID shared.UserID, limit int) ([]*Notification, error)
}
