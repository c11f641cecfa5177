package postgres

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, title, message, category, link, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID,
		n.RecipientID.String(),
		n.Title,
		n.Message,
		string(n.Category),
		n.Link,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID shared.UserID, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, recipient_id, title, message, category, link, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, recipientID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		var rid, category string

		err := rows.Scan(&n.ID, &rid, &n.Title, &n.Message, &category, &n.Link, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.RecipientID = shared.UserID(rid)
		n.Category = notification.Category(category)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}
