package service

import (
	"context"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// NotificationService implements notification.Sink by persisting
// notifications for in-app delivery.
type NotificationService struct {
	repo  notification.Repository
	ids   shared.IDGenerator
	clock timeutil.Clock
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo notification.Repository, ids shared.IDGenerator, clock timeutil.Clock) *NotificationService {
	return &NotificationService{repo: repo, ids: ids, clock: clock}
}

// Emit persists one notification.
func (s *NotificationService) Emit(ctx context.Context, recipientID shared.UserID, title, message string, category notification.Category, link string) error {
	if recipientID.IsEmpty() {
		return fmt.Errorf("notification: recipient is required")
	}

	n := &notification.Notification{
		ID:          s.ids.GenerateID(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Category:    category,
		Link:        link,
		CreatedAt:   s.clock.Now(),
	}

	return s.repo.Create(ctx, n)
}
