package service

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/audit"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

// AuditService implements audit.Recorder by persisting entries.
type AuditService struct {
	repo  audit.Repository
	ids   shared.IDGenerator
	clock timeutil.Clock
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo audit.Repository, ids shared.IDGenerator, clock timeutil.Clock) *AuditService {
	return &AuditService{repo: repo, ids: ids, clock: clock}
}

// Record persists one audit entry.
func (s *AuditService) Record(ctx context.Context, actorID shared.UserID, action, targetID string, details map[string]any) error {
	e := &audit.Entry{
		ID:        s.ids.GenerateID(),
		ActorID:   actorID,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		CreatedAt: s.clock.Now(),
	}

	return s.repo.Create(ctx, e)
}
