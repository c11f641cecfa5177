// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/audit"
	"github.com/unihub/academic-records-hub/internal/domain/notification"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
	"github.com/unihub/academic-records-hub/pkg/retry"
)

// SideEffects bundles the best-effort channels every transition fans out to:
// notifications, the audit trail, and domain events. Failures on any channel
// are logged and swallowed; they never abort the transition that triggered
// them.
type SideEffects struct {
	sink     notification.Sink
	auditor  audit.Recorder
	events   shared.EventPublisher
	log      *logger.Logger
	retryCfg retry.Config
}

// NewSideEffects creates the side-effect bundle. Any dependency may be nil;
// the corresponding channel is then skipped.
func NewSideEffects(sink notification.Sink, auditor audit.Recorder, events shared.EventPublisher, log *logger.Logger) *SideEffects {
	if log == nil {
		log = logger.Default()
	}
	return &SideEffects{
		sink:     sink,
		auditor:  auditor,
		events:   events,
		log:      log,
		retryCfg: retry.DefaultConfig(),
	}
}

// Notify emits one notification with retries.
func (s *SideEffects) Notify(ctx context.Context, recipientID shared.UserID, title, message string, category notification.Category, link string) {
	if s.sink == nil {
		return
	}
	err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		return s.sink.Emit(ctx, recipientID, title, message, category, link)
	})
	if err != nil {
		s.log.Warn("notification emission failed",
			logger.String("recipient", recipientID.String()),
			logger.String("title", title),
			logger.Err(err))
	}
}

// Audit records one audit entry.
func (s *SideEffects) Audit(ctx context.Context, actorID shared.UserID, action, targetID string, details map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, actorID, action, targetID, details); err != nil {
		s.log.Warn("audit record failed",
			logger.String("action", action),
			logger.String("target", targetID),
			logger.Err(err))
	}
}

// Publish publishes domain events.
func (s *SideEffects) Publish(ctx context.Context, events ...shared.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.log.Warn("event publish failed", logger.Err(err))
	}
}
