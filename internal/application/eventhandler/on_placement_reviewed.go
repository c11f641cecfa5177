package eventhandler

import (
	"context"

	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
)

// OnPlacementChanged drops the cached priority ranking whenever a request
// enters or leaves the submitted pool, so reviewers never rank against a
// stale list.
type OnPlacementChanged struct {
	cache placement.RankingCache
	log   *logger.Logger
}

// NewOnPlacementChanged creates the subscriber. cache may be nil when Redis is
// disabled; the handler is then a no-op.
func NewOnPlacementChanged(cache placement.RankingCache, log *logger.Logger) *OnPlacementChanged {
	if log == nil {
		log = logger.Default()
	}
	return &OnPlacementChanged{cache: cache, log: log}
}

// HandlerName implements shared.EventHandler.
func (h *OnPlacementChanged) HandlerName() string {
	return "placement-ranking-invalidate"
}

// Handle implements shared.EventHandler.
func (h *OnPlacementChanged) Handle(ctx context.Context, event shared.Event) error {
	if h.cache == nil {
		return nil
	}
	e, ok := event.(shared.PlacementReviewedEvent)
	if !ok {
		return nil
	}

	if !e.AcademicYear.IsValid() {
		return nil
	}
	if err := h.cache.Invalidate(ctx, e.AcademicYear); err != nil {
		h.log.Warn("placement ranking invalidation failed",
			logger.String("request_id", e.RequestID),
			logger.Err(err))
	}
	return nil
}
