package student

import (
	"context"
	"time"
)

// StandingCache caches derived standings keyed by student ID. Implementations
// live in infrastructure/persistence.
type StandingCache interface {
	// GetStanding returns the cached standing, or an error on miss.
	GetStanding(ctx context.Context, studentID string) (*Standing, error)

	// SetStanding caches the standing with a TTL.
	SetStanding(ctx context.Context, studentID string, s Standing, ttl time.Duration) error

	// Invalidate drops the cached standing.
	Invalidate(ctx context.Context, studentID string) error
}
