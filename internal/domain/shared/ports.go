package shared

import "context"

// IDGenerator produces unique entity IDs (UUID strings).
type IDGenerator interface {
	GenerateID() string
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	// Hash returns the hash of a plaintext password.
	Hash(password string) (string, error)

	// Verify reports whether the plaintext matches the hash.
	Verify(hash, password string) bool
}

// EventPublisher is the publish side of the event bus, for callers that only
// emit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
