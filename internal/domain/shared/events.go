// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the progression cycle.
const (
	// Grade lifecycle events
	EventGradeSubmitted EventType = "grade.submitted"
	EventGradeApproved  EventType = "grade.approved"
	EventGradeRejected  EventType = "grade.rejected"
	EventGradeFinalized EventType = "grade.finalized"
	EventGradesLocked   EventType = "grade.locked"

	// Standing events
	EventStandingChanged EventType = "standing.changed"

	// Registration events
	EventRegistrationCreated EventType = "registration.created"

	// Placement events
	EventPlacementSubmitted EventType = "placement.submitted"
	EventPlacementApproved  EventType = "placement.approved"
	EventPlacementRejected  EventType = "placement.rejected"

	// Evaluation events
	EventEvaluationSubmitted EventType = "evaluation.submitted"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload implements Event interface with an empty payload.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewBaseEvent creates a BaseEvent for embedding in concrete events.
func NewBaseEvent(t EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{Type: t, Timestamp: at, AggregateId: aggregateID}
}

// ─────────────────────────────────────────────────────────────────────────────
// Concrete events
// ─────────────────────────────────────────────────────────────────────────────

// GradeTransitionedEvent is emitted on every grade lifecycle transition.
type GradeTransitionedEvent struct {
	BaseEvent
	GradeID      string
	StudentID    UserID
	CourseID     CourseID
	CourseCode   CourseCode
	AcademicYear AcademicYear
	Semester     Semester
	FromStatus   string
	ToStatus     string
	LetterGrade  string
	ActorID      UserID
}

// Payload implements Event interface.
func (e GradeTransitionedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"grade_id":      e.GradeID,
		"student_id":    e.StudentID.String(),
		"course_id":     e.CourseID.String(),
		"course_code":   e.CourseCode.String(),
		"academic_year": e.AcademicYear.String(),
		"semester":      e.Semester.Int(),
		"from_status":   e.FromStatus,
		"to_status":     e.ToStatus,
		"letter_grade":  e.LetterGrade,
		"actor_id":      e.ActorID.String(),
	}
}

// StandingChangedEvent is emitted when a recomputation changes the derived
// (probation, dismissed, account status) triple.
type StandingChangedEvent struct {
	BaseEvent
	StudentID UserID
	CGPA      float64
	Probation bool
	Dismissed bool
	Change    string // "dismissal", "probation", "improved"
}

// Payload implements Event interface.
func (e StandingChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID.String(),
		"cgpa":       e.CGPA,
		"probation":  e.Probation,
		"dismissed":  e.Dismissed,
		"change":     e.Change,
	}
}

// RegistrationCreatedEvent is emitted when a semester registration persists.
type RegistrationCreatedEvent struct {
	BaseEvent
	RegistrationID     string
	RegistrationNumber string
	StudentID          UserID
	AcademicYear       AcademicYear
	Semester           Semester
	TotalCredits       int
	RepeatOnly         bool
}

// Payload implements Event interface.
func (e RegistrationCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"registration_id":     e.RegistrationID,
		"registration_number": e.RegistrationNumber,
		"student_id":          e.StudentID.String(),
		"academic_year":       e.AcademicYear.String(),
		"semester":            e.Semester.Int(),
		"total_credits":       e.TotalCredits,
		"repeat_only":         e.RepeatOnly,
	}
}

// PlacementReviewedEvent is emitted when a placement request is approved or
// rejected.
type PlacementReviewedEvent struct {
	BaseEvent
	RequestID    string
	StudentID    UserID
	AcademicYear AcademicYear
	Department   Department
	Approved     bool
	ReviewerID   UserID
}

// Payload implements Event interface.
func (e PlacementReviewedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"request_id":    e.RequestID,
		"student_id":    e.StudentID.String(),
		"academic_year": e.AcademicYear.String(),
		"department":    e.Department.String(),
		"approved":      e.Approved,
		"reviewer_id":   e.ReviewerID.String(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Event bus contracts
// ─────────────────────────────────────────────────────────────────────────────

// EventHandler processes domain events.
type EventHandler interface {
	// HandlerName identifies the handler in logs and metrics.
	HandlerName() string

	// Handle processes the event. Errors are logged by the bus, never
	// propagated to the publisher.
	Handle(ctx context.Context, event Event) error
}

// EventBus publishes domain events to subscribed handlers.
type EventBus interface {
	// Publish delivers the events to all handlers subscribed to their types.
	Publish(ctx context.Context, events ...Event) error

	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error
}
