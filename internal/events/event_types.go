package events

import (
	"time"

	"github.com/spec-kit/support-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventTicketCreated      EventType = "ticket_created"
	EventTicketClosed       EventType = "ticket_closed"
	EventTicketMessageAdded EventType = "ticket_message_added"
	EventDeletionEnqueued   EventType = "deletion_enqueued"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID int64              `json:"ticket_id"`
	Theme    domain.TicketTheme `json:"theme"`
	OwnerID  int64              `json:"owner_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	TicketID   int64  `json:"ticket_id"`
	ClosedByID *int64 `json:"closed_by_id,omitempty"`
	Reopened   bool   `json:"reopened,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	TicketID    int64  `json:"ticket_id"`
	MessageID   int64  `json:"message_id"`
	AuthorID    int64  `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}

// DeletionEnqueuedPayload payload.
type DeletionEnqueuedPayload struct {
	TaskID   string `json:"task_id"`
	Kind     string `json:"kind"`
	TargetID int64  `json:"target_id"`
}
