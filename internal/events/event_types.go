package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketResolved EventType = "ticket_resolved"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries what admin notifications need.
type TicketCreatedPayload struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Creator     domain.UserRef        `json:"creator"`
}

// TicketAssignedPayload carries what assignee notifications need.
type TicketAssignedPayload struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
	Assignee    domain.UserRef         `json:"assignee"`
}

// TicketResolvedPayload carries what creator notifications need.
type TicketResolvedPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Creator     domain.UserRef `json:"creator"`
}
