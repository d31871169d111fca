package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo string                 `json:"assignedTo"`
	Priority   *domain.TicketPriority `json:"priority,omitempty"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdateNotesRequest payload.
type UpdateNotesRequest struct {
	InternalNotes string `json:"internalNotes"`
}

// TicketResponse is the ticket projection returned to clients. Internal
// notes appear only for admin and support callers.
type TicketResponse struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Category      domain.TicketCategory  `json:"category"`
	Priority      *domain.TicketPriority `json:"priority,omitempty"`
	Status        domain.TicketStatus    `json:"status"`
	CreatedBy     *domain.UserRef        `json:"createdBy,omitempty"`
	AssignedTo    *domain.UserRef        `json:"assignedTo,omitempty"`
	InternalNotes *string                `json:"internalNotes,omitempty"`
	ResolvedAt    *time.Time             `json:"resolvedAt,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// TicketFromDomain projects a ticket for responses.
func TicketFromDomain(ticket *domain.Ticket, includeNotes bool) TicketResponse {
	resp := TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		CreatedBy:   ticket.Creator,
		AssignedTo:  ticket.Assignee,
		ResolvedAt:  ticket.ResolvedAt,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if includeNotes {
		notes := ticket.InternalNotes
		resp.InternalNotes = &notes
	}
	return resp
}

// TicketsFromDomain projects a slice of tickets.
func TicketsFromDomain(tickets []domain.Ticket, includeNotes bool) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, TicketFromDomain(&tickets[i], includeNotes))
	}
	return result
}
