package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// AllTicketStatuses lists every status in display order. Statistics
// responses zero-fill from this list.
var AllTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether the status is one of the recognized values.
// There is no transition-order constraint: any status may move to any
// other, so an agent can reopen a closed ticket.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketCategory enumerates the areas tickets are filed under.
type TicketCategory string

const (
	TicketCategoryIT     TicketCategory = "IT"
	TicketCategoryHR     TicketCategory = "HR"
	TicketCategoryOffice TicketCategory = "Office"
)

// Valid reports whether the category is one of the recognized values.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryIT, TicketCategoryHR, TicketCategoryOffice:
		return true
	}
	return false
}

// TicketPriority enumerates urgency, set by an admin at assignment.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Valid reports whether the priority is one of the recognized values.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Status, assignment and
// priority are mutated only through the ticket service; closure is a
// status value, never a row deletion.
type Ticket struct {
	ID            string
	Title         string
	Description   string
	Category      TicketCategory
	Priority      *TicketPriority
	Status        TicketStatus
	CreatedBy     string
	AssignedTo    *string
	InternalNotes string
	ResolvedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Display projections populated by repository joins.
	Creator  *UserRef
	Assignee *UserRef
}
