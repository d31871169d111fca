package domain

import "time"

// Comment is a discussion entry on a ticket. Comments are immutable
// once created and are ordered by creation time ascending.
type Comment struct {
	ID         string
	TicketID   string
	UserID     string
	Text       string
	Attachment *string
	CreatedAt  time.Time

	// Author projection populated by repository joins.
	Author *UserRef
}
