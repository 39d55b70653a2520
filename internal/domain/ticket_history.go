package domain

import "time"

// TicketHistory is an immutable audit trail entry for a status transition.
type TicketHistory struct {
	ID          string
	TicketID    string
	OldStatus   TicketStatus
	NewStatus   TicketStatus
	ChangedByID string
	CreatedAt   time.Time
}
