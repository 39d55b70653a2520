package dto

import (
	"time"

	"github.com/playdesk/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Status       domain.TicketStatus `json:"status"`
	Creator      UserSummary         `json:"creator"`
	ReplyCount   int                 `json:"reply_count"`
	CreatedAt    time.Time           `json:"created_at"`
	LastUpdateAt time.Time           `json:"last_update_at"`
	ResolvedAt   *time.Time          `json:"resolved_at,omitempty"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       domain.TicketStatus `json:"status"`
	Creator      UserSummary         `json:"creator"`
	CreatedAt    time.Time           `json:"created_at"`
	LastUpdateAt time.Time           `json:"last_update_at"`
	ResolvedAt   *time.Time          `json:"resolved_at,omitempty"`
	Replies      []ReplyResponse     `json:"replies"`
}

// ReplyResponse represents one message of the thread.
type ReplyResponse struct {
	ID        string      `json:"id"`
	TicketID  string      `json:"ticket_id"`
	Content   string      `json:"content"`
	Author    UserSummary `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
}

// TicketHistoryResponse is one status change.
type TicketHistoryResponse struct {
	ID          string              `json:"id"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	ChangedByID string              `json:"changed_by_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewTicketSummary maps a ticket to its list form.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Status:       ticket.Status,
		Creator:      NewUserSummary(&ticket.Creator),
		ReplyCount:   ticket.ReplyCount(),
		CreatedAt:    ticket.CreatedAt,
		LastUpdateAt: ticket.LastUpdateAt,
		ResolvedAt:   ticket.ResolvedAt,
	}
}

// NewTicketSummaries maps a list of tickets, never returning nil.
func NewTicketSummaries(tickets []*domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for _, ticket := range tickets {
		items = append(items, NewTicketSummary(ticket))
	}
	return items
}

// NewTicketDetail maps a ticket with its replies in chronological order.
func NewTicketDetail(ticket *domain.Ticket) TicketDetailResponse {
	messages := ticket.Messages()
	replies := make([]ReplyResponse, 0, len(messages))
	for i := range messages {
		replies = append(replies, NewReplyResponse(&messages[i]))
	}
	return TicketDetailResponse{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Creator:      NewUserSummary(&ticket.Creator),
		CreatedAt:    ticket.CreatedAt,
		LastUpdateAt: ticket.LastUpdateAt,
		ResolvedAt:   ticket.ResolvedAt,
		Replies:      replies,
	}
}

// NewReplyResponse maps a reply.
func NewReplyResponse(reply *domain.Reply) ReplyResponse {
	return ReplyResponse{
		ID:        reply.ID,
		TicketID:  reply.TicketID,
		Content:   reply.Content,
		Author:    NewUserSummary(&reply.Author),
		CreatedAt: reply.CreatedAt,
	}
}

// NewHistoryResponses maps audit entries.
func NewHistoryResponses(entries []domain.TicketHistory) []TicketHistoryResponse {
	resp := make([]TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, TicketHistoryResponse{
			ID:          entry.ID,
			OldStatus:   entry.OldStatus,
			NewStatus:   entry.NewStatus,
			ChangedByID: entry.ChangedByID,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return resp
}
