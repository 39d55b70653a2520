package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrReplyContentRequired guards blank replies.
var ErrReplyContentRequired = errors.New("reply content is required")

// Reply is an immutable message in a ticket thread, written by a player or an agent.
type Reply struct {
	ID        string
	TicketID  string
	Content   string
	Author    User
	CreatedAt time.Time
}

// NewReply builds a reply authored by author.
func NewReply(id, ticketID string, author *User, content string, now time.Time) (Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Reply{}, ErrReplyContentRequired
	}
	return Reply{
		ID:        id,
		TicketID:  ticketID,
		Content:   content,
		Author:    *author,
		CreatedAt: now,
	}, nil
}
