package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "OPEN"
	TicketStatusInResolution TicketStatus = "IN_RESOLUTION"
	TicketStatusResolved     TicketStatus = "RESOLVED"
)

var (
	// ErrTicketResolved is returned when mutating a ticket that reached its terminal state.
	ErrTicketResolved = errors.New("ticket is resolved and no longer accepts replies")
	// ErrTicketNotInResolution is returned by Resolve outside IN_RESOLUTION.
	ErrTicketNotInResolution = errors.New("only tickets in resolution can be resolved")
	// ErrCreatorNotPlayer is returned when a non-player attempts to open a ticket.
	ErrCreatorNotPlayer = errors.New("only players can create tickets")
	// ErrReplyTicketMismatch is returned when a reply targets another ticket.
	ErrReplyTicketMismatch = errors.New("reply belongs to a different ticket")
	// ErrTicketTitleRequired and ErrTicketDescriptionRequired guard blank input.
	ErrTicketTitleRequired       = errors.New("ticket title is required")
	ErrTicketDescriptionRequired = errors.New("ticket description is required")
)

// Ticket is the aggregate for a player's support request and its reply thread.
// Status only moves forward: OPEN -> IN_RESOLUTION -> RESOLVED.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Creator      User
	Status       TicketStatus
	CreatedAt    time.Time
	LastUpdateAt time.Time
	ResolvedAt   *time.Time

	replies []Reply
}

// NewTicket opens a ticket on behalf of a player.
func NewTicket(id string, creator *User, title, description string, now time.Time) (*Ticket, error) {
	if !creator.IsPlayer() {
		return nil, ErrCreatorNotPlayer
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, ErrTicketTitleRequired
	}
	if description == "" {
		return nil, ErrTicketDescriptionRequired
	}
	return &Ticket{
		ID:           id,
		Title:        title,
		Description:  description,
		Creator:      *creator,
		Status:       TicketStatusOpen,
		CreatedAt:    now,
		LastUpdateAt: now,
	}, nil
}

// RestoreTicket rebuilds a ticket from storage without re-running the transition rules.
func RestoreTicket(t Ticket, replies []Reply) *Ticket {
	t.replies = append([]Reply(nil), replies...)
	return &t
}

// AddReply appends a reply. The first agent reply on an open ticket moves it to IN_RESOLUTION.
func (t *Ticket) AddReply(reply Reply, now time.Time) error {
	if t.Status == TicketStatusResolved {
		return ErrTicketResolved
	}
	if reply.TicketID != "" && reply.TicketID != t.ID {
		return ErrReplyTicketMismatch
	}
	reply.TicketID = t.ID
	t.replies = append(t.replies, reply)
	t.LastUpdateAt = now
	if reply.Author.IsAgent() && t.Status == TicketStatusOpen {
		t.Status = TicketStatusInResolution
	}
	return nil
}

// Resolve closes the ticket for good.
func (t *Ticket) Resolve(now time.Time) error {
	if t.Status != TicketStatusInResolution {
		return ErrTicketNotInResolution
	}
	t.Status = TicketStatusResolved
	t.ResolvedAt = &now
	t.LastUpdateAt = now
	return nil
}

// IsResolved reports whether the ticket reached its terminal state.
func (t *Ticket) IsResolved() bool {
	return t.Status == TicketStatusResolved
}

// Messages returns the replies ordered by creation time, oldest first.
func (t *Ticket) Messages() []Reply {
	out := append([]Reply(nil), t.replies...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ReplyCount returns the thread length.
func (t *Ticket) ReplyCount() int {
	return len(t.replies)
}
