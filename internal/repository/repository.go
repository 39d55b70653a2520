package repository

import (
	"context"
	"errors"

	"github.com/playdesk/support-desk/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for players and agents.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPlayerNumber(ctx context.Context, playerNumber string) (bool, error)
}

// TicketRepository encapsulates ticket, reply and history persistence.
// Tickets are returned with their replies loaded.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*domain.Ticket, error)
	ListUnresolved(ctx context.Context) ([]*domain.Ticket, error)
	AddReply(ctx context.Context, reply *domain.Reply) error
	AddHistory(ctx context.Context, entry *domain.TicketHistory) error
	ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

// Repositories groups the repositories bound to one unit of work.
type Repositories interface {
	Users() UserRepository
	Tickets() TicketRepository
}

// UnitOfWork runs repository calls either directly or inside a transaction.
// Inside WithinTx, ticket reads lock the row until the transaction ends.
type UnitOfWork interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
