// Package memory provides a process-local UnitOfWork used when no database is configured
// and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/repository"
)

var _ repository.UnitOfWork = (*Store)(nil)

type ticketRecord struct {
	ticket  domain.Ticket
	replies []domain.Reply
}

type state struct {
	users   map[string]domain.User
	tickets map[string]ticketRecord
	history map[string][]domain.TicketHistory
}

func (s state) clone() state {
	out := state{
		users:   make(map[string]domain.User, len(s.users)),
		tickets: make(map[string]ticketRecord, len(s.tickets)),
		history: make(map[string][]domain.TicketHistory, len(s.history)),
	}
	for id, u := range s.users {
		out.users[id] = u
	}
	for id, rec := range s.tickets {
		out.tickets[id] = ticketRecord{ticket: rec.ticket, replies: append([]domain.Reply(nil), rec.replies...)}
	}
	for id, entries := range s.history {
		out.history[id] = append([]domain.TicketHistory(nil), entries...)
	}
	return out
}

// Store keeps all records in maps guarded by a mutex. Transactions are serialized and
// work on a private copy that replaces the shared data only on commit, so readers never
// observe uncommitted writes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: state{
		users:   map[string]domain.User{},
		tickets: map[string]ticketRecord{},
		history: map[string][]domain.TicketHistory{},
	}}
}

func (s *Store) Users() repository.UserRepository     { return userRepository{s} }
func (s *Store) Tickets() repository.TicketRepository { return ticketRepository{s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WithinTx runs fn against a copy of the store and publishes the copy when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := &Store{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(ctx, work); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = work.data
	s.mu.Unlock()
	return nil
}

// lockWrite waits for any running transaction so a direct write is not lost when the
// transaction commits its copy.
func (s *Store) lockWrite() func() {
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	defer r.s.lockWrite()()
	if _, exists := r.s.data.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, existing := range r.s.data.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
		if user.PlayerNumber != nil && existing.PlayerNumber != nil && *existing.PlayerNumber == *user.PlayerNumber {
			return repository.ErrDuplicate
		}
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.data.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r userRepository) ExistsByPlayerNumber(_ context.Context, playerNumber string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.data.users {
		if user.PlayerNumber != nil && *user.PlayerNumber == playerNumber {
			return true, nil
		}
	}
	return false, nil
}

type ticketRepository struct{ s *Store }

func (r ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lockWrite()()
	if _, exists := r.s.data.tickets[ticket.ID]; exists {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.data.users[ticket.Creator.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.data.tickets[ticket.ID] = ticketRecord{ticket: header(ticket)}
	return nil
}

func (r ticketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lockWrite()()
	rec, ok := r.s.data.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.ticket.Status = ticket.Status
	rec.ticket.LastUpdateAt = ticket.LastUpdateAt
	rec.ticket.ResolvedAt = ticket.ResolvedAt
	r.s.data.tickets[ticket.ID] = rec
	return nil
}

func (r ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.data.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec.restore(), nil
}

func (r ticketRepository) ListByCreator(_ context.Context, creatorID string) ([]*domain.Ticket, error) {
	tickets := r.filter(func(t domain.Ticket) bool { return t.Creator.ID == creatorID })
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].LastUpdateAt.After(tickets[j].LastUpdateAt)
	})
	return tickets, nil
}

func (r ticketRepository) ListUnresolved(_ context.Context) ([]*domain.Ticket, error) {
	tickets := r.filter(func(t domain.Ticket) bool { return t.Status != domain.TicketStatusResolved })
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (r ticketRepository) AddReply(_ context.Context, reply *domain.Reply) error {
	defer r.s.lockWrite()()
	rec, ok := r.s.data.tickets[reply.TicketID]
	if !ok {
		return repository.ErrNotFound
	}
	author, ok := r.s.data.users[reply.Author.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *reply
	stored.Author = author
	rec.replies = append(rec.replies, stored)
	r.s.data.tickets[reply.TicketID] = rec
	return nil
}

func (r ticketRepository) AddHistory(_ context.Context, entry *domain.TicketHistory) error {
	defer r.s.lockWrite()()
	if _, ok := r.s.data.tickets[entry.TicketID]; !ok {
		return repository.ErrNotFound
	}
	r.s.data.history[entry.TicketID] = append(r.s.data.history[entry.TicketID], *entry)
	return nil
}

func (r ticketRepository) ListHistory(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.TicketHistory{}, r.s.data.history[ticketID]...), nil
}

func (r ticketRepository) filter(keep func(domain.Ticket) bool) []*domain.Ticket {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Ticket
	for _, rec := range r.s.data.tickets {
		if keep(rec.ticket) {
			out = append(out, rec.restore())
		}
	}
	return out
}

func (rec ticketRecord) restore() *domain.Ticket {
	return domain.RestoreTicket(rec.ticket, rec.replies)
}

// header copies the persisted columns of a ticket, dropping its in-memory replies.
func header(t *domain.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Creator:      t.Creator,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		LastUpdateAt: t.LastUpdateAt,
		ResolvedAt:   t.ResolvedAt,
	}
}
