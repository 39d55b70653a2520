package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/playdesk/support-desk/internal/domain"
)

const (
	ticketColumns = `t.id, t.title, t.description, t.status, t.created_at, t.last_update_at, t.resolved_at,
               c.id, c.role, c.email, c.name, c.avatar, c.player_number, c.created_at`
	replyColumns = `r.id, r.ticket_id, r.content, r.created_at,
               a.id, a.role, a.email, a.name, a.avatar, a.player_number, a.created_at`
)

type ticketRepository struct {
	db   DBTX
	lock bool
}

// NewTicketRepository instantiates repository. With lock set, GetByID takes a row lock
// and must run inside a transaction.
func NewTicketRepository(db DBTX, lock bool) TicketRepository {
	return &ticketRepository{db: db, lock: lock}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, creator_id, status, created_at, last_update_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Creator.ID,
		ticket.Status,
		ticket.CreatedAt,
		ticket.LastUpdateAt,
		ticket.ResolvedAt,
	)
	return mapError(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, last_update_at=$2, resolved_at=$3
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Status,
		ticket.LastUpdateAt,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets t JOIN users c ON c.id = t.creator_id
        WHERE t.id=$1`
	if r.lock {
		query += ` FOR UPDATE OF t`
	}

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	replies, err := r.listReplies(ctx, []string{ticket.ID})
	if err != nil {
		return nil, err
	}
	return domain.RestoreTicket(*ticket, replies[ticket.ID]), nil
}

func (r *ticketRepository) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets t JOIN users c ON c.id = t.creator_id
        WHERE t.creator_id=$1
        ORDER BY t.last_update_at DESC`
	return r.list(ctx, query, creatorID)
}

func (r *ticketRepository) ListUnresolved(ctx context.Context) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets t JOIN users c ON c.id = t.creator_id
        WHERE t.status <> $1
        ORDER BY t.created_at ASC`
	return r.list(ctx, query, domain.TicketStatusResolved)
}

func (r *ticketRepository) AddReply(ctx context.Context, reply *domain.Reply) error {
	const query = `
        INSERT INTO replies (id, ticket_id, author_id, content, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.db.Exec(ctx, query,
		reply.ID,
		reply.TicketID,
		reply.Author.ID,
		reply.Content,
		reply.CreatedAt,
	)
	return mapError(err)
}

func (r *ticketRepository) AddHistory(ctx context.Context, entry *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, old_status, new_status, changed_by_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.TicketID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedByID,
		entry.CreatedAt,
	)
	return mapError(err)
}

func (r *ticketRepository) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, old_status, new_status, changed_by_id, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var entry domain.TicketHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedByID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.ID)
	}
	replies, err := r.listReplies(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		result = append(result, domain.RestoreTicket(*ticket, replies[ticket.ID]))
	}
	return result, nil
}

func (r *ticketRepository) listReplies(ctx context.Context, ticketIDs []string) (map[string][]domain.Reply, error) {
	result := make(map[string][]domain.Reply, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + replyColumns + `
        FROM replies r JOIN users a ON a.id = r.author_id
        WHERE r.ticket_id = ANY($1::uuid[])
        ORDER BY r.created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var reply domain.Reply
		if err := rows.Scan(
			&reply.ID,
			&reply.TicketID,
			&reply.Content,
			&reply.CreatedAt,
			&reply.Author.ID,
			&reply.Author.Role,
			&reply.Author.Email,
			&reply.Author.Name,
			&reply.Author.Avatar,
			&reply.Author.PlayerNumber,
			&reply.Author.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[reply.TicketID] = append(result[reply.TicketID], reply)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.LastUpdateAt,
		&ticket.ResolvedAt,
		&ticket.Creator.ID,
		&ticket.Creator.Role,
		&ticket.Creator.Email,
		&ticket.Creator.Name,
		&ticket.Creator.Avatar,
		&ticket.Creator.PlayerNumber,
		&ticket.Creator.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &ticket, nil
}
