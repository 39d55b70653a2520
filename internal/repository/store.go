package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres-backed UnitOfWork.
type Store struct {
	pool    *pgxpool.Pool
	users   UserRepository
	tickets TicketRepository
}

// NewStore builds a store over the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		users:   NewUserRepository(pool),
		tickets: NewTicketRepository(pool, false),
	}
}

func (s *Store) Users() UserRepository     { return s.users }
func (s *Store) Tickets() TicketRepository { return s.tickets }

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithinTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, txRepositories{
			users:   NewUserRepository(tx),
			tickets: NewTicketRepository(tx, true),
		})
	})
}

type txRepositories struct {
	users   UserRepository
	tickets TicketRepository
}

func (r txRepositories) Users() UserRepository     { return r.users }
func (r txRepositories) Tickets() TicketRepository { return r.tickets }

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case invalidTextRepresentation:
			// A key that is not a valid UUID cannot match any row.
			return errors.Join(ErrNotFound, err)
		}
	}
	return err
}
