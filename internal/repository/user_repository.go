package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/playdesk/support-desk/internal/domain"
)

const userColumns = `id, role, email, name, avatar, password_hash, player_number, created_at`

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, role, email, name, avatar, password_hash, player_number, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Role,
		user.Email,
		user.Name,
		user.Avatar,
		user.PasswordHash,
		user.PlayerNumber,
		user.CreatedAt,
	)
	return mapError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)).Scan(&exists)
	return exists, mapError(err)
}

func (r *userRepository) ExistsByPlayerNumber(ctx context.Context, playerNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE player_number=$1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, playerNumber).Scan(&exists)
	return exists, mapError(err)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Email,
		&user.Name,
		&user.Avatar,
		&user.PasswordHash,
		&user.PlayerNumber,
		&user.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}
