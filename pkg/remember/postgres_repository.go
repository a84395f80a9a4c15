package remember

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL remember-token repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Create inserts a new remember token
func (r *PostgresRepository) Create(ctx context.Context, token RememberToken) (*RememberToken, error) {
	query := `
		INSERT INTO remember_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token, expires_at, created_at
	`

	stored := &RememberToken{}
	err := r.pool.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(
		&stored.ID,
		&stored.UserID,
		&stored.Token,
		&stored.ExpiresAt,
		&stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remember token: %w", err)
	}
	return stored, nil
}

// GetByToken retrieves a remember token by its token string
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*RememberToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM remember_tokens
		WHERE token = $1
	`

	stored := &RememberToken{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&stored.ID,
		&stored.UserID,
		&stored.Token,
		&stored.ExpiresAt,
		&stored.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get remember token: %w", err)
	}
	return stored, nil
}

// DeleteByUser removes every remember token belonging to the user
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM remember_tokens WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete remember tokens: %w", err)
	}
	return nil
}

// DeleteExpiredBefore removes tokens whose expiry is before the cutoff
func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	query := `DELETE FROM remember_tokens WHERE expires_at < $1`

	_, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired remember tokens: %w", err)
	}
	return nil
}
