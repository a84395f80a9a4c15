package attempts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL attempt repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Record appends a login attempt
func (r *PostgresRepository) Record(ctx context.Context, attempt LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (matricula, ip_address, user_agent, success, reason)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		attempt.Matricula,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.Success,
		attempt.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// CountFailedSince counts failed attempts for a matricula newer than since
func (r *PostgresRepository) CountFailedSince(ctx context.Context, matricula string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE matricula = $1
		  AND success = FALSE
		  AND created_at > $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, matricula, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed attempts: %w", err)
	}
	return count, nil
}

// LastFailedSince returns the most recent failed attempt time within the window
func (r *PostgresRepository) LastFailedSince(ctx context.Context, matricula string, since time.Time) (*time.Time, error) {
	query := `
		SELECT MAX(created_at)
		FROM login_attempts
		WHERE matricula = $1
		  AND success = FALSE
		  AND created_at > $2
	`

	var last sql.NullTime
	err := r.pool.QueryRow(ctx, query, matricula, since).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to find last failed attempt: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// DeleteFailed removes all failed attempts for a matricula
func (r *PostgresRepository) DeleteFailed(ctx context.Context, matricula string) error {
	query := `DELETE FROM login_attempts WHERE matricula = $1 AND success = FALSE`

	_, err := r.pool.Exec(ctx, query, matricula)
	if err != nil {
		return fmt.Errorf("failed to clear failed attempts: %w", err)
	}
	return nil
}

// DeleteOlderThan removes attempts recorded before the cutoff
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	query := `DELETE FROM login_attempts WHERE created_at < $1`

	_, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old attempts: %w", err)
	}
	return nil
}

// CountSince counts attempts with the given outcome newer than since
func (r *PostgresRepository) CountSince(ctx context.Context, since time.Time, success bool) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE success = $1
		  AND created_at > $2
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, success, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}
