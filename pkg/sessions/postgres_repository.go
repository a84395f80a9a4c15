package sessions

import (
	"context"
	"database/sql"
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

// NewPostgresRepository creates a new PostgreSQL session repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

const sessionColumns = `
	id, user_id, token, expires_at, active, created_at, last_activity, closed_at, ip_address, user_agent
`

func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	var closedAt sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ExpiresAt,
		&session.Active,
		&session.CreatedAt,
		&session.LastActivity,
		&closedAt,
		&session.IPAddress,
		&session.UserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if closedAt.Valid {
		session.ClosedAt = &closedAt.Time
	}

	return session, nil
}

// Create inserts a new session
func (r *PostgresRepository) Create(ctx context.Context, session Session) (*Session, error) {
	query := `
		INSERT INTO sessions (user_id, token, expires_at, active, ip_address, user_agent)
		VALUES ($1, $2, $3, TRUE, $4, $5)
		RETURNING` + sessionColumns

	row := r.pool.QueryRow(ctx, query,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.IPAddress,
		session.UserAgent,
	)

	stored, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return stored, nil
}

// GetByToken retrieves a session by its token
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	query := `SELECT` + sessionColumns + `FROM sessions WHERE token = $1`
	return scanSession(r.pool.QueryRow(ctx, query, token))
}

// Deactivate marks a session inactive and records the close time
func (r *PostgresRepository) Deactivate(ctx context.Context, token string) error {
	query := `
		UPDATE sessions
		SET active = FALSE,
		    closed_at = NOW()
		WHERE token = $1
		  AND active = TRUE
	`

	_, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}

// DeactivateAllForUserExcept deactivates every active session of the user
// except the one holding keepToken
func (r *PostgresRepository) DeactivateAllForUserExcept(ctx context.Context, userID uuid.UUID, keepToken string) error {
	query := `
		UPDATE sessions
		SET active = FALSE,
		    closed_at = NOW()
		WHERE user_id = $1
		  AND token != $2
		  AND active = TRUE
	`

	_, err := r.pool.Exec(ctx, query, userID, keepToken)
	if err != nil {
		return fmt.Errorf("failed to deactivate other sessions: %w", err)
	}
	return nil
}

// UpdateActivity stamps last activity with now
func (r *PostgresRepository) UpdateActivity(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET last_activity = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

// DeactivateExpired flips still-active but expired sessions to inactive
func (r *PostgresRepository) DeactivateExpired(ctx context.Context) error {
	query := `
		UPDATE sessions
		SET active = FALSE,
		    closed_at = NOW()
		WHERE expires_at < NOW()
		  AND active = TRUE
	`

	_, err := r.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to deactivate expired sessions: %w", err)
	}
	return nil
}

// DeleteInactiveBefore removes inactive sessions created before cutoff
func (r *PostgresRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) error {
	query := `
		DELETE FROM sessions
		WHERE active = FALSE
		  AND created_at < $1
	`

	_, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old sessions: %w", err)
	}
	return nil
}

// CountActive counts active, unexpired sessions
func (r *PostgresRepository) CountActive(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE active = TRUE
		  AND expires_at > NOW()
	`

	var count int64
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}
