package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

const userColumns = `
	id, matricula, name, email, password_hash, role, active, last_access, created_at
`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var lastAccess sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Matricula,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&lastAccess,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if lastAccess.Valid {
		user.LastAccess = &lastAccess.Time
	}

	return user, nil
}

// Create inserts a new user
func (r *PostgresRepository) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	query := `
		INSERT INTO users (matricula, name, email, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING` + userColumns

	row := r.pool.QueryRow(ctx, query,
		params.Matricula,
		params.Name,
		params.Email,
		params.PasswordHash,
		params.Role,
	)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by id
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByMatricula retrieves a user by matricula
func (r *PostgresRepository) GetByMatricula(ctx context.Context, matricula string) (*User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE matricula = $1`
	return scanUser(r.pool.QueryRow(ctx, query, matricula))
}

// GetByEmail retrieves a user by email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// UpdatePassword replaces the stored password hash
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastAccess stamps the last access time with now
func (r *PostgresRepository) UpdateLastAccess(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_access = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update last access: %w", err)
	}
	return nil
}

// SetActive toggles the active flag
func (r *PostgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE users SET active = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActive counts active users
func (r *PostgresRepository) CountActive(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE active = TRUE`

	var count int64
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}
