package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user matches the lookup
var ErrNotFound = errors.New("user not found")

// Repository defines persistence operations for users
type Repository interface {
	// Create inserts a new user and returns the stored record
	Create(ctx context.Context, params CreateUserParams) (*User, error)

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByMatricula retrieves a user by normalized matricula
	GetByMatricula(ctx context.Context, matricula string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// UpdateLastAccess stamps the last access time with now
	UpdateLastAccess(ctx context.Context, id uuid.UUID) error

	// SetActive toggles the active flag
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// CountActive counts active users
	CountActive(ctx context.Context) (int64, error)
}
