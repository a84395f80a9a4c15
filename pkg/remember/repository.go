package remember

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no remember token matches the lookup
var ErrNotFound = errors.New("remember token not found")

// Repository defines persistence operations for remember tokens
type Repository interface {
	// Create inserts a new remember token
	Create(ctx context.Context, token RememberToken) (*RememberToken, error)

	// GetByToken retrieves a remember token by its token string
	GetByToken(ctx context.Context, token string) (*RememberToken, error)

	// DeleteByUser removes every remember token belonging to the user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredBefore removes tokens whose expiry is before the cutoff
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error
}
