package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no session matches the lookup
var ErrNotFound = errors.New("session not found")

// Repository defines persistence operations for sessions
type Repository interface {
	// Create inserts a new session. The token column carries a store-level
	// uniqueness constraint; a collision surfaces as an insert error.
	Create(ctx context.Context, session Session) (*Session, error)

	// GetByToken retrieves a session by its token
	GetByToken(ctx context.Context, token string) (*Session, error)

	// Deactivate marks a session inactive and records the close time
	Deactivate(ctx context.Context, token string) error

	// DeactivateAllForUserExcept deactivates every active session of the
	// user except the one holding keepToken
	DeactivateAllForUserExcept(ctx context.Context, userID uuid.UUID, keepToken string) error

	// UpdateActivity stamps last activity with now; expiry is untouched
	UpdateActivity(ctx context.Context, id uuid.UUID) error

	// DeactivateExpired flips still-active but expired sessions to inactive
	DeactivateExpired(ctx context.Context) error

	// DeleteInactiveBefore removes inactive sessions created before cutoff
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) error

	// CountActive counts active, unexpired sessions
	CountActive(ctx context.Context) (int64, error)
}
