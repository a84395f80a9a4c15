package remember

import (
	"time"

	"github.com/google/uuid"
)

// RememberToken is a long-lived bearer secret permitting silent
// re-authentication. Many may coexist per user. Tokens are static: they are
// not rotated on use and stay valid until their own expiry.
type RememberToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
