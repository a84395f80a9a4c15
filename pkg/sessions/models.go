package sessions

import (
	"time"

	"github.com/google/uuid"

	"github.com/edusys/portal-auth/pkg/users"
)

// Session represents one authenticated session. Lifecycle: active, then
// expired (detected lazily on validate or swept by maintenance), then
// closed by explicit logout. Nothing leaves closed.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Token        string     `json:"token"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	IPAddress    string     `json:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
}

// ClientMeta carries per-request client attributes recorded on the session
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// Principal is the explicit per-request session context. It replaces any
// ambient global session state: it is populated once from the resolved
// token and threaded through calls.
type Principal struct {
	UserID    uuid.UUID  `json:"user_id"`
	Matricula string     `json:"matricula"`
	Role      users.Role `json:"role"`
	Token     string     `json:"-"`
	LoginTime time.Time  `json:"login_time"`
}
