package attempts

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt is an append-only record of one login call. Lockout state is
// always computed from recent failed rows, never persisted as a flag.
type LoginAttempt struct {
	ID        uuid.UUID `json:"id"`
	Matricula string    `json:"matricula"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
