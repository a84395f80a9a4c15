package attempts

import (
	"context"
	"time"
)

// Repository defines persistence operations for login attempts
type Repository interface {
	// Record appends a login attempt
	Record(ctx context.Context, attempt LoginAttempt) error

	// CountFailedSince counts failed attempts for a matricula newer than since
	CountFailedSince(ctx context.Context, matricula string, since time.Time) (int, error)

	// LastFailedSince returns the timestamp of the most recent failed attempt
	// for a matricula newer than since, or nil when there is none
	LastFailedSince(ctx context.Context, matricula string, since time.Time) (*time.Time, error)

	// DeleteFailed removes all failed attempts for a matricula
	DeleteFailed(ctx context.Context, matricula string) error

	// DeleteOlderThan removes attempts recorded before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error

	// CountSince counts attempts with the given outcome newer than since
	CountSince(ctx context.Context, since time.Time, success bool) (int64, error)
}
