package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/edusys/portal-auth/pkg/attempts"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/remember"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/users"
)

// Retention cutoffs for the periodic sweep. Expired remember tokens keep
// a one-day grace period so a client racing the sweep still gets a clean
// "expired" answer instead of "not found".
const (
	AttemptRetention   = 7 * 24 * time.Hour
	SessionRetention   = 30 * 24 * time.Hour
	RememberTokenGrace = 24 * time.Hour
)

// Sweeper removes stale rows from the attempt, session, and remember
// token stores. Sweeps are idempotent; running twice is harmless.
type Sweeper struct {
	attempts attempts.Repository
	sessions sessions.Repository
	remember remember.Repository
	now      func() time.Time
}

// NewSweeper creates a new maintenance sweeper
func NewSweeper(attemptRepo attempts.Repository, sessionRepo sessions.Repository, rememberRepo remember.Repository) *Sweeper {
	return &Sweeper{
		attempts: attemptRepo,
		sessions: sessionRepo,
		remember: rememberRepo,
		now:      time.Now,
	}
}

// Sweep runs one maintenance pass: expired sessions are closed, then old
// attempts, long-inactive sessions, and stale remember tokens are deleted.
// The first failure aborts the pass; the next run picks up the remainder.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now()

	if err := s.sessions.DeactivateExpired(ctx); err != nil {
		return errors.InternalWrap(err, "failed to close expired sessions")
	}
	if err := s.attempts.DeleteOlderThan(ctx, now.Add(-AttemptRetention)); err != nil {
		return errors.InternalWrap(err, "failed to prune login attempts")
	}
	if err := s.sessions.DeleteInactiveBefore(ctx, now.Add(-SessionRetention)); err != nil {
		return errors.InternalWrap(err, "failed to prune inactive sessions")
	}
	if err := s.remember.DeleteExpiredBefore(ctx, now.Add(-RememberTokenGrace)); err != nil {
		return errors.InternalWrap(err, "failed to prune remember tokens")
	}

	slog.Info("Maintenance sweep completed")
	return nil
}

// Run sweeps once immediately and then on every tick of interval until
// the context is cancelled. Sweep errors are logged, never fatal.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if err := s.Sweep(ctx); err != nil {
		slog.Error("Maintenance sweep failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("Maintenance sweep failed", "err", err)
			}
		}
	}
}

// SystemStats is the snapshot returned to administrators
type SystemStats struct {
	ActiveUsers     int64     `json:"active_users"`
	ActiveSessions  int64     `json:"active_sessions"`
	FailedToday     int64     `json:"failed_logins_today"`
	SuccessfulToday int64     `json:"successful_logins_today"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// StatsService assembles the admin statistics snapshot
type StatsService struct {
	users    users.Repository
	sessions sessions.Repository
	attempts attempts.Repository
	now      func() time.Time
}

// NewStatsService creates a new statistics service
func NewStatsService(userRepo users.Repository, sessionRepo sessions.Repository, attemptRepo attempts.Repository) *StatsService {
	return &StatsService{
		users:    userRepo,
		sessions: sessionRepo,
		attempts: attemptRepo,
		now:      time.Now,
	}
}

// Stats counts active users and sessions and today's login outcomes.
// "Today" starts at local midnight.
func (s *StatsService) Stats(ctx context.Context) (*SystemStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	activeUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to count users")
	}
	activeSessions, err := s.sessions.CountActive(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to count sessions")
	}
	failed, err := s.attempts.CountSince(ctx, midnight, false)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to count failed logins")
	}
	successful, err := s.attempts.CountSince(ctx, midnight, true)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to count successful logins")
	}

	return &SystemStats{
		ActiveUsers:     activeUsers,
		ActiveSessions:  activeSessions,
		FailedToday:     failed,
		SuccessfulToday: successful,
		GeneratedAt:     now,
	}, nil
}
