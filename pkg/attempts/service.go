package attempts

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/users"
)

// Tracker records login attempts and computes lockout state from the
// trailing window of failed attempts. The lockout threshold tolerates a
// ±1 miscount between racing logins; no application-level locking is held.
type Tracker struct {
	repo            Repository
	maxAttempts     int
	lockoutDuration time.Duration
	now             func() time.Time
}

// NewTracker creates a new attempt tracker
func NewTracker(repo Repository, cfg config.SecurityConfig) *Tracker {
	return &Tracker{
		repo:            repo,
		maxAttempts:     cfg.MaxAttempts,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}

// MaxAttempts returns the configured lockout threshold
func (t *Tracker) MaxAttempts() int {
	return t.maxAttempts
}

// RecordAttempt appends an attempt record. It is a side effect only and
// never fails the caller; store errors are logged and swallowed.
func (t *Tracker) RecordAttempt(ctx context.Context, matricula string, success bool, ipAddress, userAgent, reason string) {
	attempt := LoginAttempt{
		Matricula: users.NormalizeMatricula(matricula),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Success:   success,
		Reason:    reason,
		CreatedAt: t.now(),
	}

	if err := t.repo.Record(ctx, attempt); err != nil {
		slog.Error("Failed to record login attempt", "matricula", attempt.Matricula, "err", err)
	}
}

// IsLocked reports whether the matricula has reached the failed-attempt
// threshold within the trailing lockout window
func (t *Tracker) IsLocked(ctx context.Context, matricula string) (bool, error) {
	count, err := t.failedCountInWindow(ctx, matricula)
	if err != nil {
		return false, err
	}
	return count >= t.maxAttempts, nil
}

// RemainingAttempts returns how many failures are left before lockout
func (t *Tracker) RemainingAttempts(ctx context.Context, matricula string) (int, error) {
	count, err := t.failedCountInWindow(ctx, matricula)
	if err != nil {
		return 0, err
	}
	remaining := t.maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// LockoutRemainingMinutes returns the minutes until the lockout window
// elapses, ceiled to whole minutes and floored at 0
func (t *Tracker) LockoutRemainingMinutes(ctx context.Context, matricula string) (int, error) {
	matricula = users.NormalizeMatricula(matricula)
	since := t.now().Add(-t.lockoutDuration)

	last, err := t.repo.LastFailedSince(ctx, matricula, since)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to compute lockout time")
	}
	if last == nil {
		return 0, nil
	}

	lockedUntil := last.Add(t.lockoutDuration)
	remaining := lockedUntil.Sub(t.now())
	if remaining <= 0 {
		return 0, nil
	}
	return int(math.Ceil(remaining.Minutes())), nil
}

// ClearOnSuccess deletes every failed attempt for the matricula. A
// successful login resets the window entirely rather than decrementing it.
func (t *Tracker) ClearOnSuccess(ctx context.Context, matricula string) error {
	matricula = users.NormalizeMatricula(matricula)
	if err := t.repo.DeleteFailed(ctx, matricula); err != nil {
		return errors.InternalWrap(err, "failed to clear failed attempts")
	}
	return nil
}

func (t *Tracker) failedCountInWindow(ctx context.Context, matricula string) (int, error) {
	matricula = users.NormalizeMatricula(matricula)
	since := t.now().Add(-t.lockoutDuration)

	count, err := t.repo.CountFailedSince(ctx, matricula, since)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to count failed attempts")
	}
	return count, nil
}
