package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/portal-auth/pkg/attempts"
	"github.com/edusys/portal-auth/pkg/remember"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/users"
	"github.com/google/uuid"
)

func TestSweeper_PrunesOldAttempts(t *testing.T) {
	attemptRepo := attempts.NewInMemRepository()
	sweeper := NewSweeper(attemptRepo, sessions.NewInMemRepository(), remember.NewInMemRepository())
	ctx := context.Background()

	old := attempts.LoginAttempt{Matricula: "ABC123", CreatedAt: time.Now().Add(-8 * 24 * time.Hour)}
	recent := attempts.LoginAttempt{Matricula: "ABC123", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, attemptRepo.Record(ctx, old))
	require.NoError(t, attemptRepo.Record(ctx, recent))

	require.NoError(t, sweeper.Sweep(ctx))
	assert.Equal(t, 1, attemptRepo.Len())

	// Idempotent: a second pass changes nothing
	require.NoError(t, sweeper.Sweep(ctx))
	assert.Equal(t, 1, attemptRepo.Len())
}

func TestSweeper_ClosesExpiredAndPrunesInactiveSessions(t *testing.T) {
	sessionRepo := sessions.NewInMemRepository()
	sweeper := NewSweeper(attempts.NewInMemRepository(), sessionRepo, remember.NewInMemRepository())
	ctx := context.Background()

	userID := uuid.New()
	expired, err := sessionRepo.Create(ctx, sessions.Session{
		UserID:    userID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
	closed, err := sessionRepo.Create(ctx, sessions.Session{
		UserID:    userID,
		Token:     "closed-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, sessionRepo.Deactivate(ctx, closed.Token))

	require.NoError(t, sweeper.Sweep(ctx))

	// The expired session is closed but too young to delete
	got, err := sessionRepo.GetByToken(ctx, expired.Token)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, 2, sessionRepo.Len())

	// Sweeping 31 days later removes both inactive sessions
	sweeper.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	require.NoError(t, sweeper.Sweep(ctx))
	assert.Equal(t, 0, sessionRepo.Len())
}

func TestSweeper_RememberTokenGracePeriod(t *testing.T) {
	rememberRepo := remember.NewInMemRepository()
	sweeper := NewSweeper(attempts.NewInMemRepository(), sessions.NewInMemRepository(), rememberRepo)
	ctx := context.Background()

	userID := uuid.New()
	_, err := rememberRepo.Create(ctx, remember.RememberToken{
		UserID:    userID,
		Token:     "long-expired",
		ExpiresAt: time.Now().Add(-2 * 24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = rememberRepo.Create(ctx, remember.RememberToken{
		UserID:    userID,
		Token:     "just-expired",
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, sweeper.Sweep(ctx))

	// The token expired an hour ago is still within the one-day grace
	assert.Equal(t, 1, rememberRepo.Len())
	_, err = rememberRepo.GetByToken(ctx, "just-expired")
	assert.NoError(t, err)
}

func TestStatsService_Snapshot(t *testing.T) {
	userRepo := users.NewInMemRepository()
	sessionRepo := sessions.NewInMemRepository()
	attemptRepo := attempts.NewInMemRepository()
	service := NewStatsService(userRepo, sessionRepo, attemptRepo)
	ctx := context.Background()

	active, err := userRepo.Create(ctx, users.CreateUserParams{
		Matricula: "ABC123", Name: "Ana", Email: "ana@example.edu", PasswordHash: "x", Role: users.RoleStudent,
	})
	require.NoError(t, err)
	disabled, err := userRepo.Create(ctx, users.CreateUserParams{
		Matricula: "XYZ789", Name: "Luis", Email: "luis@example.edu", PasswordHash: "x", Role: users.RoleStudent,
	})
	require.NoError(t, err)
	require.NoError(t, userRepo.SetActive(ctx, disabled.ID, false))

	_, err = sessionRepo.Create(ctx, sessions.Session{
		UserID: active.ID, Token: "t1", ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, attemptRepo.Record(ctx, attempts.LoginAttempt{Matricula: "ABC123", Success: true}))
	require.NoError(t, attemptRepo.Record(ctx, attempts.LoginAttempt{Matricula: "ABC123", Success: false}))
	require.NoError(t, attemptRepo.Record(ctx, attempts.LoginAttempt{Matricula: "XYZ789", Success: false}))

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.ActiveSessions)
	assert.Equal(t, int64(2), stats.FailedToday)
	assert.Equal(t, int64(1), stats.SuccessfulToday)
	assert.False(t, stats.GeneratedAt.IsZero())
}
