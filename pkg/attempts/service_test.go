package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/portal-auth/pkg/config"
)

func setupTracker(t *testing.T) (*Tracker, *InMemRepository) {
	repo := NewInMemRepository()
	cfg := config.DefaultSecurityConfig()
	tracker := NewTracker(repo, cfg)
	return tracker, repo
}

func TestTracker_LocksAfterMaxAttempts(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		tracker.RecordAttempt(ctx, "ABC123", false, "10.0.0.1", "test-agent", "wrong password")
	}

	locked, err := tracker.IsLocked(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, locked)

	remaining, err := tracker.RemainingAttempts(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	tracker.RecordAttempt(ctx, "ABC123", false, "10.0.0.1", "test-agent", "wrong password")

	locked, err = tracker.IsLocked(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, locked)

	remaining, err = tracker.RemainingAttempts(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestTracker_NormalizationIdempotence(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	// Case and whitespace variants must all count against the same window
	variants := []string{"abc123", "ABC123", " abc123 ", "\tAbC123\n", "ABC123"}
	for _, v := range variants {
		tracker.RecordAttempt(ctx, v, false, "10.0.0.1", "test-agent", "wrong password")
	}

	for _, v := range variants {
		locked, err := tracker.IsLocked(ctx, v)
		require.NoError(t, err)
		assert.True(t, locked, "variant %q should be locked", v)

		remaining, err := tracker.RemainingAttempts(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining, "variant %q", v)
	}
}

func TestTracker_ClearOnSuccessResetsWindow(t *testing.T) {
	tracker, repo := setupTracker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tracker.RecordAttempt(ctx, "ABC123", false, "10.0.0.1", "test-agent", "wrong password")
	}

	locked, err := tracker.IsLocked(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, tracker.ClearOnSuccess(ctx, " abc123 "))

	locked, err = tracker.IsLocked(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, locked)

	remaining, err := tracker.RemainingAttempts(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	// Successful rows are kept, only failures are cleared
	tracker.RecordAttempt(ctx, "ABC123", true, "10.0.0.1", "test-agent", "login ok")
	require.NoError(t, tracker.ClearOnSuccess(ctx, "ABC123"))
	assert.Equal(t, 1, repo.Len())
}

func TestTracker_AttemptsOutsideWindowDoNotCount(t *testing.T) {
	repo := NewInMemRepository()
	cfg := config.DefaultSecurityConfig()
	tracker := NewTracker(repo, cfg)

	base := time.Now()
	ctx := context.Background()

	// Five failures just outside the window
	tracker.now = func() time.Time { return base.Add(-cfg.LockoutDuration - time.Second) }
	for i := 0; i < 5; i++ {
		tracker.RecordAttempt(ctx, "ABC123", false, "10.0.0.1", "test-agent", "wrong password")
	}

	tracker.now = func() time.Time { return base }
	locked, err := tracker.IsLocked(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, locked)

	remaining, err := tracker.RemainingAttempts(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	mins, err := tracker.LockoutRemainingMinutes(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 0, mins)
}

func TestTracker_LockoutRemainingMinutes(t *testing.T) {
	repo := NewInMemRepository()
	cfg := config.DefaultSecurityConfig() // 5 minute lockout
	tracker := NewTracker(repo, cfg)

	base := time.Now()
	ctx := context.Background()

	tracker.now = func() time.Time { return base }
	for i := 0; i < 5; i++ {
		tracker.RecordAttempt(ctx, "ABC123", false, "10.0.0.1", "test-agent", "wrong password")
	}

	// 90 seconds in: 3m30s remain, ceiled to 4
	tracker.now = func() time.Time { return base.Add(90 * time.Second) }
	mins, err := tracker.LockoutRemainingMinutes(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 4, mins)

	// Past the window: floored at 0
	tracker.now = func() time.Time { return base.Add(cfg.LockoutDuration + time.Second) }
	mins, err = tracker.LockoutRemainingMinutes(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 0, mins)
}
