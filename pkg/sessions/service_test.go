package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/users"
)

type fakeRevoker struct {
	deleted []uuid.UUID
	pruned  int
}

func (f *fakeRevoker) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeRevoker) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	f.pruned++
	return nil
}

func setupRegistry(t *testing.T) (*Registry, *users.InMemRepository, *fakeRevoker, *users.User) {
	userRepo := users.NewInMemRepository()
	user, err := userRepo.Create(context.Background(), users.CreateUserParams{
		Matricula:    "ABC123",
		Name:         "Ana Torres",
		Email:        "ana@example.edu",
		PasswordHash: "x",
		Role:         users.RoleStudent,
	})
	require.NoError(t, err)

	revoker := &fakeRevoker{}
	registry := NewRegistry(NewInMemRepository(), userRepo, revoker, config.DefaultSecurityConfig())
	return registry, userRepo, revoker, user
}

func TestRegistry_CreateAndValidate(t *testing.T) {
	registry, _, revoker, user := setupRegistry(t)
	ctx := context.Background()

	session, principal, err := registry.Create(ctx, user, ClientMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"})
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)
	assert.True(t, session.Active)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "10.0.0.1", session.IPAddress)

	require.NotNil(t, principal)

	// Creating a session opportunistically pruned expired remember tokens
	assert.Equal(t, 1, revoker.pruned)

	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "ABC123", principal.Matricula)
	assert.Equal(t, users.RoleStudent, principal.Role)
	assert.Equal(t, session.Token, principal.Token)

	validated, owner, err := registry.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)
	assert.Equal(t, user.ID, owner.ID)
}

func TestRegistry_ValidateFailures(t *testing.T) {
	registry, userRepo, _, user := setupRegistry(t)
	ctx := context.Background()

	// Empty token
	_, _, err := registry.Validate(ctx, "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionInvalid))

	// Unknown token
	_, _, err = registry.Validate(ctx, "deadbeef")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionInvalid))

	// Expired token
	session, _, err := registry.Create(ctx, user, ClientMeta{})
	require.NoError(t, err)
	registry.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = registry.Validate(ctx, session.Token)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionInvalid))
	registry.now = time.Now

	// Owner deactivated
	session, _, err = registry.Create(ctx, user, ClientMeta{})
	require.NoError(t, err)
	require.NoError(t, userRepo.SetActive(ctx, user.ID, false))
	_, _, err = registry.Validate(ctx, session.Token)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionInvalid))
}

func TestRegistry_InvalidateClosesSessionAndCascades(t *testing.T) {
	registry, _, revoker, user := setupRegistry(t)
	ctx := context.Background()

	session, _, err := registry.Create(ctx, user, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, registry.Invalidate(ctx, session.Token))

	// Validation must fail from now on
	_, _, err = registry.Validate(ctx, session.Token)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionInvalid))

	// Remember tokens of the owning user were deleted
	require.Len(t, revoker.deleted, 1)
	assert.Equal(t, user.ID, revoker.deleted[0])

	// Unknown token logout is a no-op, not an error
	require.NoError(t, registry.Invalidate(ctx, "unknown-token"))
}

func TestRegistry_InvalidateAllForUserExceptKeepsCaller(t *testing.T) {
	registry, _, _, user := setupRegistry(t)
	ctx := context.Background()

	current, _, err := registry.Create(ctx, user, ClientMeta{})
	require.NoError(t, err)
	other, _, err := registry.Create(ctx, user, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, registry.InvalidateAllForUserExcept(ctx, user.ID, current.Token))

	_, _, err = registry.Validate(ctx, current.Token)
	assert.NoError(t, err)

	_, _, err = registry.Validate(ctx, other.Token)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionInvalid))
}

func TestRegistry_TouchUpdatesActivityOnly(t *testing.T) {
	registry, _, _, user := setupRegistry(t)
	ctx := context.Background()

	session, _, err := registry.Create(ctx, user, ClientMeta{})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, registry.Touch(ctx, session.ID))

	refreshed, _, err := registry.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, refreshed.LastActivity.After(session.LastActivity))
	assert.Equal(t, session.ExpiresAt, refreshed.ExpiresAt)
}
