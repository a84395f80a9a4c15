package remember

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/users"
)

func setupService(t *testing.T) (*Service, *users.InMemRepository, *users.User) {
	ctx := context.Background()
	userRepo := users.NewInMemRepository()
	user, err := userRepo.Create(ctx, users.CreateUserParams{
		Matricula:    "ABC123",
		Name:         "Ana Torres",
		Email:        "ana@example.edu",
		PasswordHash: "x",
		Role:         users.RoleStudent,
	})
	require.NoError(t, err)

	cfg := config.DefaultSecurityConfig()
	repo := NewInMemRepository()
	registry := sessions.NewRegistry(sessions.NewInMemRepository(), userRepo, repo, cfg)
	service := NewService(repo, userRepo, registry, cfg)
	return service, userRepo, user
}

func TestService_CreateIssuesLongerToken(t *testing.T) {
	service, _, user := setupService(t)
	ctx := context.Background()

	token, err := service.Create(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, token.Token, 128)
	assert.Equal(t, user.ID, token.UserID)
	assert.True(t, token.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))
}

func TestService_VerifyMintsFreshSessionWithoutRotation(t *testing.T) {
	service, _, user := setupService(t)
	ctx := context.Background()

	token, err := service.Create(ctx, user.ID)
	require.NoError(t, err)

	owner, session, principal, err := service.Verify(ctx, token.Token, sessions.ClientMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner.ID)
	assert.Len(t, session.Token, 64)
	assert.NotEqual(t, token.Token, session.Token)
	assert.Equal(t, user.ID, principal.UserID)

	// The token is reusable: a second verification mints another session
	_, second, _, err := service.Verify(ctx, token.Token, sessions.ClientMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, second.Token)
}

func TestService_VerifyFailures(t *testing.T) {
	service, userRepo, user := setupService(t)
	ctx := context.Background()

	// Empty and unknown tokens
	_, _, _, err := service.Verify(ctx, "", sessions.ClientMeta{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))
	_, _, _, err = service.Verify(ctx, "deadbeef", sessions.ClientMeta{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))

	// Expired token
	token, err := service.Create(ctx, user.ID)
	require.NoError(t, err)
	service.now = func() time.Time { return time.Now().Add(721 * time.Hour) }
	_, _, _, err = service.Verify(ctx, token.Token, sessions.ClientMeta{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))
	service.now = time.Now

	// Deactivated owner
	require.NoError(t, userRepo.SetActive(ctx, user.ID, false))
	_, _, _, err = service.Verify(ctx, token.Token, sessions.ClientMeta{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))
}

func TestService_DeleteByUser(t *testing.T) {
	service, _, user := setupService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, user.ID)
	require.NoError(t, err)
	_, err = service.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteByUser(ctx, user.ID))

	repo := service.repo.(*InMemRepository)
	assert.Equal(t, 0, repo.Len())
}
