package sessions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/tokengen"
	"github.com/edusys/portal-auth/pkg/users"
)

// RememberRevoker is the slice of the remember-token store the registry
// needs: the logout cascade and the opportunistic expiry cleanup
type RememberRevoker interface {
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error
}

// Registry issues, validates, and retires session tokens
type Registry struct {
	repo     Repository
	users    users.Repository
	remember RememberRevoker
	tokens   *tokengen.Generator
	timeout  time.Duration
	now      func() time.Time
}

// NewRegistry creates a new session registry
func NewRegistry(repo Repository, userRepo users.Repository, remember RememberRevoker, cfg config.SecurityConfig) *Registry {
	return &Registry{
		repo:     repo,
		users:    userRepo,
		remember: remember,
		tokens:   tokengen.NewGenerator(cfg.SessionTokenBytes),
		timeout:  cfg.SessionTimeout,
		now:      time.Now,
	}
}

// Create issues a fresh session for the user and returns it together with
// the request principal. Expired sessions are opportunistically deactivated
// first; failures there never block the login.
func (s *Registry) Create(ctx context.Context, user *users.User, meta ClientMeta) (*Session, *Principal, error) {
	if err := s.repo.DeactivateExpired(ctx); err != nil {
		slog.Warn("Opportunistic expired-session cleanup failed", "err", err)
	}
	if s.remember != nil {
		// Same one-day grace the maintenance sweep uses
		if err := s.remember.DeleteExpiredBefore(ctx, s.now().Add(-24*time.Hour)); err != nil {
			slog.Warn("Opportunistic remember-token cleanup failed", "err", err)
		}
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, nil, errors.InternalWrap(err, "failed to generate session token")
	}

	now := s.now()
	session := Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(s.timeout),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	stored, err := s.repo.Create(ctx, session)
	if err != nil {
		// Token collisions hit the unique index here; entropy makes that
		// negligible and it is not retried.
		return nil, nil, errors.InternalWrap(err, "failed to create session")
	}

	principal := &Principal{
		UserID:    user.ID,
		Matricula: user.Matricula,
		Role:      user.Role,
		Token:     token,
		LoginTime: now,
	}

	return stored, principal, nil
}

// Validate checks a session token and returns the session with its owning
// user. It fails with an auth error when the token is empty, unknown,
// inactive, expired, or the owner is deactivated. On success the session's
// last activity is stamped.
func (s *Registry) Validate(ctx context.Context, token string) (*Session, *users.User, error) {
	if token == "" {
		return nil, nil, errors.New(errors.ErrCodeSessionInvalid, "session token required")
	}

	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil, errors.New(errors.ErrCodeSessionInvalid, "invalid or expired session")
		}
		return nil, nil, errors.InternalWrap(err, "failed to look up session")
	}

	if !session.Active || session.ExpiresAt.Before(s.now()) {
		return nil, nil, errors.New(errors.ErrCodeSessionInvalid, "invalid or expired session")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if err == users.ErrNotFound {
			return nil, nil, errors.New(errors.ErrCodeSessionInvalid, "invalid or expired session")
		}
		return nil, nil, errors.InternalWrap(err, "failed to look up session owner")
	}
	if !user.Active {
		return nil, nil, errors.New(errors.ErrCodeSessionInvalid, "invalid or expired session")
	}

	if err := s.repo.UpdateActivity(ctx, session.ID); err != nil {
		return nil, nil, errors.InternalWrap(err, "failed to update session activity")
	}

	return session, user, nil
}

// Invalidate closes a session and cascades a delete of the remember tokens
// belonging to the session's owning user. Unknown tokens are a no-op so
// logout stays idempotent.
func (s *Registry) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return errors.InternalWrap(err, "failed to look up session")
	}

	if err := s.repo.Deactivate(ctx, token); err != nil {
		return errors.InternalWrap(err, "failed to close session")
	}

	// Logout means "log out everywhere" for remember-me: every remember
	// token of the owning user goes, not just one tied to this session.
	if s.remember != nil {
		if err := s.remember.DeleteByUser(ctx, session.UserID); err != nil {
			return errors.InternalWrap(err, "failed to delete remember tokens")
		}
	}

	return nil
}

// InvalidateAllForUserExcept closes every other active session of the user,
// keeping the one holding keepToken alive
func (s *Registry) InvalidateAllForUserExcept(ctx context.Context, userID uuid.UUID, keepToken string) error {
	if err := s.repo.DeactivateAllForUserExcept(ctx, userID, keepToken); err != nil {
		return errors.InternalWrap(err, "failed to close other sessions")
	}
	return nil
}

// Touch stamps the session's last activity without changing its expiry
func (s *Registry) Touch(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.UpdateActivity(ctx, id); err != nil {
		return errors.InternalWrap(err, "failed to update session activity")
	}
	return nil
}

// TokenLength returns the length of issued session token strings
func (s *Registry) TokenLength() int {
	return s.tokens.Length()
}
