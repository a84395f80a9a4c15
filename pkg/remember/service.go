package remember

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/tokengen"
	"github.com/edusys/portal-auth/pkg/users"
)

// Service issues and verifies remember-me tokens. Verification mints a
// brand-new session through the session registry; the remember token itself
// is neither extended nor rotated.
type Service struct {
	repo     Repository
	users    users.Repository
	registry *sessions.Registry
	tokens   *tokengen.Generator
	duration time.Duration
	now      func() time.Time
}

// NewService creates a new remember-token service
func NewService(repo Repository, userRepo users.Repository, registry *sessions.Registry, cfg config.SecurityConfig) *Service {
	return &Service{
		repo:     repo,
		users:    userRepo,
		registry: registry,
		tokens:   tokengen.NewGenerator(cfg.RememberTokenBytes),
		duration: cfg.RememberDuration,
		now:      time.Now,
	}
}

// Create issues a remember token for the user. Remember tokens are
// deliberately longer than session tokens.
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (*RememberToken, error) {
	token, err := s.tokens.Generate()
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to generate remember token")
	}

	stored, err := s.repo.Create(ctx, RememberToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(s.duration),
	})
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to store remember token")
	}
	return stored, nil
}

// Verify checks a remember token and, when valid, mints a fresh session for
// its owner. The token stays usable until its own expiry.
func (s *Service) Verify(ctx context.Context, token string, meta sessions.ClientMeta) (*users.User, *sessions.Session, *sessions.Principal, error) {
	if token == "" {
		return nil, nil, nil, errors.New(errors.ErrCodeTokenInvalid, "remember token required")
	}

	stored, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil, nil, errors.New(errors.ErrCodeTokenInvalid, "invalid or expired remember token")
		}
		return nil, nil, nil, errors.InternalWrap(err, "failed to look up remember token")
	}

	if stored.ExpiresAt.Before(s.now()) {
		return nil, nil, nil, errors.New(errors.ErrCodeTokenInvalid, "invalid or expired remember token")
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if err == users.ErrNotFound {
			return nil, nil, nil, errors.New(errors.ErrCodeTokenInvalid, "invalid or expired remember token")
		}
		return nil, nil, nil, errors.InternalWrap(err, "failed to look up token owner")
	}
	if !user.Active {
		return nil, nil, nil, errors.New(errors.ErrCodeTokenInvalid, "invalid or expired remember token")
	}

	session, principal, err := s.registry.Create(ctx, user, meta)
	if err != nil {
		return nil, nil, nil, err
	}

	return user, session, principal, nil
}

// DeleteByUser removes every remember token belonging to the user
func (s *Service) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return errors.InternalWrap(err, "failed to delete remember tokens")
	}
	return nil
}

// TokenLength returns the length of issued remember token strings
func (s *Service) TokenLength() int {
	return s.tokens.Length()
}
