package login

import (
	"context"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/edusys/portal-auth/pkg/attempts"
	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/remember"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/users"
)

// LoginService orchestrates credential verification, registration, and
// password changes, consulting the attempt tracker and session registry
type LoginService struct {
	users    users.Repository
	tracker  *attempts.Tracker
	registry *sessions.Registry
	remember *remember.Service
	cfg      config.SecurityConfig
}

// NewLoginService creates a new credential service
func NewLoginService(userRepo users.Repository, tracker *attempts.Tracker, registry *sessions.Registry, rememberService *remember.Service, cfg config.SecurityConfig) *LoginService {
	return &LoginService{
		users:    userRepo,
		tracker:  tracker,
		registry: registry,
		remember: rememberService,
		cfg:      cfg,
	}
}

// LoginParams carries one login call's inputs
type LoginParams struct {
	Matricula string
	Password  string
	Remember  bool
	Meta      sessions.ClientMeta
}

// LoginResult is returned on successful login
type LoginResult struct {
	User          users.Profile          `json:"user"`
	Session       *sessions.Session      `json:"session"`
	Principal     *sessions.Principal    `json:"-"`
	RememberToken *remember.RememberToken `json:"remember_token,omitempty"`
}

// Login verifies credentials and issues a session. The ordering matters:
// the lockout check precedes the user lookup, and every failure path
// records an attempt before returning.
func (s *LoginService) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	if params.Matricula == "" || params.Password == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matricula and password are required")
	}

	matricula := users.NormalizeMatricula(params.Matricula)

	locked, err := s.tracker.IsLocked(ctx, matricula)
	if err != nil {
		return nil, err
	}
	if locked {
		minutes, err := s.tracker.LockoutRemainingMinutes(ctx, matricula)
		if err != nil {
			return nil, err
		}
		return nil, errors.Newf(errors.ErrCodeAccountLocked,
			"account locked, try again in %d minute(s)", minutes).
			WithDetail("remaining_minutes", minutes)
	}

	user, err := s.users.GetByMatricula(ctx, matricula)
	if err != nil {
		if err == users.ErrNotFound {
			// Deliberately the same client message as a wrong password;
			// only the remaining-attempts suffix differs between the two
			// paths. Flagged for security review, preserved as-is.
			s.tracker.RecordAttempt(ctx, matricula, false, params.Meta.IPAddress, params.Meta.UserAgent, "user not found")
			return nil, errors.New(errors.ErrCodeAuthFailed, "incorrect matricula or password")
		}
		return nil, errors.InternalWrap(err, "failed to look up user")
	}

	if !user.Active {
		s.tracker.RecordAttempt(ctx, matricula, false, params.Meta.IPAddress, params.Meta.UserAgent, "user inactive")
		return nil, errors.New(errors.ErrCodeAccountDisabled, "account deactivated, contact an administrator")
	}

	valid, err := CheckPasswordHash(params.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to verify password")
	}
	if !valid {
		s.tracker.RecordAttempt(ctx, matricula, false, params.Meta.IPAddress, params.Meta.UserAgent, "wrong password")

		remaining, err := s.tracker.RemainingAttempts(ctx, matricula)
		if err != nil {
			return nil, err
		}
		if remaining > 0 {
			return nil, errors.Newf(errors.ErrCodeAuthFailed,
				"incorrect matricula or password, %d attempt(s) remaining", remaining).
				WithDetail("remaining_attempts", remaining)
		}
		return nil, errors.New(errors.ErrCodeAuthFailed,
			"too many failed attempts, account temporarily locked")
	}

	// Success: the failed-attempt window resets entirely
	s.tracker.RecordAttempt(ctx, matricula, true, params.Meta.IPAddress, params.Meta.UserAgent, "login ok")
	if err := s.tracker.ClearOnSuccess(ctx, matricula); err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastAccess(ctx, user.ID); err != nil {
		slog.Error("Failed to update last access", "matricula", matricula, "err", err)
	}

	session, principal, err := s.registry.Create(ctx, user, params.Meta)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		User:      user.Profile(),
		Session:   session,
		Principal: principal,
	}

	if params.Remember {
		token, err := s.remember.Create(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		result.RememberToken = token
	}

	return result, nil
}

// RegisterParams carries the registration fields
type RegisterParams struct {
	Matricula string
	Name      string
	Email     string
	Password  string
	Role      string
}

// Register validates and creates a new user, returning the stored record
func (s *LoginService) Register(ctx context.Context, params RegisterParams) (*users.User, error) {
	if params.Matricula == "" || params.Name == "" || params.Email == "" || params.Password == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matricula, name, email and password are required")
	}

	matricula := users.NormalizeMatricula(params.Matricula)
	if !users.ValidMatricula(matricula) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid matricula format (4-20 alphanumeric characters)")
	}

	addr, err := mail.ParseAddress(params.Email)
	if err != nil || addr.Address != params.Email {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid email format")
	}

	if len(params.Password) < s.cfg.PasswordMinLength {
		return nil, errors.Newf(errors.ErrCodeInvalidInput,
			"password must be at least %d characters", s.cfg.PasswordMinLength)
	}

	role, ok := users.ParseRole(params.Role)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid role")
	}

	if _, err := s.users.GetByMatricula(ctx, matricula); err == nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "matricula is already registered")
	} else if err != users.ErrNotFound {
		return nil, errors.InternalWrap(err, "failed to check matricula")
	}

	if _, err := s.users.GetByEmail(ctx, params.Email); err == nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "email is already registered")
	} else if err != users.ErrNotFound {
		return nil, errors.InternalWrap(err, "failed to check email")
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to hash password")
	}

	createParams := users.CreateUserParams{}
	copier.Copy(&createParams, &params)
	createParams.Matricula = matricula
	createParams.PasswordHash = hash
	createParams.Role = role

	user, err := s.users.Create(ctx, createParams)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to create user")
	}

	slog.Info("Registered user", "matricula", user.Matricula, "role", user.Role)
	return user, nil
}

// ChangePassword verifies the current password and stores a new one. Every
// other active session of the user is closed; the caller's own session,
// identified by currentToken, stays alive. All remember tokens go.
func (s *LoginService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, currentToken string) error {
	if len(newPassword) < s.cfg.PasswordMinLength {
		return errors.Newf(errors.ErrCodeInvalidInput,
			"new password must be at least %d characters", s.cfg.PasswordMinLength)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == users.ErrNotFound {
			return errors.New(errors.ErrCodeAuthFailed, "user not found")
		}
		return errors.InternalWrap(err, "failed to look up user")
	}
	if !user.Active {
		return errors.New(errors.ErrCodeAuthFailed, "user not found")
	}

	valid, err := CheckPasswordHash(currentPassword, user.PasswordHash)
	if err != nil {
		return errors.InternalWrap(err, "failed to verify password")
	}
	if !valid {
		return errors.New(errors.ErrCodeAuthFailed, "current password is incorrect")
	}

	same, err := CheckPasswordHash(newPassword, user.PasswordHash)
	if err != nil {
		return errors.InternalWrap(err, "failed to verify password")
	}
	if same {
		return errors.New(errors.ErrCodeInvalidInput, "new password must differ from the current one")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.InternalWrap(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return errors.InternalWrap(err, "failed to update password")
	}

	if err := s.registry.InvalidateAllForUserExcept(ctx, userID, currentToken); err != nil {
		return err
	}
	if err := s.remember.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	return nil
}
