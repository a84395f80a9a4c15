package authapi

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/edusys/portal-auth/pkg/errors"
	"github.com/edusys/portal-auth/pkg/login"
	"github.com/edusys/portal-auth/pkg/maintenance"
	"github.com/edusys/portal-auth/pkg/remember"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/tokengen"
	"github.com/edusys/portal-auth/pkg/users"
)

// Cookie names mirrored alongside the token payloads so browser clients
// work without storing tokens themselves
const (
	SessionCookie  = "portal_session"
	RememberCookie = "portal_remember"
)

// Handle carries the services behind the authentication endpoint
type Handle struct {
	login    *login.LoginService
	registry *sessions.Registry
	remember *remember.Service
	stats    *maintenance.StatsService
	cookies  tokengen.CookieSetter
}

// NewHandle creates a new authentication handle
func NewHandle(loginService *login.LoginService, registry *sessions.Registry, rememberService *remember.Service, statsService *maintenance.StatsService, cookies tokengen.CookieSetter) Handle {
	return Handle{
		login:    loginService,
		registry: registry,
		remember: rememberService,
		stats:    statsService,
		cookies:  cookies,
	}
}

// Routes mounts the authentication endpoint on the router
func Routes(r *chi.Mux, handle Handle) {
	r.Group(func(r chi.Router) {
		r.Use(Headers)
		r.HandleFunc("/api/auth", handle.ServeAuth)
	})
}

// payload is the merged request input: query string values first, then
// JSON body fields on top. The action discriminator selects the operation.
type payload struct {
	Action          string `json:"action"`
	Matricula       string `json:"matricula"`
	Password        string `json:"password"`
	Remember        bool   `json:"remember"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	SessionToken    string `json:"session_token"`
	RememberToken   string `json:"remember_token"`
}

func decodePayload(r *http.Request) (*payload, error) {
	q := r.URL.Query()
	p := &payload{
		Action:        q.Get("action"),
		Matricula:     q.Get("matricula"),
		SessionToken:  q.Get("session_token"),
		RememberToken: q.Get("remember_token"),
	}
	switch q.Get("remember") {
	case "1", "true", "on":
		p.Remember = true
	}

	if r.Body != nil && r.ContentLength != 0 {
		// Absent JSON fields leave the query-derived values in place
		if err := render.DecodeJSON(r.Body, p); err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "malformed request body")
		}
	}
	return p, nil
}

// resolveToken finds the session token: explicit payload field first, then
// the Authorization bearer header, then the session cookie.
func resolveToken(r *http.Request, p *payload) string {
	if p.SessionToken != "" {
		return p.SessionToken
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func clientMeta(r *http.Request) sessions.ClientMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return sessions.ClientMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}

// ServeAuth is the single authentication endpoint. The action field in the
// merged payload selects the operation; state-changing actions are POST only.
func (h Handle) ServeAuth(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.Action == "" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "action is required"))
		return
	}

	switch p.Action {
	case "login":
		if !h.requirePost(w, r) {
			return
		}
		h.handleLogin(w, r, p)
	case "logout":
		if !h.requirePost(w, r) {
			return
		}
		h.handleLogout(w, r, p)
	case "register":
		if !h.requirePost(w, r) {
			return
		}
		h.handleRegister(w, r, p)
	case "change_password":
		if !h.requirePost(w, r) {
			return
		}
		h.handleChangePassword(w, r, p)
	case "remember_me":
		if !h.requirePost(w, r) {
			return
		}
		h.handleRememberMe(w, r, p)
	case "validate", "check_session":
		h.handleValidate(w, r, p)
	case "session_info":
		h.handleSessionInfo(w, r, p)
	case "stats":
		h.handleStats(w, r, p)
	default:
		writeError(w, r, errors.Newf(errors.ErrCodeInvalidInput, "unknown action: %s", p.Action))
	}
}

func (h Handle) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, r, errors.New(errors.ErrCodeNotAllowed, "method not allowed, use POST"))
		return false
	}
	return true
}

// authenticate validates the resolved session token and returns a context
// carrying the request principal
func (h Handle) authenticate(r *http.Request, p *payload) (context.Context, *sessions.Session, *users.User, error) {
	token := resolveToken(r, p)
	session, user, err := h.registry.Validate(r.Context(), token)
	if err != nil {
		return nil, nil, nil, err
	}
	principal := &sessions.Principal{
		UserID:    user.ID,
		Matricula: user.Matricula,
		Role:      user.Role,
		Token:     session.Token,
		LoginTime: session.CreatedAt,
	}
	return sessions.WithPrincipal(r.Context(), principal), session, user, nil
}

func (h Handle) handleLogin(w http.ResponseWriter, r *http.Request, p *payload) {
	result, err := h.login.Login(r.Context(), login.LoginParams{
		Matricula: p.Matricula,
		Password:  p.Password,
		Remember:  p.Remember,
		Meta:      clientMeta(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, SessionCookie, result.Session.Token, result.Session.ExpiresAt)
	data := map[string]interface{}{
		"user":          result.User,
		"session_token": result.Session.Token,
		"expires_at":    result.Session.ExpiresAt,
	}
	if result.RememberToken != nil {
		h.cookies.SetCookie(w, RememberCookie, result.RememberToken.Token, result.RememberToken.ExpiresAt)
		data["remember_token"] = result.RememberToken.Token
	}
	respond(w, r, http.StatusOK, "login successful", data)
}

func (h Handle) handleLogout(w http.ResponseWriter, r *http.Request, p *payload) {
	if err := h.registry.Invalidate(r.Context(), resolveToken(r, p)); err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.ClearCookie(w, SessionCookie)
	h.cookies.ClearCookie(w, RememberCookie)
	respond(w, r, http.StatusOK, "session closed", nil)
}

func (h Handle) handleRegister(w http.ResponseWriter, r *http.Request, p *payload) {
	user, err := h.login.Register(r.Context(), login.RegisterParams{
		Matricula: p.Matricula,
		Name:      p.Name,
		Email:     p.Email,
		Password:  p.Password,
		Role:      p.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "user registered", map[string]interface{}{
		"user": user.Profile(),
	})
}

func (h Handle) handleChangePassword(w http.ResponseWriter, r *http.Request, p *payload) {
	ctx, session, user, err := h.authenticate(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.login.ChangePassword(ctx, user.ID, p.CurrentPassword, p.NewPassword, session.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.ClearCookie(w, RememberCookie)
	respond(w, r, http.StatusOK, "password updated, other sessions closed", nil)
}

func (h Handle) handleRememberMe(w http.ResponseWriter, r *http.Request, p *payload) {
	token := p.RememberToken
	if token == "" {
		if cookie, err := r.Cookie(RememberCookie); err == nil {
			token = cookie.Value
		}
	}

	user, session, _, err := h.remember.Verify(r.Context(), token, clientMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, SessionCookie, session.Token, session.ExpiresAt)
	respond(w, r, http.StatusOK, "session restored", map[string]interface{}{
		"user":          user.Profile(),
		"session_token": session.Token,
		"expires_at":    session.ExpiresAt,
	})
}

func (h Handle) handleValidate(w http.ResponseWriter, r *http.Request, p *payload) {
	_, session, user, err := h.authenticate(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "session valid", map[string]interface{}{
		"user":       user.Profile(),
		"expires_at": session.ExpiresAt,
	})
}

func (h Handle) handleSessionInfo(w http.ResponseWriter, r *http.Request, p *payload) {
	ctx, session, user, err := h.authenticate(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	principal, _ := sessions.PrincipalFromContext(ctx)
	respond(w, r, http.StatusOK, "session info", map[string]interface{}{
		"user":      user.Profile(),
		"principal": principal,
		"session": map[string]interface{}{
			"created_at":    session.CreatedAt,
			"last_activity": session.LastActivity,
			"expires_at":    session.ExpiresAt,
			"ip_address":    session.IPAddress,
			"user_agent":    session.UserAgent,
		},
	})
}

func (h Handle) handleStats(w http.ResponseWriter, r *http.Request, p *payload) {
	ctx, _, _, err := h.authenticate(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	principal, ok := sessions.PrincipalFromContext(ctx)
	if !ok || !principal.Role.AtLeast(users.RoleAdmin) {
		writeError(w, r, errors.Forbidden("administrator access required"))
		return
	}

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "system statistics", map[string]interface{}{
		"stats": stats,
	})
}
