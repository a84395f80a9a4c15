package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory implementation of Repository for tests
type InMemRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session // keyed by token
}

// NewInMemRepository creates a new in-memory session repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		sessions: make(map[string]Session),
	}
}

// Create inserts a new session
func (r *InMemRepository) Create(ctx context.Context, session Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.Token]; exists {
		return nil, fmt.Errorf("duplicate session token")
	}

	session.ID = uuid.New()
	session.Active = true
	now := time.Now()
	session.CreatedAt = now
	session.LastActivity = now
	r.sessions[session.Token] = session

	stored := session
	return &stored, nil
}

// GetByToken retrieves a session by its token
func (r *InMemRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	stored := session
	return &stored, nil
}

// Deactivate marks a session inactive and records the close time
func (r *InMemRepository) Deactivate(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[token]
	if !ok || !session.Active {
		return nil
	}
	now := time.Now()
	session.Active = false
	session.ClosedAt = &now
	r.sessions[token] = session
	return nil
}

// DeactivateAllForUserExcept deactivates every active session of the user
// except the one holding keepToken
func (r *InMemRepository) DeactivateAllForUserExcept(ctx context.Context, userID uuid.UUID, keepToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for token, session := range r.sessions {
		if session.UserID == userID && token != keepToken && session.Active {
			session.Active = false
			session.ClosedAt = &now
			r.sessions[token] = session
		}
	}
	return nil
}

// UpdateActivity stamps last activity with now
func (r *InMemRepository) UpdateActivity(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, session := range r.sessions {
		if session.ID == id {
			session.LastActivity = time.Now()
			r.sessions[token] = session
			return nil
		}
	}
	return ErrNotFound
}

// DeactivateExpired flips still-active but expired sessions to inactive
func (r *InMemRepository) DeactivateExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for token, session := range r.sessions {
		if session.Active && session.ExpiresAt.Before(now) {
			session.Active = false
			session.ClosedAt = &now
			r.sessions[token] = session
		}
	}
	return nil
}

// DeleteInactiveBefore removes inactive sessions created before cutoff
func (r *InMemRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, session := range r.sessions {
		if !session.Active && session.CreatedAt.Before(cutoff) {
			delete(r.sessions, token)
		}
	}
	return nil
}

// CountActive counts active, unexpired sessions
func (r *InMemRepository) CountActive(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	var count int64
	for _, session := range r.sessions {
		if session.Active && session.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

// Len reports the number of stored sessions
func (r *InMemRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
