package remember

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory implementation of Repository for tests
type InMemRepository struct {
	mu     sync.RWMutex
	tokens map[string]RememberToken // keyed by token
}

// NewInMemRepository creates a new in-memory remember-token repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		tokens: make(map[string]RememberToken),
	}
}

// Create inserts a new remember token
func (r *InMemRepository) Create(ctx context.Context, token RememberToken) (*RememberToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.Token]; exists {
		return nil, fmt.Errorf("duplicate remember token")
	}

	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token

	stored := token
	return &stored, nil
}

// GetByToken retrieves a remember token by its token string
func (r *InMemRepository) GetByToken(ctx context.Context, token string) (*RememberToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	out := stored
	return &out, nil
}

// DeleteByUser removes every remember token belonging to the user
func (r *InMemRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

// DeleteExpiredBefore removes tokens whose expiry is before the cutoff
func (r *InMemRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, token := range r.tokens {
		if token.ExpiresAt.Before(cutoff) {
			delete(r.tokens, key)
		}
	}
	return nil
}

// Len reports the number of stored tokens
func (r *InMemRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
