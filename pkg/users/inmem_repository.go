package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory implementation of Repository for tests
// and local development
type InMemRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewInMemRepository creates a new in-memory user repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		users: make(map[uuid.UUID]User),
	}
}

// Create inserts a new user
func (r *InMemRepository) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := User{
		ID:           uuid.New(),
		Matricula:    params.Matricula,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	r.users[user.ID] = user

	stored := user
	return &stored, nil
}

// GetByID retrieves a user by id
func (r *InMemRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	stored := user
	return &stored, nil
}

// GetByMatricula retrieves a user by matricula
func (r *InMemRepository) GetByMatricula(ctx context.Context, matricula string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Matricula == matricula {
			stored := user
			return &stored, nil
		}
	}
	return nil, ErrNotFound
}

// GetByEmail retrieves a user by email
func (r *InMemRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			stored := user
			return &stored, nil
		}
	}
	return nil, ErrNotFound
}

// UpdatePassword replaces the stored password hash
func (r *InMemRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

// UpdateLastAccess stamps the last access time with now
func (r *InMemRepository) UpdateLastAccess(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	user.LastAccess = &now
	r.users[id] = user
	return nil
}

// SetActive toggles the active flag
func (r *InMemRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Active = active
	r.users[id] = user
	return nil
}

// CountActive counts active users
func (r *InMemRepository) CountActive(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, user := range r.users {
		if user.Active {
			count++
		}
	}
	return count, nil
}
