package attempts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory implementation of Repository for tests
type InMemRepository struct {
	mu       sync.RWMutex
	attempts []LoginAttempt
}

// NewInMemRepository creates a new in-memory attempt repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{}
}

// Record appends a login attempt
func (r *InMemRepository) Record(ctx context.Context, attempt LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt.ID = uuid.New()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	r.attempts = append(r.attempts, attempt)
	return nil
}

// CountFailedSince counts failed attempts for a matricula newer than since
func (r *InMemRepository) CountFailedSince(ctx context.Context, matricula string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, a := range r.attempts {
		if a.Matricula == matricula && !a.Success && a.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// LastFailedSince returns the most recent failed attempt time within the window
func (r *InMemRepository) LastFailedSince(ctx context.Context, matricula string, since time.Time) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last *time.Time
	for _, a := range r.attempts {
		if a.Matricula == matricula && !a.Success && a.CreatedAt.After(since) {
			if last == nil || a.CreatedAt.After(*last) {
				t := a.CreatedAt
				last = &t
			}
		}
	}
	return last, nil
}

// DeleteFailed removes all failed attempts for a matricula
func (r *InMemRepository) DeleteFailed(ctx context.Context, matricula string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.Matricula == matricula && !a.Success {
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return nil
}

// DeleteOlderThan removes attempts recorded before the cutoff
func (r *InMemRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return nil
}

// CountSince counts attempts with the given outcome newer than since
func (r *InMemRepository) CountSince(ctx context.Context, since time.Time, success bool) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, a := range r.attempts {
		if a.Success == success && a.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// Len reports the number of stored attempts
func (r *InMemRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attempts)
}
