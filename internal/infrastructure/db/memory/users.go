// Package memory provides process-local stores with the same constraint
// semantics as the database-backed ones. They back STORE_DRIVER=memory and the
// concurrency tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
)

// UserRepository keeps profiles in a map, unique by id and by email.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrUserExists
	}
	if _, exists := r.byID[user.ID]; exists {
		return domain.ErrUserExists
	}
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *UserRepository) UpdateApproval(_ context.Context, id string, approved bool, status domain.AccountStatus) error {
	return r.update(id, func(u *domain.User) {
		u.Approved = approved
		u.Status = status
	})
}

func (r *UserRepository) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) error {
	return r.update(id, func(u *domain.User) {
		u.Status = status
	})
}

func (r *UserRepository) update(id string, apply func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	apply(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}
