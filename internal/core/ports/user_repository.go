package ports

import (
	"context"

	"github.com/clinicportal/portal/internal/core/domain"
)

// UserRepository defines persistence for account profiles.
type UserRepository interface {
	// Create inserts a new profile. Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	// FindByID returns domain.ErrUserNotFound when no profile has the id.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateApproval(ctx context.Context, id string, approved bool, status domain.AccountStatus) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
}
