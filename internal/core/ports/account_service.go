package ports

import (
	"context"

	"github.com/clinicportal/portal/internal/core/domain"
)

// RegisterInput carries the self-service registration fields.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
}

// Session is an issued session credential.
type Session struct {
	Token string
	User  *domain.User
}

// AccountService covers registration, login and the administrative actions
// that change a caller's identity between requests.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	ApproveDoctor(ctx context.Context, doctorID string) error
	SetStatus(ctx context.Context, userID string, status domain.AccountStatus) error
}
