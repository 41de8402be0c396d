package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

const minPasswordLength = 8

// AccountService implements registration, login and account administration.
type AccountService struct {
	users   ports.UserRepository
	tokens  *SessionTokens
	revoked ports.SessionRevoker
	log     zerolog.Logger
	now     func() time.Time
}

func NewAccountService(
	users ports.UserRepository,
	tokens *SessionTokens,
	revoked ports.SessionRevoker,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a patient or doctor account. Doctors start unapproved and
// pending; an admin must approve them before they reach the doctor area.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", domain.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	var status domain.AccountStatus
	switch in.Role {
	case domain.RolePatient:
		status = domain.StatusActive
	case domain.RoleDoctor:
		status = domain.StatusPending
	default:
		return nil, fmt.Errorf("%w: role must be patient or doctor", domain.ErrValidation)
	}

	return s.create(ctx, email, in.Password, name, in.Role, status)
}

// SeedAdmin creates an active admin account. Admins cannot self-register.
func (s *AccountService) SeedAdmin(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: admin email and a password of at least %d characters are required", domain.ErrValidation, minPasswordLength)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	return s.create(ctx, email, password, name, domain.RoleAdmin, domain.StatusActive)
}

func (s *AccountService) create(ctx context.Context, email, password, name string, role domain.Role, status domain.AccountStatus) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("account created")
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := retryRead(ctx, func(ctx context.Context) (*domain.User, error) {
		return s.users.FindByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status == domain.StatusSuspended {
		return nil, domain.ErrAccountSuspended
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &ports.Session{Token: token, User: user}, nil
}

// Logout revokes the session token. Logging out with an unusable token is a
// no-op so that retries never fail.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", claims.Subject).Msg("session revoked")
	return nil
}

// ApproveDoctor lets a pending doctor into the doctor area. The change is
// visible on the doctor's next request. A suspended doctor is approved but
// stays suspended.
func (s *AccountService) ApproveDoctor(ctx context.Context, doctorID string) error {
	user, err := retryRead(ctx, func(ctx context.Context) (*domain.User, error) {
		return s.users.FindByID(ctx, doctorID)
	})
	if err != nil {
		return fmt.Errorf("approve doctor: %w", err)
	}
	if user.Role != domain.RoleDoctor {
		return fmt.Errorf("%w: user %s is not a doctor", domain.ErrValidation, doctorID)
	}
	// Approval never lifts a suspension; only SetStatus does.
	status := domain.StatusActive
	if user.Status == domain.StatusSuspended {
		status = domain.StatusSuspended
	}
	if err := s.users.UpdateApproval(ctx, doctorID, true, status); err != nil {
		return fmt.Errorf("approve doctor: %w", err)
	}
	s.log.Info().Str("doctor_id", doctorID).Str("status", string(status)).Msg("doctor approved")
	return nil
}

// SetStatus changes an account's status. Suspension takes effect on the
// account's next request.
func (s *AccountService) SetStatus(ctx context.Context, userID string, status domain.AccountStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown account status %q", domain.ErrValidation, status)
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("status", string(status)).Msg("account status changed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
