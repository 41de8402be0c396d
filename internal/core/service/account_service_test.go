package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
	"github.com/clinicportal/portal/internal/infrastructure/db/memory"
)

func newAccountSvc() (*AccountService, *memory.UserRepository, *memory.RevocationSet) {
	users := memory.NewUserRepository()
	revoked := memory.NewRevocationSet()
	tokens := NewSessionTokens("secret", time.Hour)
	return NewAccountService(users, tokens, revoked, zerolog.Nop()), users, revoked
}

func register(t *testing.T, svc *AccountService, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return u
}

func TestAccountService_Register_Patient(t *testing.T) {
	svc, _, _ := newAccountSvc()

	u := register(t, svc, "  Alice@Example.com ", domain.RolePatient)

	if u.Email != "alice@example.com" {
		t.Errorf("expected normalised email, got %q", u.Email)
	}
	if u.Status != domain.StatusActive || u.Approved {
		t.Errorf("expected active unapproved patient, got %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "password123" {
		t.Errorf("expected hashed password")
	}
}

func TestAccountService_Register_DoctorStartsPending(t *testing.T) {
	svc, _, _ := newAccountSvc()

	u := register(t, svc, "doc@example.com", domain.RoleDoctor)

	if u.Status != domain.StatusPending || u.Approved {
		t.Errorf("expected pending unapproved doctor, got %+v", u)
	}
}

func TestAccountService_Register_Rejections(t *testing.T) {
	svc, _, _ := newAccountSvc()
	register(t, svc, "taken@example.com", domain.RolePatient)

	cases := []struct {
		name string
		in   ports.RegisterInput
		want error
	}{
		{"admin self-registration", ports.RegisterInput{Email: "a@example.com", Password: "password123", Name: "A", Role: domain.RoleAdmin}, domain.ErrValidation},
		{"short password", ports.RegisterInput{Email: "b@example.com", Password: "short", Name: "B", Role: domain.RolePatient}, domain.ErrValidation},
		{"missing name", ports.RegisterInput{Email: "c@example.com", Password: "password123", Role: domain.RolePatient}, domain.ErrValidation},
		{"duplicate email", ports.RegisterInput{Email: "TAKEN@example.com", Password: "password123", Name: "D", Role: domain.RolePatient}, domain.ErrUserExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAccountService_Login(t *testing.T) {
	svc, _, _ := newAccountSvc()
	u := register(t, svc, "alice@example.com", domain.RolePatient)

	session, err := svc.Login(context.Background(), "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	claims, err := svc.tokens.Parse(session.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != u.ID {
		t.Errorf("expected subject %s, got %s", u.ID, claims.Subject)
	}
}

func TestAccountService_Login_BadCredentialsAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAccountSvc()
	register(t, svc, "alice@example.com", domain.RolePatient)

	_, wrongPassword := svc.Login(context.Background(), "alice@example.com", "wrong-password")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "password123")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) || !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPassword, unknownEmail)
	}
}

func TestAccountService_Login_Suspended(t *testing.T) {
	svc, users, _ := newAccountSvc()
	u := register(t, svc, "alice@example.com", domain.RolePatient)
	if err := users.UpdateStatus(context.Background(), u.ID, domain.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	if _, err := svc.Login(context.Background(), "alice@example.com", "password123"); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestAccountService_Logout_RevokesToken(t *testing.T) {
	svc, _, revoked := newAccountSvc()
	register(t, svc, "alice@example.com", domain.RolePatient)
	session, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	claims, _ := svc.tokens.Parse(session.Token)
	isRevoked, _ := revoked.IsRevoked(context.Background(), claims.ID)
	if !isRevoked {
		t.Fatalf("expected token to be revoked")
	}
}

func TestAccountService_Logout_UnusableTokenIsNoop(t *testing.T) {
	svc, _, _ := newAccountSvc()
	if err := svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestAccountService_Logout_StoreFailure(t *testing.T) {
	users := memory.NewUserRepository()
	tokens := NewSessionTokens("secret", time.Hour)
	svc := NewAccountService(users, tokens, failingRevoker{}, zerolog.Nop())
	signed, _, _ := tokens.Issue("someone")

	if err := svc.Logout(context.Background(), signed); !errors.Is(err, domain.ErrStorageTransient) {
		t.Fatalf("expected ErrStorageTransient, got %v", err)
	}
}

func TestAccountService_ApproveDoctor(t *testing.T) {
	svc, users, _ := newAccountSvc()
	doc := register(t, svc, "doc@example.com", domain.RoleDoctor)

	if err := svc.ApproveDoctor(context.Background(), doc.ID); err != nil {
		t.Fatalf("ApproveDoctor returned error: %v", err)
	}

	got, _ := users.FindByID(context.Background(), doc.ID)
	if !got.Approved || got.Status != domain.StatusActive {
		t.Fatalf("expected approved active doctor, got %+v", got)
	}
}

func TestAccountService_ApproveDoctor_KeepsSuspension(t *testing.T) {
	svc, users, _ := newAccountSvc()
	doc := register(t, svc, "doc@example.com", domain.RoleDoctor)
	if err := svc.SetStatus(context.Background(), doc.ID, domain.StatusSuspended); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}

	if err := svc.ApproveDoctor(context.Background(), doc.ID); err != nil {
		t.Fatalf("ApproveDoctor returned error: %v", err)
	}

	got, _ := users.FindByID(context.Background(), doc.ID)
	if !got.Approved || got.Status != domain.StatusSuspended {
		t.Fatalf("expected approved but still suspended doctor, got %+v", got)
	}
}

func TestAccountService_ApproveDoctor_Rejections(t *testing.T) {
	svc, _, _ := newAccountSvc()
	pat := register(t, svc, "pat@example.com", domain.RolePatient)

	if err := svc.ApproveDoctor(context.Background(), pat.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("approving a patient: expected ErrValidation, got %v", err)
	}
	if err := svc.ApproveDoctor(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("approving unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestAccountService_SetStatus(t *testing.T) {
	svc, users, _ := newAccountSvc()
	pat := register(t, svc, "pat@example.com", domain.RolePatient)

	if err := svc.SetStatus(context.Background(), pat.ID, domain.StatusSuspended); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	got, _ := users.FindByID(context.Background(), pat.ID)
	if got.Status != domain.StatusSuspended {
		t.Errorf("expected suspended, got %s", got.Status)
	}

	if err := svc.SetStatus(context.Background(), pat.ID, "frozen"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got %v", err)
	}
	if err := svc.SetStatus(context.Background(), "missing", domain.StatusActive); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountService_SeedAdmin(t *testing.T) {
	svc, _, _ := newAccountSvc()

	admin, err := svc.SeedAdmin(context.Background(), "root@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SeedAdmin returned error: %v", err)
	}
	if admin.Role != domain.RoleAdmin || admin.Status != domain.StatusActive {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if _, err := svc.SeedAdmin(context.Background(), "root@example.com", "password123", ""); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists on second seed, got %v", err)
	}
}
