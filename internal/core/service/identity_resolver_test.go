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

func newResolver(users ports.UserRepository, revoked ports.SessionRevoker, timeout time.Duration) (*IdentityResolver, *SessionTokens) {
	tokens := NewSessionTokens("secret", time.Hour)
	return NewIdentityResolver(tokens, users, revoked, timeout, zerolog.Nop()), tokens
}

func issue(t *testing.T, tokens *SessionTokens, userID string) string {
	t.Helper()
	signed, _, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

func TestIdentityResolver_Resolve_ValidSession(t *testing.T) {
	users := seedClinic(t)
	r, tokens := newResolver(users, memory.NewRevocationSet(), time.Second)

	id, err := r.Resolve(context.Background(), issue(t, tokens, "doc"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if id.UserID != "doc" || id.Role != domain.RoleDoctor || !id.Approved || id.Status != domain.StatusActive {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestIdentityResolver_Resolve_NoOrBadCredential(t *testing.T) {
	r, _ := newResolver(seedClinic(t), memory.NewRevocationSet(), time.Second)

	for _, cred := range []string{"", "not-a-jwt"} {
		id, err := r.Resolve(context.Background(), cred)
		if id != nil {
			t.Errorf("credential %q: expected nil identity", cred)
		}
		if !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("credential %q: expected ErrUnauthenticated, got %v", cred, err)
		}
	}
}

func TestIdentityResolver_Resolve_Revoked(t *testing.T) {
	users := seedClinic(t)
	revoked := memory.NewRevocationSet()
	r, tokens := newResolver(users, revoked, time.Second)

	signed, claims, err := tokens.Issue("pat")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := revoked.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := r.Resolve(context.Background(), signed); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityResolver_Resolve_RevocationStoreDownFailsClosed(t *testing.T) {
	r, tokens := newResolver(seedClinic(t), failingRevoker{}, time.Second)

	id, err := r.Resolve(context.Background(), issue(t, tokens, "pat"))
	if id != nil || !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected anonymous with ErrUnauthenticated, got %+v, %v", id, err)
	}
}

func TestIdentityResolver_Resolve_ProfileMissing(t *testing.T) {
	r, tokens := newResolver(seedClinic(t), memory.NewRevocationSet(), time.Second)

	id, err := r.Resolve(context.Background(), issue(t, tokens, "ghost"))
	if id != nil {
		t.Errorf("expected nil identity")
	}
	if !errors.Is(err, domain.ErrProfileMissing) {
		t.Fatalf("expected ErrProfileMissing, got %v", err)
	}
}

func TestIdentityResolver_Resolve_RetriesTransientReadOnce(t *testing.T) {
	users := &flakyUsers{UserRepository: seedClinic(t), failures: 1}
	r, tokens := newResolver(users, memory.NewRevocationSet(), time.Second)

	id, err := r.Resolve(context.Background(), issue(t, tokens, "pat"))
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if id.UserID != "pat" {
		t.Errorf("unexpected identity: %+v", id)
	}
	if got := users.calls.Load(); got != 2 {
		t.Errorf("expected 2 reads, got %d", got)
	}
}

func TestIdentityResolver_Resolve_GivesUpAfterSecondFailure(t *testing.T) {
	users := &flakyUsers{UserRepository: seedClinic(t), failures: 5}
	r, tokens := newResolver(users, memory.NewRevocationSet(), time.Second)

	_, err := r.Resolve(context.Background(), issue(t, tokens, "pat"))
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if got := users.calls.Load(); got != 2 {
		t.Errorf("expected exactly 2 reads, got %d", got)
	}
}

func TestIdentityResolver_Resolve_TimesOutOnStalledStore(t *testing.T) {
	users := &stallingUsers{UserRepository: seedClinic(t), release: make(chan struct{})}
	defer close(users.release)
	r, tokens := newResolver(users, memory.NewRevocationSet(), 50*time.Millisecond)

	start := time.Now()
	id, err := r.Resolve(context.Background(), issue(t, tokens, "pat"))
	elapsed := time.Since(start)

	if id != nil || !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected anonymous on timeout, got %+v, %v", id, err)
	}
	if elapsed > time.Second {
		t.Fatalf("resolution took %v, expected it to honour the timeout", elapsed)
	}
}

func TestIdentityResolver_Resolve_SeesChangesOnNextCall(t *testing.T) {
	users := memory.NewUserRepository()
	seedUser(t, users, "newdoc", domain.RoleDoctor, domain.StatusPending, false)
	r, tokens := newResolver(users, memory.NewRevocationSet(), time.Second)
	signed := issue(t, tokens, "newdoc")

	before, err := r.Resolve(context.Background(), signed)
	if err != nil || before.Approved {
		t.Fatalf("expected unapproved doctor, got %+v, %v", before, err)
	}

	if err := users.UpdateApproval(context.Background(), "newdoc", true, domain.StatusActive); err != nil {
		t.Fatalf("approve: %v", err)
	}

	after, err := r.Resolve(context.Background(), signed)
	if err != nil || !after.Approved || after.Status != domain.StatusActive {
		t.Fatalf("expected approved doctor with the same token, got %+v, %v", after, err)
	}
}
