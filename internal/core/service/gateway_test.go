package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/access"
	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/infrastructure/db/memory"
)

func newTestGateway(t *testing.T) (*Gateway, *memory.UserRepository, *SessionTokens) {
	t.Helper()
	users := seedClinic(t)
	seedUser(t, users, "pending", domain.RoleDoctor, domain.StatusPending, false)
	seedUser(t, users, "root", domain.RoleAdmin, domain.StatusActive, false)
	r, tokens := newResolver(users, memory.NewRevocationSet(), time.Second)
	return NewGateway(r, zerolog.Nop()), users, tokens
}

func TestGateway_Evaluate_Scenarios(t *testing.T) {
	gw, _, tokens := newTestGateway(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		userID   string
		path     string
		state    access.State
		location string
	}{
		{name: "anonymous on doctor area", path: "/medico", state: access.Anonymous, location: access.LoginPath},
		{name: "patient on admin area", userID: "pat", path: "/admin", state: access.PatientActive, location: access.PatientHome},
		{name: "patient home", userID: "pat", path: "/paciente/citas", state: access.PatientActive},
		{name: "pending doctor on doctor area", userID: "pending", path: "/medico/citas", state: access.DoctorPending, location: access.DoctorPendingHome},
		{name: "pending doctor below pending page", userID: "pending", path: "/medico/pending/status", state: access.DoctorPending, location: access.DoctorPendingHome},
		{name: "pending doctor on pending page", userID: "pending", path: "/medico/pending", state: access.DoctorPending},
		{name: "approved doctor", userID: "doc", path: "/medico/pacientes/pat", state: access.DoctorApproved},
		{name: "admin on patient area", userID: "root", path: "/paciente", state: access.Admin, location: access.AdminHome},
		{name: "admin on admin area", userID: "root", path: "/admin/medicos/doc/aprobar", state: access.Admin},
		{name: "missing profile", userID: "ghost", path: "/paciente", state: access.Anonymous, location: access.LoginPath},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cred := ""
			if tc.userID != "" {
				cred = issue(t, tokens, tc.userID)
			}
			v := gw.Evaluate(ctx, cred, tc.path)
			if v.State != tc.state {
				t.Errorf("expected state %s, got %s", tc.state, v.State)
			}
			if tc.location == "" {
				if !v.IsContinue() {
					t.Errorf("expected continue, got %s", v.Decision)
				}
				return
			}
			if v.Location() != tc.location {
				t.Errorf("expected redirect to %s, got %s", tc.location, v.Decision)
			}
		})
	}
}

func TestGateway_Evaluate_SuspensionTakesEffectNextRequest(t *testing.T) {
	gw, users, tokens := newTestGateway(t)
	ctx := context.Background()
	cred := issue(t, tokens, "pat")

	if !gw.Evaluate(ctx, cred, "/paciente").IsContinue() {
		t.Fatalf("active patient should reach /paciente")
	}
	if err := users.UpdateStatus(ctx, "pat", domain.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	v := gw.Evaluate(ctx, cred, "/paciente")
	if v.State != access.Anonymous || v.Location() != access.LoginPath {
		t.Fatalf("expected anonymous redirect to login, got %s %s", v.State, v.Decision)
	}
}

func TestGateway_Evaluate_ApprovalTakesEffectNextRequest(t *testing.T) {
	gw, users, tokens := newTestGateway(t)
	ctx := context.Background()
	cred := issue(t, tokens, "pending")

	if got := gw.Evaluate(ctx, cred, "/medico").Location(); got != access.DoctorPendingHome {
		t.Fatalf("expected redirect to %s before approval, got %q", access.DoctorPendingHome, got)
	}
	if err := users.UpdateApproval(ctx, "pending", true, domain.StatusActive); err != nil {
		t.Fatalf("approve: %v", err)
	}

	v := gw.Evaluate(ctx, cred, "/medico")
	if v.State != access.DoctorApproved || !v.IsContinue() {
		t.Fatalf("expected approved doctor to continue, got %s %s", v.State, v.Decision)
	}
}

func TestGateway_Evaluate_PublicPathsWithoutSession(t *testing.T) {
	gw, _, _ := newTestGateway(t)

	for _, p := range []string{"/", "/login", "/auth/login", "/health"} {
		v := gw.Evaluate(context.Background(), "", p)
		if !v.IsContinue() {
			t.Errorf("%s: expected continue, got %s", p, v.Decision)
		}
		if v.Identity != nil {
			t.Errorf("%s: expected no identity", p)
		}
	}
}

func TestGateway_Evaluate_Reasons(t *testing.T) {
	gw, _, tokens := newTestGateway(t)
	ctx := context.Background()

	refused := gw.Evaluate(ctx, issue(t, tokens, "pat"), "/admin")
	if !errors.Is(refused.Reason, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", refused.Reason)
	}
	if refused.Identity == nil {
		t.Errorf("refused caller should keep its identity")
	}

	if allowed := gw.Evaluate(ctx, issue(t, tokens, "pat"), "/paciente"); allowed.Reason != nil {
		t.Errorf("expected no reason, got %v", allowed.Reason)
	}

	missing := gw.Evaluate(ctx, issue(t, tokens, "ghost"), "/paciente")
	if !errors.Is(missing.Reason, domain.ErrProfileMissing) {
		t.Errorf("expected ErrProfileMissing, got %v", missing.Reason)
	}
	if missing.Identity != nil {
		t.Errorf("missing profile should be anonymous")
	}
}
