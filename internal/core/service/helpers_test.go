package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
	"github.com/clinicportal/portal/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(e domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// flakyUsers fails the first `failures` FindByID calls with a transient error.
type flakyUsers struct {
	ports.UserRepository
	failures int32
	calls    atomic.Int32
}

func (f *flakyUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, domain.ErrStorageTransient
	}
	return f.UserRepository.FindByID(ctx, id)
}

// stallingUsers blocks every FindByID until release is closed, ignoring ctx.
type stallingUsers struct {
	ports.UserRepository
	release chan struct{}
}

func (s *stallingUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	<-s.release
	return s.UserRepository.FindByID(ctx, id)
}

// transientAppointments counts mutating calls and, when told to, fails them
// with a transient storage error instead of delegating.
type transientAppointments struct {
	ports.AppointmentRepository
	failInsert     bool
	failTransition bool
	inserts        atomic.Int32
	transitions    atomic.Int32
}

func (r *transientAppointments) Insert(ctx context.Context, a *domain.Appointment) error {
	r.inserts.Add(1)
	if r.failInsert {
		return domain.ErrStorageTransient
	}
	return r.AppointmentRepository.Insert(ctx, a)
}

func (r *transientAppointments) ApplyTransition(ctx context.Context, u ports.TransitionUpdate) (*domain.Appointment, error) {
	r.transitions.Add(1)
	if r.failTransition {
		return nil, domain.ErrStorageTransient
	}
	return r.AppointmentRepository.ApplyTransition(ctx, u)
}

// transientAssignments is the assignment counterpart of transientAppointments.
type transientAssignments struct {
	ports.AssignmentRepository
	failInsert     bool
	failDeactivate bool
	inserts        atomic.Int32
	deactivations  atomic.Int32
}

func (r *transientAssignments) Insert(ctx context.Context, a *domain.Assignment) error {
	r.inserts.Add(1)
	if r.failInsert {
		return domain.ErrStorageTransient
	}
	return r.AssignmentRepository.Insert(ctx, a)
}

func (r *transientAssignments) Deactivate(ctx context.Context, doctorID, patientID string, at time.Time) (bool, error) {
	r.deactivations.Add(1)
	if r.failDeactivate {
		return false, domain.ErrStorageTransient
	}
	return r.AssignmentRepository.Deactivate(ctx, doctorID, patientID, at)
}

type failingRevoker struct{}

func (failingRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, domain.ErrStorageTransient
}

func (failingRevoker) Revoke(context.Context, string, time.Time) error {
	return domain.ErrStorageTransient
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func seedUser(t *testing.T, repo ports.UserRepository, id string, role domain.Role, status domain.AccountStatus, approved bool) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		Role:      role,
		Approved:  approved,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

// seedClinic creates an approved doctor "doc", a second doctor "doc2",
// a patient "pat" and a second patient "pat2".
func seedClinic(t *testing.T) *memory.UserRepository {
	t.Helper()
	users := memory.NewUserRepository()
	seedUser(t, users, "doc", domain.RoleDoctor, domain.StatusActive, true)
	seedUser(t, users, "doc2", domain.RoleDoctor, domain.StatusActive, true)
	seedUser(t, users, "pat", domain.RolePatient, domain.StatusActive, false)
	seedUser(t, users, "pat2", domain.RolePatient, domain.StatusActive, false)
	return users
}
