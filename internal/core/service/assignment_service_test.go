package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/infrastructure/db/memory"
)

func newAssignmentSvc(t *testing.T) (*AssignmentService, *memory.AssignmentRepository, *recordingPublisher) {
	t.Helper()
	repo := memory.NewAssignmentRepository()
	pub := &recordingPublisher{}
	return NewAssignmentService(seedClinic(t), repo, pub, zerolog.Nop()), repo, pub
}

func TestAssignmentService_Adopt(t *testing.T) {
	svc, repo, pub := newAssignmentSvc(t)

	a, err := svc.Adopt(context.Background(), "doc", "pat")
	if err != nil {
		t.Fatalf("Adopt returned error: %v", err)
	}
	if !a.Active || a.DoctorID != "doc" || a.PatientID != "pat" || a.ID == "" {
		t.Errorf("unexpected assignment: %+v", a)
	}
	if n := repo.ActiveCount("doc", "pat"); n != 1 {
		t.Errorf("expected 1 active assignment, got %d", n)
	}
	if got := pub.types(); len(got) != 1 || got[0] != domain.EventAssignmentCreated {
		t.Errorf("expected one assignment.created event, got %v", got)
	}
}

func TestAssignmentService_Adopt_Twice(t *testing.T) {
	svc, repo, _ := newAssignmentSvc(t)

	if _, err := svc.Adopt(context.Background(), "doc", "pat"); err != nil {
		t.Fatalf("first Adopt returned error: %v", err)
	}
	if _, err := svc.Adopt(context.Background(), "doc", "pat"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if n := repo.ActiveCount("doc", "pat"); n != 1 {
		t.Errorf("expected 1 active assignment, got %d", n)
	}
}

func TestAssignmentService_Adopt_OtherPairsIndependent(t *testing.T) {
	svc, _, _ := newAssignmentSvc(t)
	ctx := context.Background()

	for _, pair := range [][2]string{{"doc", "pat"}, {"doc", "pat2"}, {"doc2", "pat"}} {
		if _, err := svc.Adopt(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("Adopt(%s, %s) returned error: %v", pair[0], pair[1], err)
		}
	}
}

func TestAssignmentService_Adopt_Concurrent(t *testing.T) {
	svc, repo, _ := newAssignmentSvc(t)

	const callers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Adopt(context.Background(), "doc", "pat")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != callers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", callers-1, successes, conflicts)
	}
	if n := repo.ActiveCount("doc", "pat"); n != 1 {
		t.Fatalf("expected 1 active assignment, got %d", n)
	}
}

func TestAssignmentService_Adopt_InvalidReferences(t *testing.T) {
	svc, _, _ := newAssignmentSvc(t)

	cases := []struct {
		name, doctor, patient string
	}{
		{"unknown doctor", "nobody", "pat"},
		{"unknown patient", "doc", "nobody"},
		{"patient as doctor", "pat", "pat2"},
		{"doctor as patient", "doc", "doc2"},
		{"empty ids", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Adopt(context.Background(), tc.doctor, tc.patient); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAssignmentService_Release(t *testing.T) {
	svc, repo, pub := newAssignmentSvc(t)
	ctx := context.Background()

	if _, err := svc.Adopt(ctx, "doc", "pat"); err != nil {
		t.Fatalf("Adopt returned error: %v", err)
	}
	if err := svc.Release(ctx, "doc", "pat"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if n := repo.ActiveCount("doc", "pat"); n != 0 {
		t.Fatalf("expected no active assignment, got %d", n)
	}

	// Re-adoption after release is allowed.
	if _, err := svc.Adopt(ctx, "doc", "pat"); err != nil {
		t.Fatalf("re-Adopt returned error: %v", err)
	}

	want := []domain.EventType{domain.EventAssignmentCreated, domain.EventAssignmentReleased, domain.EventAssignmentCreated}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

func TestAssignmentService_Release_WithoutActiveAssignment(t *testing.T) {
	svc, _, pub := newAssignmentSvc(t)

	if err := svc.Release(context.Background(), "doc", "pat"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := pub.types(); len(got) != 0 {
		t.Fatalf("expected no events, got %v", got)
	}
}

func TestAssignmentService_Release_RequiresIDs(t *testing.T) {
	svc, _, _ := newAssignmentSvc(t)

	if err := svc.Release(context.Background(), "", "pat"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAssignmentService_WritesNotRetried(t *testing.T) {
	repo := &transientAssignments{AssignmentRepository: memory.NewAssignmentRepository(), failInsert: true, failDeactivate: true}
	pub := &recordingPublisher{}
	svc := NewAssignmentService(seedClinic(t), repo, pub, zerolog.Nop())

	if _, err := svc.Adopt(context.Background(), "doc", "pat"); !errors.Is(err, domain.ErrStorageTransient) {
		t.Fatalf("Adopt: expected ErrStorageTransient, got %v", err)
	}
	if n := repo.inserts.Load(); n != 1 {
		t.Errorf("expected exactly 1 insert attempt, got %d", n)
	}

	if err := svc.Release(context.Background(), "doc", "pat"); !errors.Is(err, domain.ErrStorageTransient) {
		t.Fatalf("Release: expected ErrStorageTransient, got %v", err)
	}
	if n := repo.deactivations.Load(); n != 1 {
		t.Errorf("expected exactly 1 deactivate attempt, got %d", n)
	}
	if got := pub.types(); len(got) != 0 {
		t.Errorf("failed writes must not publish, got %v", got)
	}
}
