package memory

import (
	"context"
	"sync"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
)

type pairKey struct {
	doctorID  string
	patientID string
}

// AssignmentRepository indexes active rows by (doctor, patient). Insert
// checks and writes under one lock, which is what the partial unique index
// does for the database stores.
type AssignmentRepository struct {
	mu     sync.Mutex
	rows   map[string]*domain.Assignment
	active map[pairKey]string
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{
		rows:   make(map[string]*domain.Assignment),
		active: make(map[pairKey]string),
	}
}

func (r *AssignmentRepository) FindActive(_ context.Context, doctorID, patientID string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.active[pairKey{doctorID, patientID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAssignment(r.rows[id]), nil
}

func (r *AssignmentRepository) Insert(_ context.Context, a *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{a.DoctorID, a.PatientID}
	if _, taken := r.active[key]; taken && a.Active {
		return domain.ErrConflict
	}
	if _, dup := r.rows[a.ID]; dup {
		return domain.ErrConflict
	}
	r.rows[a.ID] = cloneAssignment(a)
	if a.Active {
		r.active[key] = a.ID
	}
	return nil
}

func (r *AssignmentRepository) Deactivate(_ context.Context, doctorID, patientID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{doctorID, patientID}
	id, ok := r.active[key]
	if !ok {
		return false, nil
	}
	row := r.rows[id]
	row.Active = false
	released := at
	row.ReleasedAt = &released
	delete(r.active, key)
	return true, nil
}

// ActiveCount reports how many active rows exist for the pair.
func (r *AssignmentRepository) ActiveCount(doctorID, patientID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, row := range r.rows {
		if row.Active && row.DoctorID == doctorID && row.PatientID == patientID {
			n++
		}
	}
	return n
}

func cloneAssignment(a *domain.Assignment) *domain.Assignment {
	clone := *a
	if a.ReleasedAt != nil {
		t := *a.ReleasedAt
		clone.ReleasedAt = &t
	}
	return &clone
}
