package memory

import (
	"context"
	"sync"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// AppointmentRepository enforces one slot-holding appointment per
// (doctor, slot) under its lock.
type AppointmentRepository struct {
	mu   sync.Mutex
	rows map[string]*domain.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{rows: make(map[string]*domain.Appointment)}
}

func (r *AppointmentRepository) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAppointment(a), nil
}

func (r *AppointmentRepository) FindActiveBySlot(_ context.Context, doctorID string, slot time.Time) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a := r.holder(doctorID, slot, ""); a != nil {
		return cloneAppointment(a), nil
	}
	return nil, domain.ErrNotFound
}

func (r *AppointmentRepository) Insert(_ context.Context, a *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.rows[a.ID]; dup {
		return domain.ErrConflict
	}
	if a.State.HoldsSlot() && r.holder(a.DoctorID, a.Slot, "") != nil {
		return domain.ErrConflict
	}
	r.rows[a.ID] = cloneAppointment(a)
	return nil
}

func (r *AppointmentRepository) ApplyTransition(_ context.Context, u ports.TransitionUpdate) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[u.AppointmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if a.State != u.From {
		return nil, domain.ErrInvalidTransition
	}

	slot := a.Slot
	if u.Slot != nil {
		slot = *u.Slot
	}
	if u.Entry.State.HoldsSlot() && r.holder(a.DoctorID, slot, a.ID) != nil {
		return nil, domain.ErrConflict
	}

	a.Slot = slot
	a.State = u.Entry.State
	a.History = append(a.History, u.Entry)
	a.UpdatedAt = u.Entry.At
	return cloneAppointment(a), nil
}

// holder returns the slot-holding appointment for (doctorID, slot) other than
// exceptID. Callers must hold r.mu.
func (r *AppointmentRepository) holder(doctorID string, slot time.Time, exceptID string) *domain.Appointment {
	for id, a := range r.rows {
		if id == exceptID || a.DoctorID != doctorID || !a.State.HoldsSlot() {
			continue
		}
		if a.Slot.Equal(slot) {
			return a
		}
	}
	return nil
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	clone := *a
	clone.History = append([]domain.HistoryEntry(nil), a.History...)
	return &clone
}
