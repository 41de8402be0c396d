package ports

import (
	"context"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
)

// TransitionUpdate describes one compare-and-set on an appointment.
type TransitionUpdate struct {
	AppointmentID string
	// From is the state the caller observed. The update applies only if the
	// stored state still equals From.
	From  domain.AppointmentState
	Entry domain.HistoryEntry
	// Slot, when non-nil, moves the appointment to a new slot in the same write.
	Slot *time.Time
}

// AppointmentRepository persists appointments. Implementations must enforce
// uniqueness of (doctor, slot) across non-cancelled rows at the storage layer
// and report a violation as domain.ErrConflict.
type AppointmentRepository interface {
	// FindByID returns domain.ErrNotFound when no appointment has the id.
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	// FindActiveBySlot returns the non-cancelled appointment holding the
	// doctor's slot, or domain.ErrNotFound.
	FindActiveBySlot(ctx context.Context, doctorID string, slot time.Time) (*domain.Appointment, error)
	Insert(ctx context.Context, a *domain.Appointment) error
	// ApplyTransition atomically sets the new state, appends the history entry
	// and optionally moves the slot. It returns the updated appointment, or
	// domain.ErrInvalidTransition when the stored state no longer equals From.
	ApplyTransition(ctx context.Context, u TransitionUpdate) (*domain.Appointment, error)
}
