package ports

import (
	"context"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
)

// BookInput carries the fields needed to book an appointment.
type BookInput struct {
	DoctorID  string
	PatientID string
	Slot      time.Time
	Reason    string
}

// TransitionInput carries a requested state change.
type TransitionInput struct {
	AppointmentID string
	NewState      domain.AppointmentState
	Note          string
	// Slot is required when NewState is rescheduled and ignored otherwise.
	Slot *time.Time
}

// BookingService enforces the doctor scheduling invariant and the appointment
// state machine.
type BookingService interface {
	Book(ctx context.Context, in BookInput) (*domain.Appointment, error)
	Transition(ctx context.Context, in TransitionInput) (*domain.Appointment, error)
	Get(ctx context.Context, appointmentID string) (*domain.Appointment, error)
}
