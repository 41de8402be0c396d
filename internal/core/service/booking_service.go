package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// BookingService enforces the doctor scheduling invariant (one non-cancelled
// appointment per doctor and slot) and the appointment state machine.
//
// Slots conflict only on exact equality; there is no duration model.
type BookingService struct {
	users  ports.UserRepository
	repo   ports.AppointmentRepository
	events ports.EventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewBookingService(
	users ports.UserRepository,
	repo ports.AppointmentRepository,
	events ports.EventPublisher,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		users:  users,
		repo:   repo,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Book creates a pending appointment for the doctor's slot.
func (s *BookingService) Book(ctx context.Context, in ports.BookInput) (*domain.Appointment, error) {
	now := s.now()
	slot, err := s.futureSlot(in.Slot, now)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	if err := s.checkParties(ctx, in.DoctorID, in.PatientID); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	if err := s.ensureSlotFree(ctx, in.DoctorID, slot, ""); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	reason := strings.TrimSpace(in.Reason)
	appt := &domain.Appointment{
		ID:        uuid.NewString(),
		DoctorID:  in.DoctorID,
		PatientID: in.PatientID,
		Slot:      slot,
		State:     domain.AppointmentPending,
		Reason:    reason,
		History: []domain.HistoryEntry{
			{State: domain.AppointmentPending, Note: reason, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// A concurrent booking that took the slot first surfaces here as ErrConflict.
	if err := s.repo.Insert(ctx, appt); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	s.events.Publish(newEvent(domain.EventAppointmentBooked, appt.ID, now, map[string]string{
		"doctor_id":  appt.DoctorID,
		"patient_id": appt.PatientID,
		"slot":       appt.Slot.Format(time.RFC3339Nano),
	}))
	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", appt.DoctorID).
		Time("slot", appt.Slot).
		Msg("appointment booked")
	return appt, nil
}

// Transition moves an appointment through its state machine and appends the
// change to its history. Rescheduling must pass the same checks as booking
// against the new slot.
func (s *BookingService) Transition(ctx context.Context, in ports.TransitionInput) (*domain.Appointment, error) {
	if !in.NewState.Valid() {
		return nil, fmt.Errorf("transition: %w: unknown state %q", domain.ErrValidation, in.NewState)
	}

	appt, err := s.Get(ctx, in.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	if !appt.State.CanTransitionTo(in.NewState) {
		return nil, fmt.Errorf("transition: %w: %s to %s", domain.ErrInvalidTransition, appt.State, in.NewState)
	}

	now := s.now()
	update := ports.TransitionUpdate{
		AppointmentID: appt.ID,
		From:          appt.State,
		Entry: domain.HistoryEntry{
			State: in.NewState,
			Note:  strings.TrimSpace(in.Note),
			At:    now,
		},
	}

	if in.NewState == domain.AppointmentRescheduled {
		if in.Slot == nil {
			return nil, fmt.Errorf("transition: %w: rescheduling requires a new slot", domain.ErrValidation)
		}
		slot, err := s.futureSlot(*in.Slot, now)
		if err != nil {
			return nil, fmt.Errorf("transition: %w", err)
		}
		if err := s.checkParties(ctx, appt.DoctorID, appt.PatientID); err != nil {
			return nil, fmt.Errorf("transition: %w", err)
		}
		if err := s.ensureSlotFree(ctx, appt.DoctorID, slot, appt.ID); err != nil {
			return nil, fmt.Errorf("transition: %w", err)
		}
		update.Slot = &slot
	}

	updated, err := s.repo.ApplyTransition(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	s.events.Publish(newEvent(domain.EventAppointmentStateChanged, updated.ID, now, map[string]string{
		"from":       string(appt.State),
		"to":         string(updated.State),
		"doctor_id":  updated.DoctorID,
		"patient_id": updated.PatientID,
	}))
	s.log.Info().
		Str("appointment_id", updated.ID).
		Str("from", string(appt.State)).
		Str("to", string(updated.State)).
		Msg("appointment transitioned")
	return updated, nil
}

// Get loads an appointment by id.
func (s *BookingService) Get(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	if appointmentID == "" {
		return nil, fmt.Errorf("%w: appointment id is required", domain.ErrValidation)
	}
	return retryRead(ctx, func(ctx context.Context) (*domain.Appointment, error) {
		return s.repo.FindByID(ctx, appointmentID)
	})
}

func (s *BookingService) futureSlot(slot, now time.Time) (time.Time, error) {
	if slot.IsZero() {
		return time.Time{}, fmt.Errorf("%w: slot is required", domain.ErrValidation)
	}
	slot = domain.NormalizeSlot(slot)
	if !slot.After(now) {
		return time.Time{}, fmt.Errorf("%w: slot must be in the future", domain.ErrValidation)
	}
	return slot, nil
}

func (s *BookingService) checkParties(ctx context.Context, doctorID, patientID string) error {
	if err := requireAccount(ctx, s.users, doctorID, domain.RoleDoctor); err != nil {
		return err
	}
	return requireAccount(ctx, s.users, patientID, domain.RolePatient)
}

// ensureSlotFree is the advisory pre-check. exceptID lets an appointment keep
// or move within its own slot while rescheduling.
func (s *BookingService) ensureSlotFree(ctx context.Context, doctorID string, slot time.Time, exceptID string) error {
	holder, err := retryRead(ctx, func(ctx context.Context) (*domain.Appointment, error) {
		return s.repo.FindActiveBySlot(ctx, doctorID, slot)
	})
	switch {
	case err == nil && holder.ID != exceptID:
		return fmt.Errorf("%w: slot already taken", domain.ErrConflict)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}
