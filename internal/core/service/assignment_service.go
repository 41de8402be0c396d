package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// AssignmentService enforces "at most one active assignment per
// (doctor, patient)". The store's uniqueness constraint is authoritative; the
// lookup before insert only short-circuits requests that are bound to fail.
type AssignmentService struct {
	users  ports.UserRepository
	repo   ports.AssignmentRepository
	events ports.EventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewAssignmentService(
	users ports.UserRepository,
	repo ports.AssignmentRepository,
	events ports.EventPublisher,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		users:  users,
		repo:   repo,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Adopt records that doctorID treats patientID.
func (s *AssignmentService) Adopt(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error) {
	if err := requireAccount(ctx, s.users, doctorID, domain.RoleDoctor); err != nil {
		return nil, fmt.Errorf("adopt: %w", err)
	}
	if err := requireAccount(ctx, s.users, patientID, domain.RolePatient); err != nil {
		return nil, fmt.Errorf("adopt: %w", err)
	}

	_, err := retryRead(ctx, func(ctx context.Context) (*domain.Assignment, error) {
		return s.repo.FindActive(ctx, doctorID, patientID)
	})
	switch {
	case err == nil:
		return nil, fmt.Errorf("adopt: %w: patient already assigned to this doctor", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("adopt: %w", err)
	}

	a := &domain.Assignment{
		ID:        uuid.NewString(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Active:    true,
		CreatedAt: s.now(),
	}
	// A concurrent adopt that won the race surfaces here as ErrConflict.
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("adopt: %w", err)
	}

	s.events.Publish(newEvent(domain.EventAssignmentCreated, a.ID, a.CreatedAt, map[string]string{
		"doctor_id":  doctorID,
		"patient_id": patientID,
	}))
	s.log.Info().Str("doctor_id", doctorID).Str("patient_id", patientID).Msg("patient adopted")
	return a, nil
}

// Release ends the active assignment for the pair. Releasing a pair that has
// no active assignment succeeds without effect.
func (s *AssignmentService) Release(ctx context.Context, doctorID, patientID string) error {
	if doctorID == "" || patientID == "" {
		return fmt.Errorf("release: %w: doctor and patient ids are required", domain.ErrValidation)
	}

	at := s.now()
	changed, err := s.repo.Deactivate(ctx, doctorID, patientID, at)
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	if !changed {
		s.log.Debug().Str("doctor_id", doctorID).Str("patient_id", patientID).Msg("release without active assignment")
		return nil
	}

	s.events.Publish(newEvent(domain.EventAssignmentReleased, doctorID+":"+patientID, at, map[string]string{
		"doctor_id":  doctorID,
		"patient_id": patientID,
	}))
	s.log.Info().Str("doctor_id", doctorID).Str("patient_id", patientID).Msg("patient released")
	return nil
}
