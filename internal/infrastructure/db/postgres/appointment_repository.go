package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

const appointmentCols = `id, doctor_id, patient_id, slot, state, reason, history, created_at, updated_at`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find appointment: %w", classify(err))
	}
	return a, err
}

func (r *AppointmentRepository) FindActiveBySlot(ctx context.Context, doctorID string, slot time.Time) (*domain.Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE doctor_id = $1 AND slot = $2 AND state <> 'cancelled'`,
		doctorID, domain.NormalizeSlot(slot)))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find appointment by slot: %w", classify(err))
	}
	return a, err
}

// Insert fails with ErrConflict when ux_appointments_doctor_slot already
// holds a non-cancelled appointment for the doctor and slot.
func (r *AppointmentRepository) Insert(ctx context.Context, a *domain.Appointment) error {
	history := a.History
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (`+appointmentCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.DoctorID, a.PatientID, domain.NormalizeSlot(a.Slot), string(a.State), a.Reason,
		history, a.CreatedAt, a.UpdatedAt)
	return mapWriteError(err)
}

// ApplyTransition updates the row only while it is still in u.From. Moving to
// a slot another appointment holds violates ux_appointments_doctor_slot.
func (r *AppointmentRepository) ApplyTransition(ctx context.Context, u ports.TransitionUpdate) (*domain.Appointment, error) {
	var slot *time.Time
	if u.Slot != nil {
		s := domain.NormalizeSlot(*u.Slot)
		slot = &s
	}

	updated, err := scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET state = $3,
		    slot = COALESCE($4::timestamptz, slot),
		    history = history || jsonb_build_array($5::jsonb),
		    updated_at = $6
		WHERE id = $1 AND state = $2
		RETURNING `+appointmentCols,
		u.AppointmentID, string(u.From), string(u.Entry.State), slot, u.Entry, u.Entry.At))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, mapWriteError(err)
	}

	if _, ferr := r.FindByID(ctx, u.AppointmentID); ferr != nil {
		return nil, ferr
	}
	return nil, fmt.Errorf("%w: appointment %s is no longer %s", domain.ErrInvalidTransition, u.AppointmentID, u.From)
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		a     domain.Appointment
		state string
	)
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Slot, &state, &a.Reason,
		&a.History, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointment %w", domain.ErrNotFound)
		}
		return nil, err
	}
	a.State = domain.AppointmentState(state)
	a.Slot = a.Slot.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}
