package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicportal/portal/internal/core/domain"
)

type AssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

func (r *AssignmentRepository) FindActive(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, active, created_at, released_at
		FROM assignments
		WHERE doctor_id = $1 AND patient_id = $2 AND active`,
		doctorID, patientID,
	).Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Active, &a.CreatedAt, &a.ReleasedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assignment %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find assignment: %w", classify(err))
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

// Insert fails with ErrConflict when ux_assignments_active_pair already
// holds an active row for the pair.
func (r *AssignmentRepository) Insert(ctx context.Context, a *domain.Assignment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assignments (id, doctor_id, patient_id, active, created_at)
		VALUES ($1, $2, $3, TRUE, $4)`,
		a.ID, a.DoctorID, a.PatientID, a.CreatedAt)
	return mapWriteError(err)
}

func (r *AssignmentRepository) Deactivate(ctx context.Context, doctorID, patientID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments SET active = FALSE, released_at = $3
		WHERE doctor_id = $1 AND patient_id = $2 AND active`,
		doctorID, patientID, at)
	if err != nil {
		return false, classify(err)
	}
	return tag.RowsAffected() > 0, nil
}
