package ports

import (
	"context"

	"github.com/clinicportal/portal/internal/core/domain"
)

// AssignmentService manages the doctor–patient relationship.
type AssignmentService interface {
	// Adopt returns domain.ErrConflict when the pair already has an active assignment.
	Adopt(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error)
	// Release is idempotent: releasing a pair with no active assignment succeeds.
	Release(ctx context.Context, doctorID, patientID string) error
}
