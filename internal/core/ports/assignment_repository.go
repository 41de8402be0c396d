package ports

import (
	"context"
	"time"

	"github.com/clinicportal/portal/internal/core/domain"
)

// AssignmentRepository persists doctor–patient assignments. Implementations must
// enforce uniqueness of active rows per (doctor, patient) at the storage layer
// and report a violation as domain.ErrConflict.
type AssignmentRepository interface {
	// FindActive returns domain.ErrNotFound when the pair has no active row.
	FindActive(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error)
	Insert(ctx context.Context, a *domain.Assignment) error
	// Deactivate flips the active row for the pair to inactive. It reports
	// whether a row was changed; no active row is not an error.
	Deactivate(ctx context.Context, doctorID, patientID string, at time.Time) (bool, error)
}
