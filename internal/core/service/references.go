package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// requireAccount checks that id references an existing account holding role.
// A missing or mismatched reference is a validation error.
func requireAccount(ctx context.Context, users ports.UserRepository, id string, role domain.Role) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", domain.ErrValidation, role)
	}
	user, err := retryRead(ctx, func(ctx context.Context) (*domain.User, error) {
		return users.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s %s does not exist", domain.ErrValidation, role, id)
		}
		return err
	}
	if user.Role != role {
		return fmt.Errorf("%w: account %s is not a %s", domain.ErrValidation, id, role)
	}
	return nil
}

func newEvent(t domain.EventType, aggregateID string, at time.Time, payload map[string]string) domain.Event {
	return domain.Event{
		ID:          uuid.NewString(),
		Type:        t,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  at,
	}
}
