package service

import (
	"context"
	"errors"

	"github.com/clinicportal/portal/internal/core/domain"
)

// retryRead runs a read-only store call and repeats it once if the first
// attempt failed with a transient storage error. Mutating calls must never go
// through here: a retried write could apply twice.
func retryRead[T any](ctx context.Context, read func(context.Context) (T, error)) (T, error) {
	v, err := read(ctx)
	if err == nil || !errors.Is(err, domain.ErrStorageTransient) || ctx.Err() != nil {
		return v, err
	}
	return read(ctx)
}
