package ports

import (
	"context"

	"github.com/clinicportal/portal/internal/core/domain"
)

// IdentityResolver turns a session credential into an identity. A nil identity
// means anonymous; the error then says why.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*domain.Identity, error)
}
