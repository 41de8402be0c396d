package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

const defaultIdentityTimeout = 5 * time.Second

// IdentityResolver turns a session token into an Identity by joining the
// token's subject against the profile store. It holds no state between calls.
type IdentityResolver struct {
	tokens  *SessionTokens
	users   ports.UserRepository
	revoked ports.SessionRevoker
	timeout time.Duration
	log     zerolog.Logger
}

func NewIdentityResolver(
	tokens *SessionTokens,
	users ports.UserRepository,
	revoked ports.SessionRevoker,
	timeout time.Duration,
	log zerolog.Logger,
) *IdentityResolver {
	if timeout <= 0 {
		timeout = defaultIdentityTimeout
	}
	return &IdentityResolver{
		tokens:  tokens,
		users:   users,
		revoked: revoked,
		timeout: timeout,
		log:     log,
	}
}

type resolution struct {
	identity *domain.Identity
	err      error
}

// Resolve returns the caller's identity, or nil with a reason when the caller
// must be treated as anonymous:
//   - domain.ErrUnauthenticated: no usable token, revoked token, store failure or timeout.
//   - domain.ErrProfileMissing: a valid token whose profile no longer exists.
//
// Resolve always returns within the configured timeout, even if a backing
// store ignores context cancellation.
func (r *IdentityResolver) Resolve(ctx context.Context, credential string) (*domain.Identity, error) {
	claims, err := r.tokens.Parse(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan resolution, 1)
	go func() {
		id, err := r.lookup(ctx, claims)
		done <- resolution{identity: id, err: err}
	}()

	select {
	case res := <-done:
		return res.identity, res.err
	case <-ctx.Done():
		r.log.Warn().Str("user_id", claims.Subject).Dur("timeout", r.timeout).Msg("identity resolution timed out")
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, ctx.Err())
	}
}

func (r *IdentityResolver) lookup(ctx context.Context, claims *SessionClaims) (*domain.Identity, error) {
	revoked, err := r.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation check: %v", domain.ErrUnauthenticated, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", domain.ErrUnauthenticated)
	}

	user, err := retryRead(ctx, func(ctx context.Context) (*domain.User, error) {
		return r.users.FindByID(ctx, claims.Subject)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileMissing
		}
		return nil, fmt.Errorf("%w: load profile: %v", domain.ErrUnauthenticated, err)
	}
	return user.Identity(), nil
}
