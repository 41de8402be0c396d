package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/access"
	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// Verdict is the gateway's answer for one request.
type Verdict struct {
	access.Decision
	State access.State
	// Identity is nil when the caller is anonymous.
	Identity *domain.Identity
	// Reason is why the caller is anonymous or, for a resolved caller, why the
	// path was refused (domain.ErrUnauthorized). Nil when the request continues
	// with a resolved identity.
	Reason error
}

// Gateway resolves the caller and applies the access policy. It is invoked
// once per inbound request and keeps nothing between requests.
type Gateway struct {
	resolver ports.IdentityResolver
	log      zerolog.Logger
}

func NewGateway(resolver ports.IdentityResolver, log zerolog.Logger) *Gateway {
	return &Gateway{resolver: resolver, log: log}
}

// Evaluate decides whether the holder of credential may reach requestPath.
func (g *Gateway) Evaluate(ctx context.Context, credential, requestPath string) Verdict {
	id, err := g.resolver.Resolve(ctx, credential)
	if err != nil {
		id = nil
		if credential != "" {
			g.log.Debug().Err(err).Str("path", requestPath).Msg("session resolved as anonymous")
		}
	}

	state := access.StateOf(id)
	decision := access.Evaluate(state, requestPath)
	if id != nil && !decision.IsContinue() {
		err = fmt.Errorf("%w: %s may not reach %s", domain.ErrUnauthorized, state, requestPath)
	}
	return Verdict{
		Decision: decision,
		State:    state,
		Identity: id,
		Reason:   err,
	}
}
