package ports

import (
	"context"
	"time"
)

// SessionRevoker tracks session tokens that were explicitly ended before expiry.
type SessionRevoker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Revoke remembers tokenID until the token would have expired on its own.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}
