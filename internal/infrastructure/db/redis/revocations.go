package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicportal/portal/internal/core/domain"
)

// RevocationStore records logged-out session tokens until they expire.
// Key format: revoked:<token_id>
type RevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client, now: time.Now}
}

// IsRevoked reports whether the token was revoked. Any Redis failure is
// returned as ErrStorageTransient so callers can fail closed.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w: %w", domain.ErrStorageTransient, err)
	}
	return n > 0, nil
}

// Revoke marks the token revoked until the given time. Tokens that already
// expired need no entry.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w: %w", domain.ErrStorageTransient, err)
	}
	return nil
}

func (s *RevocationStore) key(tokenID string) string {
	return "revoked:" + tokenID
}
