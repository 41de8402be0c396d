package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicportal/portal/internal/core/domain"
)

// unreachable returns a client pointed at a port nothing listens on.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRevocationStore_Key(t *testing.T) {
	s := NewRevocationStore(unreachable(t))
	if got := s.key("abc"); got != "revoked:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRevocationStore_ExpiredTokenNeedsNoEntry(t *testing.T) {
	s := NewRevocationStore(unreachable(t))
	if err := s.Revoke(context.Background(), "abc", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("expected no round trip for an expired token, got %v", err)
	}
}

func TestRevocationStore_UnreachableIsTransient(t *testing.T) {
	s := NewRevocationStore(unreachable(t))

	_, err := s.IsRevoked(context.Background(), "abc")
	if !errors.Is(err, domain.ErrStorageTransient) {
		t.Fatalf("expected ErrStorageTransient, got %v", err)
	}
	err = s.Revoke(context.Background(), "abc", time.Now().Add(time.Minute))
	if !errors.Is(err, domain.ErrStorageTransient) {
		t.Fatalf("expected ErrStorageTransient, got %v", err)
	}
}
