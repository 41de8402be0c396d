package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationSet remembers revoked token ids until they would have expired.
type RevocationSet struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocationSet() *RevocationSet {
	return &RevocationSet{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *RevocationSet) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *RevocationSet) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[tokenID] = until
	return nil
}
