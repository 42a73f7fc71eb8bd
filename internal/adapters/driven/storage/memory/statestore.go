package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
// Expired entries are swept on every Save.
type StateStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingAuthorization
	now     func() time.Time
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		pending: make(map[string]domain.PendingAuthorization),
		now:     time.Now,
	}
}

// Save records a pending authorization.
func (s *StateStore) Save(_ context.Context, pending domain.PendingAuthorization) error {
	if pending.State == "" || pending.Provider == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for state, p := range s.pending {
		if !now.Before(p.ExpiresAt) {
			delete(s.pending, state)
		}
	}
	s.pending[pending.State] = pending
	return nil
}

// Consume removes and returns the pending authorization for state.
func (s *StateStore) Consume(_ context.Context, state string) (*domain.PendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[state]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.pending, state)

	if !s.now().Before(pending.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	return &pending, nil
}

// size returns the number of entries held, including expired ones not yet swept.
func (s *StateStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
