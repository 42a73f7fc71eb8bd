package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
// Records are deep-copied on the way in and out, so a caller holding a record
// can never observe a later Put through it.
type TokenStore struct {
	mu      sync.RWMutex
	records map[string]domain.TokenRecord
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		records: make(map[string]domain.TokenRecord),
	}
}

// Put stores or replaces the record for provider.
func (s *TokenStore) Put(_ context.Context, provider string, record domain.TokenRecord) error {
	if provider == "" || record.AccessToken == "" {
		return domain.ErrInvalidInput
	}
	clone := record.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[provider] = clone
	return nil
}

// Get retrieves the record for provider.
func (s *TokenStore) Get(_ context.Context, provider string) (*domain.TokenRecord, error) {
	s.mu.RLock()
	record, ok := s.records[provider]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := record.Clone()
	return &clone, nil
}

// Remove deletes the record for provider.
func (s *TokenStore) Remove(_ context.Context, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, provider)
	return nil
}

// ListProviders returns the sorted names of providers holding a record.
func (s *TokenStore) ListProviders(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.records))
	for provider := range s.records {
		result = append(result, provider)
	}
	sort.Strings(result)
	return result, nil
}
