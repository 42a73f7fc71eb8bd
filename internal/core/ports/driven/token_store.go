package driven

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// TokenStore holds the most recent token record per provider.
//
// Each provider's record is an independent unit of consistency: Put replaces
// it atomically and readers never observe a partially written record.
// Concurrent puts for the same provider leave exactly one of the records.
type TokenStore interface {
	// Put stores record under provider, replacing any prior record.
	// Returns domain.ErrInvalidInput if the record has no access token.
	Put(ctx context.Context, provider string, record domain.TokenRecord) error

	// Get retrieves the record for provider.
	// Returns domain.ErrNotFound if none is held.
	Get(ctx context.Context, provider string) (*domain.TokenRecord, error)

	// Remove deletes the record for provider. Removing an absent record is not an error.
	Remove(ctx context.Context, provider string) error

	// ListProviders returns the sorted names of providers currently holding a record.
	ListProviders(ctx context.Context) ([]string, error)
}
