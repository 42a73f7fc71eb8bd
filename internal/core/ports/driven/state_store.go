package driven

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// StateStore keeps pending authorizations between the redirect to the
// provider and the provider's callback. Entries are single-use and expire.
type StateStore interface {
	// Save records a pending authorization keyed by its state value.
	Save(ctx context.Context, pending domain.PendingAuthorization) error

	// Consume removes and returns the pending authorization for state.
	// Returns domain.ErrNotFound if the state is unknown, already used, or expired.
	Consume(ctx context.Context, state string) (*domain.PendingAuthorization, error)
}
