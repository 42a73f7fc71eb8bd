package driving

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// AuthorizationService starts OAuth authorizations.
type AuthorizationService interface {
	// Start builds the provider authorization URL for provider, issuing and
	// persisting an anti-forgery state when a state store is configured.
	// Returns domain.ErrUnknownProvider or a *domain.ConfigError wrapping
	// domain.ErrMissingClientID.
	Start(ctx context.Context, provider string) (*domain.AuthorizationRequest, error)
}
