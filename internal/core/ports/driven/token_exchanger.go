package driven

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// ExchangeRequest carries the request-time inputs of an authorization-code exchange.
type ExchangeRequest struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// TokenExchanger talks to a provider's token endpoint.
//
// Each call issues exactly one HTTP request. Authorization codes are single-use,
// so implementations must never retry on their own.
type TokenExchanger interface {
	// Exchange converts an authorization code into a token record.
	// Failures are *domain.ExchangeError values.
	Exchange(
		ctx context.Context,
		descriptor domain.ProviderDescriptor,
		credentials domain.ClientCredentials,
		req ExchangeRequest,
	) (*domain.TokenRecord, error)

	// Refresh obtains a new token record using a refresh token.
	Refresh(
		ctx context.Context,
		descriptor domain.ProviderDescriptor,
		credentials domain.ClientCredentials,
		refreshToken string,
	) (*domain.TokenRecord, error)
}
