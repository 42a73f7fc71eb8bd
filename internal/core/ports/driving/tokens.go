package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// ConnectionStatus summarises one provider's state without exposing tokens.
type ConnectionStatus struct {
	Provider    string     `json:"provider"`
	DisplayName string     `json:"display_name"`
	Configured  bool       `json:"configured"`
	Connected   bool       `json:"connected"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Refreshable bool       `json:"refreshable"`
}

// TokenService is the token read surface exposed to the rest of the application.
type TokenService interface {
	// ListProviders returns the providers currently holding a token record.
	ListProviders(ctx context.Context) ([]string, error)

	// Get returns the token record for provider.
	// Returns domain.ErrNotFound if none is held.
	Get(ctx context.Context, provider string) (*domain.TokenRecord, error)

	// Remove disconnects provider by deleting its token record.
	Remove(ctx context.Context, provider string) error

	// Refresh replaces the provider's record using its refresh token.
	// On failure the stored record is left untouched.
	Refresh(ctx context.Context, provider string) (*domain.TokenRecord, error)

	// Connections reports the status of every registered provider.
	Connections(ctx context.Context) ([]ConnectionStatus, error)
}
