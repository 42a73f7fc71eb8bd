package driving

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// CallbackService handles the provider's redirect back to the application.
type CallbackService interface {
	// HandleCallback validates the callback, exchanges the code, stores the
	// token, and returns the redirect the caller should follow.
	// It never returns an error: every failure becomes a failed result.
	HandleCallback(ctx context.Context, provider string, params domain.CallbackParams) domain.CallbackOutcome
}
