package driven

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// CallbackObserver receives an event at each callback state transition.
// Observers must not block; the core performs no output of its own.
type CallbackObserver interface {
	OnCallbackEvent(ctx context.Context, event domain.CallbackEvent)
}

// CallbackObserverFunc adapts a function to CallbackObserver.
type CallbackObserverFunc func(ctx context.Context, event domain.CallbackEvent)

// OnCallbackEvent calls f.
func (f CallbackObserverFunc) OnCallbackEvent(ctx context.Context, event domain.CallbackEvent) {
	f(ctx, event)
}
