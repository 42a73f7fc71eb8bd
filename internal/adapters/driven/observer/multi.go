package observer

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// Ensure Multi implements the interface.
var _ driven.CallbackObserver = Multi(nil)

// Multi fans an event out to several observers in order.
type Multi []driven.CallbackObserver

// NewMulti creates a Multi, skipping nil observers.
func NewMulti(observers ...driven.CallbackObserver) Multi {
	m := make(Multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

// OnCallbackEvent forwards event to every observer.
func (m Multi) OnCallbackEvent(ctx context.Context, event domain.CallbackEvent) {
	for _, o := range m {
		o.OnCallbackEvent(ctx, event)
	}
}
