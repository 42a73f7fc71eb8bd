package observer

import (
	"context"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/logger"
)

// Ensure Logging implements the interface.
var _ driven.CallbackObserver = Logging{}

// Logging writes callback transitions through the logger package.
// Failures are logged at error level, everything else at debug.
type Logging struct{}

// OnCallbackEvent logs event.
func (Logging) OnCallbackEvent(_ context.Context, event domain.CallbackEvent) {
	fields := logger.Fields{
		"invocation": event.InvocationID,
		"provider":   event.Provider,
		"state":      string(event.State),
	}

	switch event.State {
	case domain.CallbackFailed:
		fields["kind"] = string(event.Kind)
		if event.Detail != "" {
			fields["detail"] = event.Detail
		}
		logger.Error("oauth callback %s", fields)
	case domain.CallbackStored:
		logger.Info("oauth callback %s", fields)
	default:
		logger.Debug("oauth callback %s", fields)
	}
}
