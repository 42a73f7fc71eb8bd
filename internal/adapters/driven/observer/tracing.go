package observer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// Attribute keys recorded on callback span events.
const (
	AttrInvocationID = attribute.Key("oauth.callback.invocation_id")
	AttrProvider     = attribute.Key("oauth.provider")
	AttrState        = attribute.Key("oauth.callback.state")
	AttrErrorKind    = attribute.Key("oauth.callback.error_kind")
	AttrErrorDetail  = attribute.Key("oauth.callback.error_detail")
)

// Ensure Tracing implements the interface.
var _ driven.CallbackObserver = Tracing{}

// Tracing records callback transitions as events on the span carried by ctx.
// A failed callback also marks the span as errored. Without a recording span
// the observer does nothing.
type Tracing struct{}

// OnCallbackEvent adds event to the current span.
func (Tracing) OnCallbackEvent(ctx context.Context, event domain.CallbackEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		AttrInvocationID.String(event.InvocationID),
		AttrProvider.String(event.Provider),
		AttrState.String(string(event.State)),
	}
	if event.State == domain.CallbackFailed {
		attrs = append(attrs,
			AttrErrorKind.String(string(event.Kind)),
			AttrErrorDetail.String(event.Detail),
		)
	}

	span.AddEvent("oauth.callback."+string(event.State),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(event.At),
	)

	if event.State == domain.CallbackFailed {
		span.SetStatus(codes.Error, string(event.Kind))
	}
}
