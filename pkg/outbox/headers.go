// Package outbox carries request context through outbox messages into Kafka records.
package outbox

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/storefront-catalog/pkg/correlationid"
)

const (
	HeaderContentType = "content-type"
	ContentTypeJSON   = "application/json"
)

// BuildHeaders returns the headers stored with an outbox message: the trace
// context and correlation id of ctx plus the payload content type.
func BuildHeaders(ctx context.Context) map[string]string {
	headers := propagation.MapCarrier{
		HeaderContentType: ContentTypeJSON,
	}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	if correlationID, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = correlationID
	}

	return headers
}

// RecordHeader returns the value of the first header of rec named key.
func RecordHeader(rec *kgo.Record, key string) (string, bool) {
	for _, h := range rec.Headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

// InjectCorrelationIDFromRecord restores the producer's correlation id into ctx.
func InjectCorrelationIDFromRecord(ctx context.Context, rec *kgo.Record) context.Context {
	if correlationID, ok := RecordHeader(rec, correlationid.Header); ok {
		return correlationid.NewContext(ctx, correlationID)
	}
	return ctx
}
