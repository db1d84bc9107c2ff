package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/config"
)

var tracer = otel.Tracer("internal/storage/mq")

// newKafkaTracer builds kotel hooks for one client. It reads the global
// provider and propagator, so it must run after telemetry is initialized.
func newKafkaTracer(cfg config.Kafka, group string) *kotel.Tracer {
	opts := []kotel.TracerOpt{
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kotel.ClientID(cfg.ClientID))
	}
	if group != "" {
		opts = append(opts, kotel.ConsumerGroup(group))
	}

	return kotel.NewTracer(opts...)
}
