package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/mq"
)

// ReviewCounter counts reviews still pointing at a product.
type ReviewCounter interface {
	CountReviewsByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

// Service consumes product lifecycle events.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	reviews    ReviewCounter
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	reviews ReviewCounter,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
		reviews:    reviews,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.RegisterHandlers(); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) RegisterHandlers() error {
	handlers := map[string]mq.HandlerFunc{
		TopicProductCreated: jsonHandler(s.handleProductChangedEvent),
		TopicProductUpdated: jsonHandler(s.handleProductChangedEvent),
		TopicProductDeleted: jsonHandler(s.handleProductDeletedEvent),
	}

	for topic, h := range handlers {
		if err := s.mqConsumer.RegisterHandler(topic, h); err != nil {
			return fmt.Errorf("register %s event handler: %w", topic, err)
		}
	}

	return nil
}

func jsonHandler[E any](handle func(ctx context.Context, topic string, ev E) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev E
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, topic, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
