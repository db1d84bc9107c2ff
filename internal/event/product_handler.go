package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

func (s *Service) handleProductChangedEvent(ctx context.Context, topic string, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "handling product changed event",
		slog.String("topic", topic),
		slog.String("product_id", ev.ProductID),
		slog.String("slug", ev.Slug),
	)
	return nil
}

// handleProductDeletedEvent reports reviews left behind by a deleted product.
// Reviews are never removed with their product, so this is where a cleanup
// job would hook in.
func (s *Service) handleProductDeletedEvent(ctx context.Context, _ string, ev ProductDeletedEvent) error {
	productID, err := uuid.Parse(ev.ProductID)
	if err != nil {
		return fmt.Errorf("parse product id %q: %w", ev.ProductID, err)
	}

	n, err := s.reviews.CountReviewsByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("count reviews by product: %w", err)
	}

	if n > 0 {
		s.logger.WarnContext(ctx, "deleted product left dangling reviews",
			slog.String("product_id", ev.ProductID),
			slog.Int("review_count", n),
		)
	}

	return nil
}
