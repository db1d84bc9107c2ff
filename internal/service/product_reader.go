package service

import (
	"context"
	"fmt"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/rating"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
)

// ProductReader serves products with their category, offer and rating summary
// resolved. Nothing it derives is persisted.
type ProductReader interface {
	ListProducts(ctx context.Context) ([]model.ProductView, error)
	GetProduct(ctx context.Context, idOrSlug string) (model.ProductView, error)
}

type productReader struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
}

func NewProductReader(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
) ProductReader {
	return &productReader{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *productReader) ListProducts(ctx context.Context) ([]model.ProductView, error) {
	views, err := s.productRepo.ListActiveProductViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list active product views: %w", err)
	}

	if views == nil {
		views = []model.ProductView{}
	}
	return views, nil
}

// GetProduct computes the rating summary from the product's reviews directly.
// rating.Summarize rounds exactly like the list query, so both report the same numbers.
func (s *productReader) GetProduct(ctx context.Context, idOrSlug string) (model.ProductView, error) {
	view, err := lookup(ctx, idOrSlug, s.productRepo.GetProductViewBySlug, s.productRepo.GetProductViewByID)
	if err != nil {
		return model.ProductView{}, fmt.Errorf("lookup product %q: %w", idOrSlug, err)
	}

	ratings, err := s.reviewRepo.ListRatingsByProduct(ctx, view.ID)
	if err != nil {
		return model.ProductView{}, fmt.Errorf("review repository list ratings by product: %w", err)
	}
	view.RatingSummary = rating.Summarize(ratings)

	return view, nil
}
