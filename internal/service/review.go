package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/rating"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

type CreateReviewParams struct {
	UserID  string `validate:"required"`
	Rating  int
	Comment string `validate:"max=2000"`
}

type ReviewService interface {
	CreateReview(ctx context.Context, productIDOrSlug string, params CreateReviewParams) (model.Review, error)
	ListReviews(ctx context.Context, productIDOrSlug string) ([]model.Review, error)
}

type reviewService struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	validator   validator.Validator
	clock       clock.Clock
}

func NewReviewService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	validator validator.Validator,
	clk clock.Clock,
) ReviewService {
	return &reviewService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		validator:   validator,
		clock:       clk,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, productIDOrSlug string, params CreateReviewParams) (model.Review, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Review{}, err
	}
	if !rating.Valid(params.Rating) {
		return model.Review{}, apperr.ValidationErr.WithMsg(
			fmt.Sprintf("rating must be between %d and %d", rating.MinRating, rating.MaxRating))
	}

	product, err := lookup(ctx, productIDOrSlug, s.productRepo.GetProductBySlug, s.productRepo.GetProductByID)
	if err != nil {
		return model.Review{}, fmt.Errorf("lookup product %q: %w", productIDOrSlug, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Review{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	review := model.Review{
		ID:        id,
		ProductID: product.ID,
		UserID:    params.UserID,
		Rating:    params.Rating,
		Comment:   params.Comment,
		CreatedAt: s.clock.Now(),
	}

	if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
		return model.Review{}, fmt.Errorf("review repository create review: %w", err)
	}

	return review, nil
}

func (s *reviewService) ListReviews(ctx context.Context, productIDOrSlug string) ([]model.Review, error) {
	product, err := lookup(ctx, productIDOrSlug, s.productRepo.GetProductBySlug, s.productRepo.GetProductByID)
	if err != nil {
		return nil, fmt.Errorf("lookup product %q: %w", productIDOrSlug, err)
	}

	reviews, err := s.reviewRepo.ListReviewsByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("review repository list reviews by product: %w", err)
	}

	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}
