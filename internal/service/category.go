package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/slug"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

type CreateCategoryParams struct {
	Name string `validate:"required,notblank,max=120"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	validator    validator.Validator
	clock        clock.Clock
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	validator validator.Validator,
	clk clock.Clock,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		validator:    validator,
		clock:        clk,
	}
}

// CreateCategory derives the slug from the name without a token, so two
// categories whose names fold to the same slug conflict.
func (s *categoryService) CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Category{}, err
	}

	categorySlug := slug.Base(params.Name)
	if categorySlug == "" {
		return model.Category{}, apperr.ValidationErr.WithMsg("name must contain letters or digits")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Category{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	category := model.Category{
		ID:        id,
		Name:      params.Name,
		Slug:      categorySlug,
		CreatedAt: s.clock.Now(),
	}

	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return model.Category{}, apperr.CategoryExistsErr.WrapParent(err)
		}
		return model.Category{}, fmt.Errorf("category repository create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list categories: %w", err)
	}

	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}
