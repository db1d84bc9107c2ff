package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo, validator.MustNewDefaultValidator(), clock.NewFake(testNow))

	category, err := svc.CreateCategory(context.Background(), CreateCategoryParams{Name: "Wall Décor"})
	require.NoError(t, err)
	assert.Equal(t, "wall-decor", category.Slug)
	assert.Equal(t, testNow, category.CreatedAt)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCategoryService_CreateCategory_Rejected(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo(), validator.MustNewDefaultValidator(), clock.NewFake(testNow))

	for _, name := range []string{"", "  ", "!!!"} {
		_, err := svc.CreateCategory(context.Background(), CreateCategoryParams{Name: name})
		assert.ErrorIs(t, err, apperr.ValidationErr, "name %q", name)
	}
}

func TestCategoryService_CreateCategory_Duplicate(t *testing.T) {
	repo := newFakeCategoryRepo()
	repo.createErr = &pgconn.PgError{Code: "23505"}
	svc := NewCategoryService(repo, validator.MustNewDefaultValidator(), clock.NewFake(testNow))

	_, err := svc.CreateCategory(context.Background(), CreateCategoryParams{Name: "Lamps"})
	assert.ErrorIs(t, err, apperr.CategoryExistsErr)
}

func TestCategoryService_ListCategories_Empty(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo(), validator.MustNewDefaultValidator(), clock.NewFake(testNow))

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}
