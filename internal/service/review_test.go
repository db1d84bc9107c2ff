package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/rating"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

func TestReviewService(t *testing.T) {
	f := newReaderFixture()
	p := f.addProduct("desk-1", true, testNow)
	svc := NewReviewService(f.products, f.reviews, validator.MustNewDefaultValidator(), clock.NewFake(testNow))

	review, err := svc.CreateReview(context.Background(), p.Slug, CreateReviewParams{
		UserID:  "user-1",
		Rating:  4,
		Comment: "sturdy",
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, review.ProductID)
	assert.Equal(t, testNow, review.CreatedAt)

	reviews, err := svc.ListReviews(context.Background(), p.ID.String())
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review, reviews[0])

	view, err := f.reader.GetProduct(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 4.0, view.AverageRating)
	assert.Equal(t, 1, view.TotalReviews)
}

func TestReviewService_Rejected(t *testing.T) {
	f := newReaderFixture()
	p := f.addProduct("desk-1", true, testNow)
	svc := NewReviewService(f.products, f.reviews, validator.MustNewDefaultValidator(), clock.NewFake(testNow))

	for _, r := range []int{-1, rating.MinRating - 1, rating.MaxRating + 1} {
		_, err := svc.CreateReview(context.Background(), p.Slug, CreateReviewParams{UserID: "u", Rating: r})
		assert.ErrorIs(t, err, apperr.ValidationErr, "rating %d", r)
	}
	for _, r := range []int{rating.MinRating, rating.MaxRating} {
		_, err := svc.CreateReview(context.Background(), p.Slug, CreateReviewParams{UserID: "u", Rating: r})
		assert.NoError(t, err, "rating %d", r)
	}

	_, err := svc.CreateReview(context.Background(), "missing", CreateReviewParams{UserID: "u", Rating: 3})
	assert.ErrorIs(t, err, apperr.ProductNotFoundErr)

	_, err = svc.ListReviews(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
}
