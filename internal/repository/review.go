package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
)

type ReviewRepository interface {
	WithDB(db db.DB) ReviewRepository
	CreateReview(ctx context.Context, review model.Review) error
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
	ListRatingsByProduct(ctx context.Context, productID uuid.UUID) ([]int, error)
	CountReviewsByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

type reviewRepository struct {
	db db.DB
}

func NewReviewRepository(db db.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r reviewRepository) WithDB(db db.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r reviewRepository) CreateReview(ctx context.Context, review model.Review) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES (@id, @product_id, @user_id, @rating, @comment, @created_at)
	`, pgx.NamedArgs{
		"id":         review.ID,
		"product_id": review.ProductID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
		"comment":    review.Comment,
		"created_at": review.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

func (r reviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Review, error) {
		var rv model.Review
		err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect reviews: %w", err)
	}

	return reviews, nil
}

func (r reviewRepository) ListRatingsByProduct(ctx context.Context, productID uuid.UUID) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT rating FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("collect ratings: %w", err)
	}

	return ratings, nil
}

func (r reviewRepository) CountReviewsByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}

	return n, nil
}
