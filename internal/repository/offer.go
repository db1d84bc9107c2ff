package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
)

type OfferRepository interface {
	WithDB(db db.DB) OfferRepository
	CreateOffer(ctx context.Context, offer model.Offer) error
	ListOffers(ctx context.Context) ([]model.Offer, error)
}

type offerRepository struct {
	db db.DB
}

func NewOfferRepository(db db.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r offerRepository) WithDB(db db.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r offerRepository) CreateOffer(ctx context.Context, offer model.Offer) error {
	discount, err := toNumeric(offer.DiscountPercent)
	if err != nil {
		return fmt.Errorf("discount percent: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO offers (id, title, description, discount_percent, is_active, created_at)
		VALUES (@id, @title, @description, @discount_percent, @is_active, @created_at)
	`, pgx.NamedArgs{
		"id":               offer.ID,
		"title":            offer.Title,
		"description":      offer.Description,
		"discount_percent": discount,
		"is_active":        offer.IsActive,
		"created_at":       offer.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}

	return nil
}

func (r offerRepository) ListOffers(ctx context.Context) ([]model.Offer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, discount_percent::float8, is_active, created_at
		FROM offers
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	offers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Offer, error) {
		var o model.Offer
		err := row.Scan(&o.ID, &o.Title, &o.Description, &o.DiscountPercent, &o.IsActive, &o.CreatedAt)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect offers: %w", err)
	}

	return offers, nil
}
