package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

type CreateOfferParams struct {
	Title           string  `validate:"required,notblank,max=200"`
	Description     string  `validate:"max=2000"`
	DiscountPercent float64 `validate:"gte=0,lte=100"`
	// IsActive defaults to true when nil.
	IsActive *bool
}

type OfferService interface {
	CreateOffer(ctx context.Context, params CreateOfferParams) (model.Offer, error)
	ListOffers(ctx context.Context) ([]model.Offer, error)
}

type offerService struct {
	offerRepo repository.OfferRepository
	validator validator.Validator
	clock     clock.Clock
}

func NewOfferService(
	offerRepo repository.OfferRepository,
	validator validator.Validator,
	clk clock.Clock,
) OfferService {
	return &offerService{
		offerRepo: offerRepo,
		validator: validator,
		clock:     clk,
	}
}

func (s *offerService) CreateOffer(ctx context.Context, params CreateOfferParams) (model.Offer, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Offer{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Offer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	offer := model.Offer{
		ID:              id,
		Title:           params.Title,
		Description:     params.Description,
		DiscountPercent: params.DiscountPercent,
		IsActive:        params.IsActive == nil || *params.IsActive,
		CreatedAt:       s.clock.Now(),
	}

	if err := s.offerRepo.CreateOffer(ctx, offer); err != nil {
		return model.Offer{}, fmt.Errorf("offer repository create offer: %w", err)
	}

	return offer, nil
}

func (s *offerService) ListOffers(ctx context.Context) ([]model.Offer, error) {
	offers, err := s.offerRepo.ListOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("offer repository list offers: %w", err)
	}

	if offers == nil {
		offers = []model.Offer{}
	}
	return offers, nil
}
