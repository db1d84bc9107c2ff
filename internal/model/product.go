package model

import (
	"time"

	"github.com/google/uuid"
)

// Image is a product image hosted by the media store.
type Image struct {
	URL     string `json:"url"`
	AssetID string `json:"assetId"`
}

// Product is the persisted product record. Category and offer are plain references.
type Product struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	CategoryID      uuid.UUID         `json:"category"`
	Price           float64           `json:"price"`
	DiscountPercent float64           `json:"discountPercent"`
	MainImage       Image             `json:"mainImage"`
	GalleryImages   []Image           `json:"galleryImages"`
	Sizes           []string          `json:"sizes"`
	Colors          []string          `json:"colors"`
	AddOns          []string          `json:"addOns"`
	Features        []string          `json:"features"`
	Specifications  map[string]string `json:"specifications"`
	Description     string            `json:"description"`
	About           string            `json:"about"`
	OfferID         *uuid.UUID        `json:"offer"`
	IsActive        bool              `json:"isActive"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// AssetIDs returns every media asset referenced by the product, main image first.
func (p Product) AssetIDs() []string {
	ids := make([]string, 0, 1+len(p.GalleryImages))
	if p.MainImage.AssetID != "" {
		ids = append(ids, p.MainImage.AssetID)
	}
	for _, img := range p.GalleryImages {
		ids = append(ids, img.AssetID)
	}
	return ids
}

// RatingSummary holds the review statistics derived at read time.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// ProductView is a product with its category and offer resolved and its rating
// summary attached. The joined fields shadow the raw references of Product when
// encoded to JSON.
type ProductView struct {
	Product
	RatingSummary

	Category *Category `json:"category"`
	Offer    *Offer    `json:"offer"`
}
