package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/auth"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/service"
)

type catalogHandler struct {
	categories service.CategoryService
	offers     service.OfferService
	reviews    service.ReviewService
}

func newCatalogHandler(
	categories service.CategoryService,
	offers service.OfferService,
	reviews service.ReviewService,
) *catalogHandler {
	return &catalogHandler{
		categories: categories,
		offers:     offers,
		reviews:    reviews,
	}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	Category model.Category `json:"category"`
}

type listCategoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

func (h *catalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) error {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	category, err := h.categories.CreateCategory(r.Context(), service.CreateCategoryParams{Name: req.Name})
	if err != nil {
		return fmt.Errorf("category service create category: %w", err)
	}

	return writeJSON(w, http.StatusCreated, categoryResponse{Category: category})
}

func (h *catalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		return fmt.Errorf("category service list categories: %w", err)
	}

	return writeJSON(w, http.StatusOK, listCategoriesResponse{Categories: categories})
}

type createOfferRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DiscountPercent float64 `json:"discountPercent"`
	IsActive        *bool   `json:"isActive"`
}

type offerResponse struct {
	Offer model.Offer `json:"offer"`
}

type listOffersResponse struct {
	Offers []model.Offer `json:"offers"`
}

func (h *catalogHandler) CreateOffer(w http.ResponseWriter, r *http.Request) error {
	var req createOfferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	offer, err := h.offers.CreateOffer(r.Context(), service.CreateOfferParams{
		Title:           req.Title,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return fmt.Errorf("offer service create offer: %w", err)
	}

	return writeJSON(w, http.StatusCreated, offerResponse{Offer: offer})
}

func (h *catalogHandler) ListOffers(w http.ResponseWriter, r *http.Request) error {
	offers, err := h.offers.ListOffers(r.Context())
	if err != nil {
		return fmt.Errorf("offer service list offers: %w", err)
	}

	return writeJSON(w, http.StatusOK, listOffersResponse{Offers: offers})
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	Review model.Review `json:"review"`
}

type listReviewsResponse struct {
	Reviews []model.Review `json:"reviews"`
}

func (h *catalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) error {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return apperr.UnauthorizedErr
	}

	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	review, err := h.reviews.CreateReview(r.Context(), chi.URLParam(r, "idOrSlug"), service.CreateReviewParams{
		UserID:  id.Subject,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return fmt.Errorf("review service create review: %w", err)
	}

	return writeJSON(w, http.StatusCreated, reviewResponse{Review: review})
}

func (h *catalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) error {
	reviews, err := h.reviews.ListReviews(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		return fmt.Errorf("review service list reviews: %w", err)
	}

	return writeJSON(w, http.StatusOK, listReviewsResponse{Reviews: reviews})
}
