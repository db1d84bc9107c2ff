package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/service"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/ptr"
)

type productHandler struct {
	reader         service.ProductReader
	writer         service.ProductWriter
	maxUploadBytes int64
}

func newProductHandler(reader service.ProductReader, writer service.ProductWriter, maxUploadBytes int64) *productHandler {
	return &productHandler{
		reader:         reader,
		writer:         writer,
		maxUploadBytes: maxUploadBytes,
	}
}

type productMutationResponse struct {
	Message string        `json:"message"`
	Product model.Product `json:"product"`
}

type listProductsResponse struct {
	Products []model.ProductView `json:"products"`
}

type getProductResponse struct {
	Product model.ProductView `json:"product"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.reader.ListProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product reader list products: %w", err)
	}

	return writeJSON(w, http.StatusOK, listProductsResponse{Products: products})
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	product, err := h.reader.GetProduct(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		return fmt.Errorf("product reader get product: %w", err)
	}

	return writeJSON(w, http.StatusOK, getProductResponse{Product: product})
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	form, err := parseProductForm(w, r, h.maxUploadBytes)
	if err != nil {
		return err
	}
	defer form.close(r)

	params, err := createProductParams(form)
	if err != nil {
		return err
	}

	product, err := h.writer.CreateProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product writer create product: %w", err)
	}

	return writeJSON(w, http.StatusCreated, productMutationResponse{
		Message: "Product created",
		Product: product,
	})
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	form, err := parseProductForm(w, r, h.maxUploadBytes)
	if err != nil {
		return err
	}
	defer form.close(r)

	params, err := updateProductParams(form)
	if err != nil {
		return err
	}

	product, err := h.writer.UpdateProduct(r.Context(), chi.URLParam(r, "idOrSlug"), params)
	if err != nil {
		return fmt.Errorf("product writer update product: %w", err)
	}

	return writeJSON(w, http.StatusOK, productMutationResponse{
		Message: "Product updated",
		Product: product,
	})
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	if err := h.writer.DeleteProduct(r.Context(), chi.URLParam(r, "idOrSlug")); err != nil {
		return fmt.Errorf("product writer delete product: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted"})
}

func createProductParams(form *productForm) (service.CreateProductParams, error) {
	price, err := form.float("price")
	if err != nil {
		return service.CreateProductParams{}, err
	}
	discount, err := form.float("discountPercent")
	if err != nil {
		return service.CreateProductParams{}, err
	}
	mainImage, err := form.file("mainImage")
	if err != nil {
		return service.CreateProductParams{}, err
	}
	gallery, err := form.fileList("galleryImages")
	if err != nil {
		return service.CreateProductParams{}, err
	}

	params := service.CreateProductParams{
		Price:           ptr.ValueOr(price, 0),
		DiscountPercent: ptr.ValueOr(discount, 0),
		Sizes:           form.list("sizes"),
		Colors:          form.list("colors"),
		AddOns:          form.list("addOns"),
		Features:        form.list("features"),
		Specifications:  form.specifications(),
		MainImage:       mainImage,
		GalleryImages:   gallery,
	}
	params.Name, _ = form.str("name")
	params.CategoryID, _ = form.str("categoryId")
	params.OfferID, _ = form.str("offerId")
	params.Description, _ = form.str("description")
	params.About, _ = form.str("about")

	return params, nil
}

func updateProductParams(form *productForm) (service.UpdateProductParams, error) {
	price, err := form.float("price")
	if err != nil {
		return service.UpdateProductParams{}, err
	}
	discount, err := form.float("discountPercent")
	if err != nil {
		return service.UpdateProductParams{}, err
	}
	isActive, err := form.bool("isActive")
	if err != nil {
		return service.UpdateProductParams{}, err
	}
	mainImage, err := form.file("mainImage")
	if err != nil {
		return service.UpdateProductParams{}, err
	}
	gallery, err := form.fileList("galleryImages")
	if err != nil {
		return service.UpdateProductParams{}, err
	}

	// an empty categoryId keeps the current category
	categoryID := form.strPtr("categoryId")
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}

	return service.UpdateProductParams{
		Name:            form.strPtr("name"),
		Price:           price,
		DiscountPercent: discount,
		CategoryID:      categoryID,
		OfferID:         form.strPtr("offerId"),
		IsActive:        isActive,
		Sizes:           form.list("sizes"),
		Colors:          form.list("colors"),
		AddOns:          form.list("addOns"),
		Features:        form.list("features"),
		Specifications:  form.specifications(),
		Description:     form.strPtr("description"),
		About:           form.strPtr("about"),
		MainImage:       mainImage,
		GalleryImages:   gallery,
	}, nil
}
