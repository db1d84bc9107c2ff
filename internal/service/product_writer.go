package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/event"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/media"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/payload"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/slug"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

type CreateProductParams struct {
	Name            string  `validate:"required,notblank"`
	Price           float64 `validate:"gt=0"`
	DiscountPercent float64 `validate:"gte=0,lte=100"`
	CategoryID      string  `validate:"required"`
	// OfferID is optional; empty means no offer.
	OfferID string

	Sizes          payload.RawList
	Colors         payload.RawList
	AddOns         payload.RawList
	Features       payload.RawList
	Specifications payload.RawSpecifications

	Description string
	About       string

	MainImage     *media.File `validate:"required"`
	GalleryImages []media.File
}

// UpdateProductParams holds a partial update. Nil pointers and absent raw
// fields leave the stored value untouched.
type UpdateProductParams struct {
	Name            *string
	Price           *float64 `validate:"omitempty,gte=0"`
	DiscountPercent *float64 `validate:"omitempty,gte=0,lte=100"`
	CategoryID      *string
	// OfferID set to an empty string clears the offer.
	OfferID  *string
	IsActive *bool

	Sizes          payload.RawList
	Colors         payload.RawList
	AddOns         payload.RawList
	Features       payload.RawList
	Specifications payload.RawSpecifications

	Description *string
	About       *string

	MainImage *media.File
	// GalleryImages replaces the whole gallery when non-empty.
	GalleryImages []media.File
}

// ProductWriter creates, updates and deletes products and keeps the media host
// free of assets no product references.
type ProductWriter interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, idOrSlug string, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, idOrSlug string) error
}

type productWriter struct {
	logger        *slog.Logger
	db            db.DB
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	outboxMsgRepo repository.OutboxMsgRepository
	mediaStore    media.Store
	validator     validator.Validator
	clock         clock.Clock
	slugs         *slug.Generator
}

func NewProductWriter(
	logger *slog.Logger,
	db db.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	mediaStore media.Store,
	validator validator.Validator,
	clk clock.Clock,
) ProductWriter {
	return &productWriter{
		logger:        logger.With(slog.String("component", "product_writer")),
		db:            db,
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		outboxMsgRepo: outboxMsgRepo,
		mediaStore:    mediaStore,
		validator:     validator,
		clock:         clk,
		slugs:         slug.NewGenerator(clk),
	}
}

func (s *productWriter) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}

	specs, err := params.Specifications.Normalize()
	if err != nil {
		return model.Product{}, apperr.ValidationErr.WithMsg("invalid specifications").WrapParent(err)
	}

	offerID, err := parseOfferID(params.OfferID)
	if err != nil {
		return model.Product{}, err
	}

	categoryID, err := s.resolveCategory(ctx, params.CategoryID)
	if err != nil {
		return model.Product{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	// Everything below touches the media host; inputs are fully validated by now
	// so a rejected request never leaves uploads behind.
	var uploaded []string
	mainImage, err := s.mediaStore.Upload(ctx, *params.MainImage)
	if err != nil {
		return model.Product{}, fmt.Errorf("media store upload main image: %w", err)
	}
	uploaded = append(uploaded, mainImage.AssetID)

	gallery, err := s.uploadAll(ctx, params.GalleryImages)
	for _, img := range gallery {
		uploaded = append(uploaded, img.AssetID)
	}
	if err != nil {
		s.discardUploads(ctx, uploaded)
		return model.Product{}, fmt.Errorf("media store upload gallery images: %w", err)
	}

	now := s.clock.Now()
	product := model.Product{
		ID:              id,
		Name:            params.Name,
		Slug:            s.slugs.Generate(params.Name),
		CategoryID:      categoryID,
		Price:           params.Price,
		DiscountPercent: params.DiscountPercent,
		MainImage:       mainImage,
		GalleryImages:   gallery,
		Sizes:           params.Sizes.Normalize(),
		Colors:          params.Colors.Normalize(),
		AddOns:          params.AddOns.Normalize(),
		Features:        params.Features.Normalize(),
		Specifications:  specs,
		Description:     params.Description,
		About:           params.About,
		OfferID:         offerID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return createOutboxMsg(ctx, s.outboxMsgRepo.WithDB(db), event.TopicProductCreated, product.ID.String(), changedEvent(product))
	}); err != nil {
		s.discardUploads(ctx, uploaded)
		if isInvalidCategory(err) {
			return model.Product{}, apperr.InvalidReferenceErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productWriter) UpdateProduct(ctx context.Context, idOrSlug string, params UpdateProductParams) (model.Product, error) {
	product, err := lookup(ctx, idOrSlug, s.productRepo.GetProductBySlug, s.productRepo.GetProductByID)
	if err != nil {
		return model.Product{}, fmt.Errorf("lookup product %q: %w", idOrSlug, err)
	}

	// An empty name keeps the current one, like an empty categoryId.
	if params.Name != nil && *params.Name == "" {
		params.Name = nil
	}
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return model.Product{}, apperr.ValidationErr.WithMsg("name must not be blank")
	}

	if params.Specifications.Present() {
		specs, err := params.Specifications.Normalize()
		if err != nil {
			return model.Product{}, apperr.ValidationErr.WithMsg("invalid specifications").WrapParent(err)
		}
		product.Specifications = specs
	}

	if params.OfferID != nil {
		offerID, err := parseOfferID(*params.OfferID)
		if err != nil {
			return model.Product{}, err
		}
		product.OfferID = offerID
	}

	if params.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *params.CategoryID)
		if err != nil {
			return model.Product{}, err
		}
		product.CategoryID = categoryID
	}

	if params.Name != nil {
		product.Name = *params.Name
		product.Slug = s.slugs.Generate(*params.Name)
	}
	if params.Price != nil {
		product.Price = *params.Price
	}
	if params.DiscountPercent != nil {
		product.DiscountPercent = *params.DiscountPercent
	}
	if params.IsActive != nil {
		product.IsActive = *params.IsActive
	}
	if params.Description != nil {
		product.Description = *params.Description
	}
	if params.About != nil {
		product.About = *params.About
	}
	applyList(&product.Sizes, params.Sizes)
	applyList(&product.Colors, params.Colors)
	applyList(&product.AddOns, params.AddOns)
	applyList(&product.Features, params.Features)

	// New files are uploaded before anything is deleted: the previous assets
	// are only removed once their replacements exist.
	var (
		uploaded   []string
		superseded []string
	)
	if params.MainImage != nil {
		img, err := s.mediaStore.Upload(ctx, *params.MainImage)
		if err != nil {
			return model.Product{}, fmt.Errorf("media store upload main image: %w", err)
		}
		uploaded = append(uploaded, img.AssetID)
		superseded = append(superseded, product.MainImage.AssetID)
		product.MainImage = img
	}
	if len(params.GalleryImages) > 0 {
		gallery, err := s.uploadAll(ctx, params.GalleryImages)
		for _, img := range gallery {
			uploaded = append(uploaded, img.AssetID)
		}
		if err != nil {
			s.discardUploads(ctx, uploaded)
			return model.Product{}, fmt.Errorf("media store upload gallery images: %w", err)
		}
		for _, img := range product.GalleryImages {
			superseded = append(superseded, img.AssetID)
		}
		product.GalleryImages = gallery
	}

	if err := s.purgeAssets(ctx, superseded); err != nil {
		s.discardUploads(ctx, uploaded)
		return model.Product{}, fmt.Errorf("purge superseded assets: %w", err)
	}

	product.UpdatedAt = s.clock.Now()

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}

		return createOutboxMsg(ctx, s.outboxMsgRepo.WithDB(db), event.TopicProductUpdated, product.ID.String(), changedEvent(product))
	}); err != nil {
		s.discardUploads(ctx, uploaded)
		if isInvalidCategory(err) {
			return model.Product{}, apperr.InvalidReferenceErr.WrapParent(err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

// DeleteProduct removes every media asset of the product before the record.
// Each asset deletion is attempted even when an earlier one fails; if any
// failed the record is kept and the joined failures are returned. Deletes on the
// media host are idempotent, so repeating the request finishes the job.
func (s *productWriter) DeleteProduct(ctx context.Context, idOrSlug string) error {
	product, err := lookup(ctx, idOrSlug, s.productRepo.GetProductBySlug, s.productRepo.GetProductByID)
	if err != nil {
		return fmt.Errorf("lookup product %q: %w", idOrSlug, err)
	}

	assetIDs := product.AssetIDs()
	if err := s.purgeAssets(ctx, assetIDs); err != nil {
		return fmt.Errorf("purge product assets: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, product.ID); err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}

		return createOutboxMsg(ctx, s.outboxMsgRepo.WithDB(db), event.TopicProductDeleted, product.ID.String(), event.ProductDeletedEvent{
			ProductID:  product.ID.String(),
			Slug:       product.Slug,
			AssetIDs:   assetIDs,
			OccurredAt: s.clock.Now(),
		})
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ProductNotFoundErr.WrapParent(err)
		}
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *productWriter) resolveCategory(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.InvalidReferenceErr.WrapParent(err)
	}

	exists, err := s.categoryRepo.CategoryExists(ctx, id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("category repository category exists: %w", err)
	}
	if !exists {
		return uuid.Nil, apperr.InvalidReferenceErr
	}

	return id, nil
}

// uploadAll uploads files in order. On failure it returns the images uploaded so far.
func (s *productWriter) uploadAll(ctx context.Context, files []media.File) ([]model.Image, error) {
	images := make([]model.Image, 0, len(files))
	for i, f := range files {
		img, err := s.mediaStore.Upload(ctx, f)
		if err != nil {
			return images, fmt.Errorf("upload file %d (%s): %w", i, f.Filename, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// purgeAssets deletes every asset, continuing past failures, and returns the joined failures.
func (s *productWriter) purgeAssets(ctx context.Context, assetIDs []string) error {
	var errs []error
	for _, id := range assetIDs {
		if id == "" {
			continue
		}
		if err := s.mediaStore.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete asset %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// discardUploads removes assets uploaded by a request that ends up failing.
func (s *productWriter) discardUploads(ctx context.Context, assetIDs []string) {
	if len(assetIDs) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.purgeAssets(ctx, assetIDs); err != nil {
		s.logger.ErrorContext(ctx, "error discarding uploaded assets",
			slog.Any("asset_ids", assetIDs),
			slog.Any("error", err),
		)
	}
}

func applyList(dst *[]string, raw payload.RawList) {
	if raw.Present() {
		*dst = raw.Normalize()
	}
}

func parseOfferID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.ValidationErr.WithMsg("invalid offerId").WrapParent(err)
	}
	return &id, nil
}

// isInvalidCategory catches a category deleted between the existence check and the write.
func isInvalidCategory(err error) bool {
	return db.IsForeignKeyViolation(err)
}

func changedEvent(p model.Product) event.ProductChangedEvent {
	return event.ProductChangedEvent{
		ProductID:  p.ID.String(),
		Slug:       p.Slug,
		Name:       p.Name,
		CategoryID: p.CategoryID.String(),
		Price:      p.Price,
		IsActive:   p.IsActive,
		OccurredAt: p.UpdatedAt,
	}
}
