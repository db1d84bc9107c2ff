package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/event"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/media"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/payload"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/ptr"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/zerror"
)

type writerFixture struct {
	writer     ProductWriter
	products   *fakeProductRepo
	categories *fakeCategoryRepo
	outbox     *fakeOutboxRepo
	media      *mockMediaStore
	clock      *clock.Fake
	category   model.Category
}

func newWriterFixture(t *testing.T) *writerFixture {
	t.Helper()

	f := &writerFixture{
		products: newFakeProductRepo(&fakeReviewRepo{}),
		outbox:   &fakeOutboxRepo{},
		media:    &mockMediaStore{},
		clock:    clock.NewFake(testNow),
	}
	f.category = newCategory(t, "mirrors")
	f.categories = newFakeCategoryRepo(f.category)
	f.writer = NewProductWriter(
		slog.New(slog.DiscardHandler),
		fakeDB{},
		f.products,
		f.categories,
		f.outbox,
		f.media,
		validator.MustNewDefaultValidator(),
		f.clock,
	)
	return f
}

// seed stores a product with a main image and galleryCount gallery images.
func (f *writerFixture) seed(t *testing.T, galleryCount int) model.Product {
	t.Helper()

	p := model.Product{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           "Seeded",
		Slug:           "seeded-1",
		CategoryID:     f.category.ID,
		Price:          50,
		MainImage:      image("seed-main"),
		Sizes:          []string{"S", "M"},
		Colors:         []string{"red"},
		AddOns:         []string{},
		Features:       []string{"frameless"},
		Specifications: map[string]string{"width": "40cm"},
		Description:    "a mirror",
		About:          "about it",
		IsActive:       true,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	for i := range galleryCount {
		p.GalleryImages = append(p.GalleryImages, image("seed-gallery-"+string(rune('a'+i))))
	}
	f.products.put(p)
	return p
}

func (f *writerFixture) createParams() CreateProductParams {
	return CreateProductParams{
		Name:       "Mirror A",
		Price:      100,
		CategoryID: f.category.ID.String(),
		MainImage:  filePtr("main.png"),
	}
}

func TestProductWriter_CreateProduct(t *testing.T) {
	f := newWriterFixture(t)
	f.media.expectUploads("main.png")

	product, err := f.writer.CreateProduct(context.Background(), f.createParams())
	require.NoError(t, err)

	assert.Equal(t, "mirror-a-1735787045000", product.Slug)
	assert.Equal(t, float64(0), product.DiscountPercent)
	assert.Equal(t, []string{}, product.Sizes)
	assert.Equal(t, map[string]string{}, product.Specifications)
	assert.Equal(t, image("main.png"), product.MainImage)
	assert.Empty(t, product.GalleryImages)
	assert.Nil(t, product.OfferID)
	assert.True(t, product.IsActive)
	assert.Equal(t, testNow, product.CreatedAt)

	stored, err := f.products.GetProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, stored)
	assert.Equal(t, []string{event.TopicProductCreated}, f.outbox.topics())
	f.media.AssertExpectations(t)
}

func TestProductWriter_CreateProduct_ListShapes(t *testing.T) {
	tests := []struct {
		name  string
		sizes payload.RawList
	}{
		{name: "comma separated", sizes: payload.DelimitedString("S, M, L")},
		{name: "json array string", sizes: payload.DelimitedString(`["S","M","L"]`)},
		{name: "structured list", sizes: payload.StructuredList([]string{"S", "M", "L"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWriterFixture(t)
			f.media.expectUploads("main.png")

			params := f.createParams()
			params.Sizes = tt.sizes
			product, err := f.writer.CreateProduct(context.Background(), params)
			require.NoError(t, err)
			assert.Equal(t, []string{"S", "M", "L"}, product.Sizes)
		})
	}
}

func TestProductWriter_CreateProduct_WithGalleryAndOffer(t *testing.T) {
	f := newWriterFixture(t)
	f.media.expectUploads("main.png", "g1.png", "g2.png")
	offerID := uuid.Must(uuid.NewV7())

	params := f.createParams()
	params.GalleryImages = []media.File{file("g1.png"), file("g2.png")}
	params.OfferID = offerID.String()
	params.Specifications = payload.EncodedSpecifications(`{"width": 40, "material": "glass"}`)

	product, err := f.writer.CreateProduct(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, []model.Image{image("g1.png"), image("g2.png")}, product.GalleryImages)
	require.NotNil(t, product.OfferID)
	assert.Equal(t, offerID, *product.OfferID)
	assert.Equal(t, map[string]string{"width": "40", "material": "glass"}, product.Specifications)
}

func TestProductWriter_CreateProduct_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *CreateProductParams)
		wantErr zerror.ZError
	}{
		{
			name:    "nonexistent category",
			mutate:  func(p *CreateProductParams) { p.CategoryID = uuid.Must(uuid.NewV7()).String() },
			wantErr: apperr.InvalidReferenceErr,
		},
		{
			name:    "malformed category id",
			mutate:  func(p *CreateProductParams) { p.CategoryID = "not-a-uuid" },
			wantErr: apperr.InvalidReferenceErr,
		},
		{
			name:    "missing category",
			mutate:  func(p *CreateProductParams) { p.CategoryID = "" },
			wantErr: apperr.ValidationErr,
		},
		{
			name:    "blank name",
			mutate:  func(p *CreateProductParams) { p.Name = "   " },
			wantErr: apperr.ValidationErr,
		},
		{
			name:    "zero price",
			mutate:  func(p *CreateProductParams) { p.Price = 0 },
			wantErr: apperr.ValidationErr,
		},
		{
			name:    "discount over 100",
			mutate:  func(p *CreateProductParams) { p.DiscountPercent = 120 },
			wantErr: apperr.ValidationErr,
		},
		{
			name:    "missing main image",
			mutate:  func(p *CreateProductParams) { p.MainImage = nil },
			wantErr: apperr.ValidationErr,
		},
		{
			name:    "malformed specifications",
			mutate:  func(p *CreateProductParams) { p.Specifications = payload.EncodedSpecifications("{width:") },
			wantErr: apperr.ValidationErr,
		},
		{
			name:    "malformed offer id",
			mutate:  func(p *CreateProductParams) { p.OfferID = "summer" },
			wantErr: apperr.ValidationErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWriterFixture(t)
			params := f.createParams()
			tt.mutate(&params)

			_, err := f.writer.CreateProduct(context.Background(), params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Zero(t, f.products.count())
			assert.Empty(t, f.outbox.topics())
			f.media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestProductWriter_CreateProduct_DiscardsUploadsOnPersistFailure(t *testing.T) {
	f := newWriterFixture(t)
	f.media.expectUploads("main.png", "g1.png")
	f.media.On("Delete", mock.Anything, "products/main.png").Return(nil).Once()
	f.media.On("Delete", mock.Anything, "products/g1.png").Return(nil).Once()
	f.products.createErr = errBoom

	params := f.createParams()
	params.GalleryImages = []media.File{file("g1.png")}

	_, err := f.writer.CreateProduct(context.Background(), params)
	require.ErrorIs(t, err, errBoom)
	f.media.AssertExpectations(t)
}

func TestProductWriter_CreateProduct_CategoryRemovedConcurrently(t *testing.T) {
	f := newWriterFixture(t)
	f.media.expectUploads("main.png")
	f.media.On("Delete", mock.Anything, "products/main.png").Return(nil).Once()
	f.products.createErr = &pgconn.PgError{Code: "23503"}

	_, err := f.writer.CreateProduct(context.Background(), f.createParams())
	require.ErrorIs(t, err, apperr.InvalidReferenceErr)
	f.media.AssertExpectations(t)
}

func TestProductWriter_CreateProduct_DiscardsPartialGallery(t *testing.T) {
	f := newWriterFixture(t)
	f.media.expectUploads("main.png", "g1.png")
	f.media.On("Upload", mock.Anything, mock.MatchedBy(func(file media.File) bool {
		return file.Filename == "g2.png"
	})).Return(model.Image{}, errBoom).Once()
	f.media.On("Delete", mock.Anything, "products/main.png").Return(nil).Once()
	f.media.On("Delete", mock.Anything, "products/g1.png").Return(nil).Once()

	params := f.createParams()
	params.GalleryImages = []media.File{file("g1.png"), file("g2.png")}

	_, err := f.writer.CreateProduct(context.Background(), params)
	require.ErrorIs(t, err, errBoom)
	assert.Zero(t, f.products.count())
	f.media.AssertExpectations(t)
}

func TestProductWriter_UpdateProduct_OnlyPrice(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 2)
	f.clock.Advance(time.Minute)

	updated, err := f.writer.UpdateProduct(context.Background(), seeded.Slug, UpdateProductParams{
		Price: ptr.New(75.5),
	})
	require.NoError(t, err)

	assert.Equal(t, 75.5, updated.Price)
	assert.Equal(t, testNow.Add(time.Minute), updated.UpdatedAt)

	want := seeded
	want.Price = 75.5
	want.UpdatedAt = testNow.Add(time.Minute)
	assert.Equal(t, want, updated)

	f.media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	f.media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Equal(t, []string{event.TopicProductUpdated}, f.outbox.topics())
}

func TestProductWriter_UpdateProduct_RenameTwiceYieldsDistinctSlugs(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 0)

	first, err := f.writer.UpdateProduct(context.Background(), seeded.ID.String(), UpdateProductParams{
		Name: ptr.New("Oval Mirror"),
	})
	require.NoError(t, err)

	second, err := f.writer.UpdateProduct(context.Background(), first.Slug, UpdateProductParams{
		Name: ptr.New("Oval Mirror"),
	})
	require.NoError(t, err)

	assert.Regexp(t, `^oval-mirror-\d+$`, first.Slug)
	assert.Regexp(t, `^oval-mirror-\d+$`, second.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestProductWriter_UpdateProduct_EmptyNameKeepsName(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 0)

	updated, err := f.writer.UpdateProduct(context.Background(), seeded.Slug, UpdateProductParams{
		Name:  ptr.New(""),
		Price: ptr.New(12.5),
	})
	require.NoError(t, err)

	assert.Equal(t, seeded.Name, updated.Name)
	assert.Equal(t, seeded.Slug, updated.Slug)
	assert.Equal(t, 12.5, updated.Price)
}

func TestProductWriter_UpdateProduct_Lists(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 0)

	updated, err := f.writer.UpdateProduct(context.Background(), seeded.Slug, UpdateProductParams{
		Sizes:          payload.DelimitedString("XL, XXL"),
		Colors:         payload.DelimitedString(""),
		Specifications: payload.StructuredSpecifications(map[string]string{"depth": "2cm"}),
		IsActive:       ptr.New(false),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"XL", "XXL"}, updated.Sizes)
	assert.Equal(t, []string{}, updated.Colors)
	assert.Equal(t, seeded.Features, updated.Features)
	assert.Equal(t, map[string]string{"depth": "2cm"}, updated.Specifications)
	assert.False(t, updated.IsActive)
}

func TestProductWriter_UpdateProduct_ReplacesMainImage(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 2)
	f.media.expectUploads("new-main.png")
	f.media.On("Delete", mock.Anything, "products/seed-main").Return(nil).Once()

	updated, err := f.writer.UpdateProduct(context.Background(), seeded.Slug, UpdateProductParams{
		MainImage: filePtr("new-main.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, image("new-main.png"), updated.MainImage)
	assert.Equal(t, seeded.GalleryImages, updated.GalleryImages)
	f.media.AssertExpectations(t)
	f.media.AssertNumberOfCalls(t, "Delete", 1)
}

func TestProductWriter_UpdateProduct_ReplacesGallery(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 2)
	f.media.expectUploads("g-new.png")
	f.media.On("Delete", mock.Anything, seeded.GalleryImages[0].AssetID).Return(nil).Once()
	f.media.On("Delete", mock.Anything, seeded.GalleryImages[1].AssetID).Return(nil).Once()

	updated, err := f.writer.UpdateProduct(context.Background(), seeded.Slug, UpdateProductParams{
		GalleryImages: []media.File{file("g-new.png")},
	})
	require.NoError(t, err)

	assert.Equal(t, []model.Image{image("g-new.png")}, updated.GalleryImages)
	assert.Equal(t, seeded.MainImage, updated.MainImage)
	f.media.AssertExpectations(t)
}

func TestProductWriter_UpdateProduct_OldAssetDeleteFails(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 0)
	f.media.expectUploads("new-main.png")
	f.media.On("Delete", mock.Anything, "products/seed-main").Return(errBoom).Once()
	f.media.On("Delete", mock.Anything, "products/new-main.png").Return(nil).Once()

	_, err := f.writer.UpdateProduct(context.Background(), seeded.Slug, UpdateProductParams{
		MainImage: filePtr("new-main.png"),
	})
	require.ErrorIs(t, err, errBoom)

	stored, err := f.products.GetProductByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded, stored)
	assert.Empty(t, f.outbox.topics())
	f.media.AssertExpectations(t)
}

func TestProductWriter_UpdateProduct_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		idOrSlug func(seeded model.Product) string
		params   func(f *writerFixture) UpdateProductParams
		wantErr  zerror.ZError
	}{
		{
			name:     "unknown product",
			idOrSlug: func(model.Product) string { return "missing" },
			params:   func(*writerFixture) UpdateProductParams { return UpdateProductParams{} },
			wantErr:  apperr.ProductNotFoundErr,
		},
		{
			name:     "blank name",
			idOrSlug: func(p model.Product) string { return p.Slug },
			params:   func(*writerFixture) UpdateProductParams { return UpdateProductParams{Name: ptr.New(" ")} },
			wantErr:  apperr.ValidationErr,
		},
		{
			name:     "negative price",
			idOrSlug: func(p model.Product) string { return p.Slug },
			params:   func(*writerFixture) UpdateProductParams { return UpdateProductParams{Price: ptr.New(-1.0)} },
			wantErr:  apperr.ValidationErr,
		},
		{
			name:     "nonexistent category",
			idOrSlug: func(p model.Product) string { return p.ID.String() },
			params: func(*writerFixture) UpdateProductParams {
				return UpdateProductParams{CategoryID: ptr.New(uuid.Must(uuid.NewV7()).String())}
			},
			wantErr: apperr.InvalidReferenceErr,
		},
		{
			name:     "malformed specifications",
			idOrSlug: func(p model.Product) string { return p.Slug },
			params: func(*writerFixture) UpdateProductParams {
				return UpdateProductParams{
					Specifications: payload.EncodedSpecifications(`["not","an","object"]`),
					MainImage:      filePtr("never-uploaded.png"),
				}
			},
			wantErr: apperr.ValidationErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWriterFixture(t)
			seeded := f.seed(t, 1)

			_, err := f.writer.UpdateProduct(context.Background(), tt.idOrSlug(seeded), tt.params(f))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			stored, err := f.products.GetProductByID(context.Background(), seeded.ID)
			require.NoError(t, err)
			assert.Equal(t, seeded, stored)
			f.media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestProductWriter_DeleteProduct(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 3)
	f.media.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := f.writer.DeleteProduct(context.Background(), seeded.Slug)
	require.NoError(t, err)

	f.media.AssertNumberOfCalls(t, "Delete", 1+len(seeded.GalleryImages))
	for _, id := range seeded.AssetIDs() {
		f.media.AssertCalled(t, "Delete", mock.Anything, id)
	}
	assert.Zero(t, f.products.count())
	assert.Equal(t, []string{event.TopicProductDeleted}, f.outbox.topics())
}

func TestProductWriter_DeleteProduct_ByID(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 0)
	f.media.On("Delete", mock.Anything, "products/seed-main").Return(nil).Once()

	require.NoError(t, f.writer.DeleteProduct(context.Background(), seeded.ID.String()))
	assert.Zero(t, f.products.count())
	f.media.AssertExpectations(t)
}

func TestProductWriter_DeleteProduct_AssetFailureKeepsRecord(t *testing.T) {
	f := newWriterFixture(t)
	seeded := f.seed(t, 2)
	f.media.On("Delete", mock.Anything, seeded.GalleryImages[0].AssetID).Return(errBoom).Once()
	f.media.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := f.writer.DeleteProduct(context.Background(), seeded.Slug)
	require.ErrorIs(t, err, errBoom)

	// every asset is still attempted
	f.media.AssertNumberOfCalls(t, "Delete", 3)
	assert.Equal(t, 1, f.products.count())
	assert.Empty(t, f.outbox.topics())

	var zErr zerror.ZError
	assert.NotErrorAs(t, err, &zErr)
}

func TestProductWriter_DeleteProduct_NotFound(t *testing.T) {
	f := newWriterFixture(t)

	err := f.writer.DeleteProduct(context.Background(), "nothing-here")
	require.ErrorIs(t, err, apperr.ProductNotFoundErr)
	f.media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
