package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/auth"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/config"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/media"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/service"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (auth.Identity, error) {
	switch token {
	case adminToken:
		return auth.Identity{Subject: "admin-1", Role: auth.RoleAdmin}, nil
	case userToken:
		return auth.Identity{Subject: "user-1"}, nil
	default:
		return auth.Identity{}, auth.ErrInvalidToken
	}
}

type stubHealth struct{ err error }

func (s stubHealth) IsHealthy(context.Context) (bool, error) {
	return s.err == nil, s.err
}

type fakeReader struct {
	products map[string]model.ProductView
	listErr  error
}

func (f *fakeReader) ListProducts(context.Context) ([]model.ProductView, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.ProductView, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeReader) GetProduct(_ context.Context, idOrSlug string) (model.ProductView, error) {
	p, ok := f.products[idOrSlug]
	if !ok {
		return model.ProductView{}, apperr.ProductNotFoundErr
	}
	return p, nil
}

// uploadedFile is a media.File with its content drained, since the handler
// closes the underlying parts once the request is done.
type uploadedFile struct {
	Filename    string
	ContentType string
	Content     string
}

func drain(t *testing.T, f media.File) uploadedFile {
	t.Helper()
	b, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	return uploadedFile{Filename: f.Filename, ContentType: f.ContentType, Content: string(b)}
}

type fakeWriter struct {
	t *testing.T

	created   *service.CreateProductParams
	updated   *service.UpdateProductParams
	updatedID string
	deletedID string
	uploads   []uploadedFile

	err error
}

func (f *fakeWriter) CreateProduct(_ context.Context, params service.CreateProductParams) (model.Product, error) {
	f.created = &params
	if params.MainImage != nil {
		f.uploads = append(f.uploads, drain(f.t, *params.MainImage))
	}
	for _, g := range params.GalleryImages {
		f.uploads = append(f.uploads, drain(f.t, g))
	}
	if f.err != nil {
		return model.Product{}, f.err
	}
	return model.Product{ID: uuid.New(), Name: params.Name, Slug: "created"}, nil
}

func (f *fakeWriter) UpdateProduct(_ context.Context, idOrSlug string, params service.UpdateProductParams) (model.Product, error) {
	f.updated = &params
	f.updatedID = idOrSlug
	if params.MainImage != nil {
		f.uploads = append(f.uploads, drain(f.t, *params.MainImage))
	}
	if f.err != nil {
		return model.Product{}, f.err
	}
	return model.Product{ID: uuid.New(), Slug: idOrSlug}, nil
}

func (f *fakeWriter) DeleteProduct(_ context.Context, idOrSlug string) error {
	f.deletedID = idOrSlug
	return f.err
}

type fakeCatalog struct {
	categories []model.Category
	offers     []model.Offer
	reviews    []model.Review

	categoryErr error
	lastReview  *service.CreateReviewParams
	lastOffer   *service.CreateOfferParams
}

func (f *fakeCatalog) CreateCategory(_ context.Context, params service.CreateCategoryParams) (model.Category, error) {
	if f.categoryErr != nil {
		return model.Category{}, f.categoryErr
	}
	c := model.Category{ID: uuid.New(), Name: params.Name, Slug: "c"}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]model.Category, error) {
	return append([]model.Category{}, f.categories...), nil
}

func (f *fakeCatalog) CreateOffer(_ context.Context, params service.CreateOfferParams) (model.Offer, error) {
	f.lastOffer = &params
	o := model.Offer{ID: uuid.New(), Title: params.Title}
	f.offers = append(f.offers, o)
	return o, nil
}

func (f *fakeCatalog) ListOffers(context.Context) ([]model.Offer, error) {
	return append([]model.Offer{}, f.offers...), nil
}

func (f *fakeCatalog) CreateReview(_ context.Context, productIDOrSlug string, params service.CreateReviewParams) (model.Review, error) {
	if productIDOrSlug != "mirror" {
		return model.Review{}, apperr.ProductNotFoundErr
	}
	f.lastReview = &params
	r := model.Review{ID: uuid.New(), UserID: params.UserID, Rating: params.Rating, Comment: params.Comment}
	f.reviews = append(f.reviews, r)
	return r, nil
}

func (f *fakeCatalog) ListReviews(_ context.Context, productIDOrSlug string) ([]model.Review, error) {
	if productIDOrSlug != "mirror" {
		return nil, apperr.ProductNotFoundErr
	}
	return append([]model.Review{}, f.reviews...), nil
}

type testServer struct {
	handler http.Handler
	reader  *fakeReader
	writer  *fakeWriter
	catalog *fakeCatalog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		reader:  &fakeReader{products: map[string]model.ProductView{}},
		writer:  &fakeWriter{t: t},
		catalog: &fakeCatalog{},
	}
	svc := New(
		config.HTTP{
			Swagger:            true,
			MaxUploadBytes:     1 << 20,
			CorsAllowedOrigins: []string{"*"},
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Services{
			ProductReader: ts.reader,
			ProductWriter: ts.writer,
			Categories:    ts.catalog,
			Offers:        ts.catalog,
			Reviews:       ts.catalog,
		},
		stubVerifier{},
		stubHealth{},
	)
	ts.handler = svc.Handler()
	return ts
}

var errBoom = errors.New("boom")

// multipartBody builds a multipart form. Each field may repeat; files are
// given as name -> (filename, content type, content).
type formFile struct {
	field, filename, contentType, content string
}

func multipartBody(t *testing.T, fields [][2]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, kv := range fields {
		require.NoError(t, mw.WriteField(kv[0], kv[1]))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}
