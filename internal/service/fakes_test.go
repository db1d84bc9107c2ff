package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/media"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/rating"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
)

var errBoom = errors.New("boom")

// fakeDB runs transactions inline. Repositories in this package ignore it.
type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeDB: not implemented")
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: not implemented")
}

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("fakeDB: not implemented")
}

func (fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (d fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(d)
}

type fakeProductRepo struct {
	mu        sync.Mutex
	products  map[uuid.UUID]model.Product
	reviews   *fakeReviewRepo
	createErr error
}

func newFakeProductRepo(reviews *fakeReviewRepo) *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]model.Product{}, reviews: reviews}
}

func (r *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *fakeProductRepo) put(p model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *fakeProductRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, p model.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(p)
	return nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, p model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) GetProductBySlug(_ context.Context, slug string) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Product{}, repository.ErrNotFound
}

func (r *fakeProductRepo) GetProductByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetProductViewBySlug(ctx context.Context, slug string) (model.ProductView, error) {
	p, err := r.GetProductBySlug(ctx, slug)
	if err != nil {
		return model.ProductView{}, err
	}
	return model.ProductView{Product: p}, nil
}

func (r *fakeProductRepo) GetProductViewByID(ctx context.Context, id uuid.UUID) (model.ProductView, error) {
	p, err := r.GetProductByID(ctx, id)
	if err != nil {
		return model.ProductView{}, err
	}
	return model.ProductView{Product: p}, nil
}

// ListActiveProductViews mirrors the aggregate query: active only, newest first,
// rating summary attached.
func (r *fakeProductRepo) ListActiveProductViews(ctx context.Context) ([]model.ProductView, error) {
	r.mu.Lock()
	var views []model.ProductView
	for _, p := range r.products {
		if p.IsActive {
			views = append(views, model.ProductView{Product: p})
		}
	}
	r.mu.Unlock()

	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	for i := range views {
		ratings, _ := r.reviews.ListRatingsByProduct(ctx, views[i].ID)
		views[i].RatingSummary = rating.Summarize(ratings)
	}
	return views, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]model.Category
	createErr  error
}

func newFakeCategoryRepo(categories ...model.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: map[uuid.UUID]model.Category{}}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) WithDB(db.DB) repository.CategoryRepository { return r }

func (r *fakeCategoryRepo) CreateCategory(_ context.Context, c model.Category) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) ListCategories(context.Context) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) CategoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.categories[id]
	return ok, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []model.Review
}

func (r *fakeReviewRepo) WithDB(db.DB) repository.ReviewRepository { return r }

func (r *fakeReviewRepo) CreateReview(_ context.Context, rv model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, rv)
	return nil
}

func (r *fakeReviewRepo) ListReviewsByProduct(_ context.Context, productID uuid.UUID) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Review
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) ListRatingsByProduct(ctx context.Context, productID uuid.UUID) ([]int, error) {
	reviews, _ := r.ListReviewsByProduct(ctx, productID)
	ratings := make([]int, 0, len(reviews))
	for _, rv := range reviews {
		ratings = append(ratings, rv.Rating)
	}
	return ratings, nil
}

func (r *fakeReviewRepo) CountReviewsByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	reviews, _ := r.ListReviewsByProduct(ctx, productID)
	return len(reviews), nil
}

type fakeOutboxRepo struct {
	mu   sync.Mutex
	msgs []repository.CreateOutboxMsgParams
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, params)
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (r *fakeOutboxRepo) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		topics[i] = m.Topic
	}
	return topics
}

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Upload(ctx context.Context, file media.File) (model.Image, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(model.Image), args.Error(1)
}

func (m *mockMediaStore) Delete(ctx context.Context, assetID string) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}

// expectUploads makes every upload of a file named name succeed with a
// deterministic asset id derived from it.
func (m *mockMediaStore) expectUploads(names ...string) {
	for _, name := range names {
		m.On("Upload", mock.Anything, mock.MatchedBy(func(f media.File) bool {
			return f.Filename == name
		})).Return(image(name), nil).Once()
	}
}

func image(name string) model.Image {
	return model.Image{
		URL:     "https://cdn.test/products/" + name,
		AssetID: "products/" + name,
	}
}

func file(name string) media.File {
	content := []byte("image-" + name)
	return media.File{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}
}

func filePtr(name string) *media.File {
	f := file(name)
	return &f
}

var testNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newCategory(t *testing.T, name string) model.Category {
	t.Helper()
	return model.Category{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Slug:      fmt.Sprintf("cat-%s", name),
		CreatedAt: testNow,
	}
}
