package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	UpdateProduct(ctx context.Context, product model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductBySlug(ctx context.Context, slug string) (model.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	// GetProductViewBySlug and GetProductViewByID resolve category and offer
	// but leave the rating summary zero.
	GetProductViewBySlug(ctx context.Context, slug string) (model.ProductView, error)
	GetProductViewByID(ctx context.Context, id uuid.UUID) (model.ProductView, error)
	// ListActiveProductViews returns active products newest first with category,
	// offer and rating summary resolved in a single query.
	ListActiveProductViews(ctx context.Context) ([]model.ProductView, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

const productColumns = `
	p.id, p.name, p.slug, p.category_id, p.price::float8, p.discount_percent::float8,
	p.main_image_url, p.main_image_asset_id, p.gallery_images,
	p.sizes, p.colors, p.add_ons, p.features, p.specifications,
	p.description, p.about, p.offer_id, p.is_active, p.created_at, p.updated_at`

const joinedColumns = `
	c.id, c.name, c.slug, c.created_at,
	o.id, o.title, o.description, o.discount_percent::float8, o.is_active, o.created_at`

const joins = `
	LEFT JOIN categories AS c ON c.id = p.category_id
	LEFT JOIN offers AS o ON o.id = p.offer_id`

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	args, err := productArgs(product)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (
			id, name, slug, category_id, price, discount_percent,
			main_image_url, main_image_asset_id, gallery_images,
			sizes, colors, add_ons, features, specifications,
			description, about, offer_id, is_active, created_at, updated_at
		) VALUES (
			@id, @name, @slug, @category_id, @price, @discount_percent,
			@main_image_url, @main_image_asset_id, @gallery_images,
			@sizes, @colors, @add_ons, @features, @specifications,
			@description, @about, @offer_id, @is_active, @created_at, @updated_at
		)
	`, args); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	args, err := productArgs(product)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products SET
			name                = @name,
			slug                = @slug,
			category_id         = @category_id,
			price               = @price,
			discount_percent    = @discount_percent,
			main_image_url      = @main_image_url,
			main_image_asset_id = @main_image_asset_id,
			gallery_images      = @gallery_images,
			sizes               = @sizes,
			colors              = @colors,
			add_ons             = @add_ons,
			features            = @features,
			specifications      = @specifications,
			description         = @description,
			about               = @about,
			offer_id            = @offer_id,
			is_active           = @is_active,
			updated_at          = @updated_at
		WHERE id = @id
	`, args)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %s: %w", product.ID, ErrNotFound)
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r productRepository) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	return r.getProduct(ctx, `p.slug = $1`, slug)
}

func (r productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.getProduct(ctx, `p.id = $1`, id)
}

func (r productRepository) getProduct(ctx context.Context, where string, arg any) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products AS p WHERE `+where, arg)

	var p model.Product
	if err := row.Scan(productDest(&p)...); err != nil {
		if db.IsNoRows(err) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

func (r productRepository) GetProductViewBySlug(ctx context.Context, slug string) (model.ProductView, error) {
	return r.getProductView(ctx, `p.slug = $1`, slug)
}

func (r productRepository) GetProductViewByID(ctx context.Context, id uuid.UUID) (model.ProductView, error) {
	return r.getProductView(ctx, `p.id = $1`, id)
}

func (r productRepository) getProductView(ctx context.Context, where string, arg any) (model.ProductView, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+`,`+joinedColumns+` FROM products AS p `+joins+` WHERE `+where, arg)

	var (
		view model.ProductView
		j    joinedRow
	)
	dest := append(productDest(&view.Product), j.dest()...)
	if err := row.Scan(dest...); err != nil {
		if db.IsNoRows(err) {
			return model.ProductView{}, ErrNotFound
		}
		return model.ProductView{}, fmt.Errorf("get product view: %w", err)
	}
	view.Category, view.Offer = j.category(), j.offer()

	return view, nil
}

func (r productRepository) ListActiveProductViews(ctx context.Context) ([]model.ProductView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`,
			COALESCE(rs.average_rating, 0)::float8,
			COALESCE(rs.total_reviews, 0),`+joinedColumns+`
		FROM products AS p
		LEFT JOIN (
			SELECT
				product_id,
				ROUND(AVG(rating), 1) AS average_rating,
				COUNT(*)              AS total_reviews
			FROM reviews
			GROUP BY product_id
		) AS rs ON rs.product_id = p.id `+joins+`
		WHERE p.is_active
		ORDER BY p.created_at DESC, p.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active product views: %w", err)
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProductView, error) {
		var (
			view model.ProductView
			j    joinedRow
		)
		dest := productDest(&view.Product)
		dest = append(dest, &view.AverageRating, &view.TotalReviews)
		dest = append(dest, j.dest()...)
		if err := row.Scan(dest...); err != nil {
			return model.ProductView{}, err
		}
		view.Category, view.Offer = j.category(), j.offer()
		return view, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect product views: %w", err)
	}

	return views, nil
}

func productArgs(p model.Product) (pgx.NamedArgs, error) {
	price, err := toNumeric(p.Price)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	discount, err := toNumeric(p.DiscountPercent)
	if err != nil {
		return nil, fmt.Errorf("discount percent: %w", err)
	}

	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}

	return pgx.NamedArgs{
		"id":                  p.ID,
		"name":                p.Name,
		"slug":                p.Slug,
		"category_id":         p.CategoryID,
		"price":               price,
		"discount_percent":    discount,
		"main_image_url":      p.MainImage.URL,
		"main_image_asset_id": p.MainImage.AssetID,
		"gallery_images":      nonNil(p.GalleryImages),
		"sizes":               nonNil(p.Sizes),
		"colors":              nonNil(p.Colors),
		"add_ons":             nonNil(p.AddOns),
		"features":            nonNil(p.Features),
		"specifications":      specs,
		"description":         p.Description,
		"about":               p.About,
		"offer_id":            p.OfferID,
		"is_active":           p.IsActive,
		"created_at":          p.CreatedAt,
		"updated_at":          p.UpdatedAt,
	}, nil
}

func productDest(p *model.Product) []any {
	return []any{
		&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.Price, &p.DiscountPercent,
		&p.MainImage.URL, &p.MainImage.AssetID, &p.GalleryImages,
		&p.Sizes, &p.Colors, &p.AddOns, &p.Features, &p.Specifications,
		&p.Description, &p.About, &p.OfferID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	}
}

// joinedRow receives the nullable category and offer columns of a left join.
type joinedRow struct {
	categoryID        *uuid.UUID
	categoryName      *string
	categorySlug      *string
	categoryCreatedAt *time.Time

	offerID          *uuid.UUID
	offerTitle       *string
	offerDescription *string
	offerDiscount    *float64
	offerIsActive    *bool
	offerCreatedAt   *time.Time
}

func (j *joinedRow) dest() []any {
	return []any{
		&j.categoryID, &j.categoryName, &j.categorySlug, &j.categoryCreatedAt,
		&j.offerID, &j.offerTitle, &j.offerDescription, &j.offerDiscount, &j.offerIsActive, &j.offerCreatedAt,
	}
}

func (j *joinedRow) category() *model.Category {
	if j.categoryID == nil {
		return nil
	}
	return &model.Category{
		ID:        *j.categoryID,
		Name:      deref(j.categoryName),
		Slug:      deref(j.categorySlug),
		CreatedAt: deref(j.categoryCreatedAt),
	}
}

func (j *joinedRow) offer() *model.Offer {
	if j.offerID == nil {
		return nil
	}
	return &model.Offer{
		ID:              *j.offerID,
		Title:           deref(j.offerTitle),
		Description:     deref(j.offerDescription),
		DiscountPercent: deref(j.offerDiscount),
		IsActive:        deref(j.offerIsActive),
		CreatedAt:       deref(j.offerCreatedAt),
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
