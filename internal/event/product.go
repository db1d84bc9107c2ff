package event

import "time"

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// ProductChangedEvent is published after a product is created or updated.
type ProductChangedEvent struct {
	ProductID  string    `json:"product_id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	Price      float64   `json:"price"`
	IsActive   bool      `json:"is_active"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductDeletedEvent is published after a product and its media are removed.
type ProductDeletedEvent struct {
	ProductID  string    `json:"product_id"`
	Slug       string    `json:"slug"`
	AssetIDs   []string  `json:"asset_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}
