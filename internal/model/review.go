package model

import (
	"time"

	"github.com/google/uuid"
)

// Review references a product by id only. Deleting a product leaves its reviews in place.
type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
