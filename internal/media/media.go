// Package media talks to the remote host storing product images.
package media

import (
	"context"
	"io"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
)

// File is an uploaded file waiting to be pushed to the media host.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Store uploads files and deletes them by asset id.
// Delete must be idempotent: deleting an unknown asset succeeds.
type Store interface {
	Upload(ctx context.Context, file File) (model.Image, error)
	Delete(ctx context.Context, assetID string) error
}
