// Package store defines the persistence contract for canvases, the tree,
// and image blobs, together with its filesystem and HTTP implementations.
package store

import (
	"context"

	"github.com/halvard/tavla/internal/models"
)

// UploadedImage describes a stored image blob.
type UploadedImage struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// Store is the persistence boundary the editor core sees. Implementations
// map failures onto the apperr sentinels: absent canvases are ErrNotFound,
// malformed identifiers ErrInvalidInput, transport failures
// ErrStoreUnavailable.
type Store interface {
	LoadCanvas(ctx context.Context, id string) (*models.Canvas, error)
	SaveCanvas(ctx context.Context, canvas *models.Canvas) (*models.Canvas, error)
	DeleteCanvas(ctx context.Context, id string) error
	LoadTree(ctx context.Context) (*models.Tree, error)
	SaveTree(ctx context.Context, t *models.Tree) error
	UploadImage(ctx context.Context, name string, data []byte) (*UploadedImage, error)
}
