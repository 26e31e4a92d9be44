package api

import (
	"context"
	"fmt"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/index"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
	"github.com/halvard/tavla/internal/tree"
)

// CanvasEvents receives change notifications for connected clients.
// The SSE broker satisfies this; a nil publisher disables notification.
type CanvasEvents interface {
	PublishCanvasEvent(kind, canvasID string)
}

// Service coordinates store and index operations for the API layer.
type Service struct {
	fs     *store.FS
	db     *index.DB
	events CanvasEvents
}

// NewService creates a new API service. db and events may be nil.
func NewService(fs *store.FS, db *index.DB, events CanvasEvents) *Service {
	return &Service{fs: fs, db: db, events: events}
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishCanvasEvent(kind, id)
	}
}

func (s *Service) reindex(id string) {
	if s.db == nil {
		return
	}
	raw, err := s.fs.ReadCanvasRaw(id)
	if err != nil {
		return
	}
	_ = s.db.IndexDocument(id, raw, store.Checksum(raw))
}

// GetCanvas loads a single canvas document.
func (s *Service) GetCanvas(ctx context.Context, id string) (*models.Canvas, error) {
	return s.fs.LoadCanvas(ctx, id)
}

// CreateCanvas creates a new canvas with a fresh id, registers it in the
// tree, and persists both. parentID, when non-nil, must name an existing
// canvas.
func (s *Service) CreateCanvas(ctx context.Context, name string, parentID *string) (*models.Canvas, error) {
	if name == "" {
		name = "Untitled Canvas"
	}
	canvas := models.NewCanvas(models.NewID(), name, parentID)

	t, err := s.fs.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	m := tree.New(t)
	if err := m.AddCanvas(canvas.ID, parentID, name); err != nil {
		return nil, err
	}

	saved, err := s.fs.SaveCanvas(ctx, canvas)
	if err != nil {
		return nil, err
	}
	if err := s.fs.SaveTree(ctx, m.Tree()); err != nil {
		return nil, err
	}

	s.reindex(saved.ID)
	s.publish("created", saved.ID)
	return saved, nil
}

// SaveCanvas replaces a canvas document. Last writer wins; the id in the
// URL must match the document id.
func (s *Service) SaveCanvas(ctx context.Context, id string, canvas *models.Canvas) (*models.Canvas, error) {
	if canvas.ID == "" {
		canvas.ID = id
	}
	if canvas.ID != id {
		return nil, fmt.Errorf("api: body id %q does not match %q: %w", canvas.ID, id, apperr.ErrInvalidInput)
	}
	saved, err := s.fs.SaveCanvas(ctx, canvas)
	if err != nil {
		return nil, err
	}
	s.reindex(saved.ID)
	s.publish("updated", saved.ID)
	return saved, nil
}

// DeleteCanvas removes a canvas from the store and the tree. Children of
// the removed node are re-parented to its parent. The main canvas cannot
// be deleted.
func (s *Service) DeleteCanvas(ctx context.Context, id string) error {
	if id == models.MainCanvasID {
		return fmt.Errorf("api: cannot delete the main canvas: %w", apperr.ErrInvalidTreeEdit)
	}
	t, err := s.fs.LoadTree(ctx)
	if err != nil {
		return err
	}
	m := tree.New(t)
	if err := m.RemoveCanvas(id); err != nil {
		return err
	}
	if err := s.fs.DeleteCanvas(ctx, id); err != nil {
		return err
	}
	if err := s.fs.SaveTree(ctx, m.Tree()); err != nil {
		return err
	}
	if s.db != nil {
		_ = s.db.DeleteCanvas(id)
	}
	s.publish("deleted", id)
	return nil
}

// GetTree loads the canvas tree.
func (s *Service) GetTree(ctx context.Context) (*models.Tree, error) {
	return s.fs.LoadTree(ctx)
}

// SaveTree validates and replaces the canvas tree.
func (s *Service) SaveTree(ctx context.Context, t *models.Tree) error {
	if t.Canvases == nil {
		t.Canvases = map[string]*models.TreeNode{}
	}
	if err := tree.New(t).Validate(); err != nil {
		return fmt.Errorf("api: tree rejected: %w", err)
	}
	return s.fs.SaveTree(ctx, t)
}

// UploadImage stores an uploaded image blob.
func (s *Service) UploadImage(ctx context.Context, name string, data []byte) (*store.UploadedImage, error) {
	return s.fs.UploadImage(ctx, name, data)
}

// ImagePath resolves the filesystem path for a stored image.
func (s *Service) ImagePath(filename string) (string, error) {
	return s.fs.ImagePath(filename)
}

// Search runs a full-text query over indexed canvases. Returns an empty
// slice when no index is attached.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return []index.SearchResult{}, nil
	}
	return s.db.Search(query, limit)
}
