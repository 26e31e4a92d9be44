// Package testutil provides shared test helpers for setting up stores and databases.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/index"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tavla-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary data directory with a bootstrapped FS store.
func TestStore(t *testing.T) (string, *store.FS) {
	t.Helper()
	dataDir := t.TempDir()
	fs, err := store.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, fs
}

// MemStore is an in-memory Store for exercising save and navigation
// paths without touching disk. SaveErr and SaveTreeErr, when non-nil,
// make the corresponding write fail until cleared.
type MemStore struct {
	mu          sync.Mutex
	canvases    map[string]*models.Canvas
	tree        *models.Tree
	saves       []string
	SaveErr     error
	SaveTreeErr error
}

// NewMemStore returns a MemStore seeded with the default tree and main canvas.
func NewMemStore() *MemStore {
	main := models.NewCanvas(models.MainCanvasID, models.MainCanvasName, nil)
	return &MemStore{
		canvases: map[string]*models.Canvas{main.ID: main},
		tree:     models.DefaultTree(),
	}
}

// Put seeds a canvas directly.
func (m *MemStore) Put(c *models.Canvas) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canvases[c.ID] = c.Clone()
}

// SaveCalls returns the ids passed to SaveCanvas, in order.
func (m *MemStore) SaveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saves...)
}

func (m *MemStore) LoadCanvas(_ context.Context, id string) (*models.Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.canvases[id]
	if !ok {
		return nil, fmt.Errorf("memstore: canvas %s: %w", id, apperr.ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *MemStore) SaveCanvas(_ context.Context, canvas *models.Canvas) (*models.Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	saved := canvas.Clone()
	saved.Touch()
	m.canvases[saved.ID] = saved
	m.saves = append(m.saves, saved.ID)
	return saved.Clone(), nil
}

func (m *MemStore) DeleteCanvas(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.canvases[id]; !ok {
		return fmt.Errorf("memstore: canvas %s: %w", id, apperr.ErrNotFound)
	}
	delete(m.canvases, id)
	return nil
}

func (m *MemStore) LoadTree(_ context.Context) (*models.Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Clone(), nil
}

func (m *MemStore) SaveTree(_ context.Context, t *models.Tree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveTreeErr != nil {
		return m.SaveTreeErr
	}
	m.tree = t.Clone()
	return nil
}

func (m *MemStore) UploadImage(_ context.Context, name string, data []byte) (*store.UploadedImage, error) {
	filename := models.NewID() + ".png"
	return &store.UploadedImage{
		Filename:     filename,
		OriginalName: name,
		Size:         int64(len(data)),
		URL:          "/api/images/" + filename,
	}, nil
}

var _ store.Store = (*MemStore)(nil)
