package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

// Storage layout under the root directory.
const (
	canvasesDir = "canvases"
	imagesDir   = "images"
	treeFile    = "tree.json"
)

// FS implements Store on the local file system:
//
//	<root>/canvases/<id>.json
//	<root>/images/<filename>
//	<root>/tree.json
//
// A fresh root is bootstrapped with the default tree and the "main"
// canvas. Writes are atomic: tmp file, fsync, rename.
type FS struct {
	root string
}

// NewFS creates a filesystem store rooted at dir, creating the layout and
// the bootstrap documents as needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	for _, sub := range []string{canvasesDir, imagesDir} {
		if err := os.MkdirAll(filepath.Join(abs, sub), 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s dir: %w", sub, err)
		}
	}
	f := &FS{root: abs}
	if err := f.bootstrap(); err != nil {
		return nil, err
	}
	return f, nil
}

// Root returns the absolute storage root.
func (f *FS) Root() string { return f.root }

// CanvasesDir returns the absolute canvases directory (watched for
// external edits).
func (f *FS) CanvasesDir() string { return filepath.Join(f.root, canvasesDir) }

// CanvasFileInfo is lightweight metadata about one stored canvas
// document, used by the search index to detect changes.
type CanvasFileInfo struct {
	ID       string
	Checksum string
	Modified time.Time
}

// ListCanvases returns metadata for every canvas document on disk.
func (f *FS) ListCanvases() ([]CanvasFileInfo, error) {
	entries, err := os.ReadDir(f.CanvasesDir())
	if err != nil {
		return nil, fmt.Errorf("store: list canvases: %w", err)
	}
	var out []CanvasFileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(f.CanvasesDir(), entry.Name()))
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, CanvasFileInfo{
			ID:       id,
			Checksum: Checksum(data),
			Modified: info.ModTime(),
		})
	}
	return out, nil
}

// ReadCanvasRaw returns the raw bytes of a canvas document.
func (f *FS) ReadCanvasRaw(id string) ([]byte, error) {
	if err := models.ValidateID(id); err != nil {
		return nil, fmt.Errorf("store: canvas id %q: %w", id, apperr.ErrInvalidInput)
	}
	data, err := os.ReadFile(f.canvasPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("store: canvas %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("store: read canvas %s: %w", id, err)
	}
	return data, nil
}

// Checksum returns the hex-encoded SHA-256 digest of a document.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ImagePath resolves a validated image filename to its absolute path.
func (f *FS) ImagePath(filename string) (string, error) {
	if err := models.ValidateFilename(filename); err != nil {
		return "", fmt.Errorf("store: image %q: %w", filename, apperr.ErrInvalidInput)
	}
	return filepath.Join(f.root, imagesDir, filename), nil
}

// bootstrap writes the default tree and main canvas when absent.
func (f *FS) bootstrap() error {
	treePath := filepath.Join(f.root, treeFile)
	if _, err := os.Stat(treePath); errors.Is(err, os.ErrNotExist) {
		if err := f.SaveTree(context.Background(), models.DefaultTree()); err != nil {
			return err
		}
	}
	mainPath := f.canvasPath(models.MainCanvasID)
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		canvas := models.NewCanvas(models.MainCanvasID, models.MainCanvasName, nil)
		if _, err := f.SaveCanvas(context.Background(), canvas); err != nil {
			return err
		}
	}
	return nil
}

func (f *FS) canvasPath(id string) string {
	return filepath.Join(f.root, canvasesDir, id+".json")
}

// LoadCanvas reads and decodes a canvas document, migrating versionless
// documents in place.
func (f *FS) LoadCanvas(_ context.Context, id string) (*models.Canvas, error) {
	if err := models.ValidateID(id); err != nil {
		return nil, fmt.Errorf("store: canvas id %q: %w", id, apperr.ErrInvalidInput)
	}
	data, err := os.ReadFile(f.canvasPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("store: canvas %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("store: read canvas %s: %w", id, err)
	}
	var canvas models.Canvas
	if err := json.Unmarshal(data, &canvas); err != nil {
		return nil, fmt.Errorf("store: parse canvas %s: %w", id, err)
	}
	if canvas.Elements == nil {
		canvas.Elements = []*models.Element{}
	}
	if canvas.Migrate() {
		if err := f.writeCanvas(&canvas); err != nil {
			return nil, err
		}
	}
	return &canvas, nil
}

// SaveCanvas stamps the modified timestamp and writes the document,
// returning the authoritative record.
func (f *FS) SaveCanvas(_ context.Context, canvas *models.Canvas) (*models.Canvas, error) {
	if err := models.ValidateID(canvas.ID); err != nil {
		return nil, fmt.Errorf("store: canvas id %q: %w", canvas.ID, apperr.ErrInvalidInput)
	}
	saved := canvas.Clone()
	if saved.Version == "" {
		saved.Version = models.CanvasVersion
	}
	saved.Touch()
	if err := f.writeCanvas(saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (f *FS) writeCanvas(canvas *models.Canvas) error {
	data, err := json.MarshalIndent(canvas, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode canvas %s: %w", canvas.ID, err)
	}
	return f.atomicWrite(f.canvasPath(canvas.ID), data)
}

// DeleteCanvas removes a canvas document.
func (f *FS) DeleteCanvas(_ context.Context, id string) error {
	if err := models.ValidateID(id); err != nil {
		return fmt.Errorf("store: canvas id %q: %w", id, apperr.ErrInvalidInput)
	}
	if err := os.Remove(f.canvasPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store: canvas %s: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("store: delete canvas %s: %w", id, err)
	}
	return nil
}

// LoadTree reads the tree document, writing the default when absent.
func (f *FS) LoadTree(ctx context.Context) (*models.Tree, error) {
	data, err := os.ReadFile(filepath.Join(f.root, treeFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t := models.DefaultTree()
			if err := f.SaveTree(ctx, t); err != nil {
				return nil, err
			}
			return t, nil
		}
		return nil, fmt.Errorf("store: read tree: %w", err)
	}
	var t models.Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("store: parse tree: %w", err)
	}
	if t.Canvases == nil {
		t.Canvases = map[string]*models.TreeNode{}
	}
	return &t, nil
}

// SaveTree writes the tree document.
func (f *FS) SaveTree(_ context.Context, t *models.Tree) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode tree: %w", err)
	}
	return f.atomicWrite(filepath.Join(f.root, treeFile), data)
}

// UploadImage stores an image blob under a fresh UUID filename, keeping
// the original extension (default png), and returns its metadata.
func (f *FS) UploadImage(_ context.Context, name string, data []byte) (*UploadedImage, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		ext = "png"
	}
	filename := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	if err := models.ValidateFilename(filename); err != nil {
		return nil, fmt.Errorf("store: image name %q: %w", name, apperr.ErrInvalidInput)
	}
	if err := f.atomicWrite(filepath.Join(f.root, imagesDir, filename), data); err != nil {
		return nil, err
	}
	return &UploadedImage{
		Filename:     filename,
		OriginalName: name,
		Size:         int64(len(data)),
		URL:          "/api/images/" + filename,
	}, nil
}

// atomicWrite writes content via tmp file, fsync, rename.
func (f *FS) atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tavla-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}
