// Package platform bridges desktop-wrapper events into the core: native
// file drag-drop arrives as paths, recognized images are read, probed for
// pixel size, uploaded through the store, and placed on the canvas.
package platform

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/halvard/tavla/internal/board"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
)

// EventKind is a bridge event type.
type EventKind string

// Bridge events as the desktop wrapper sends them.
const (
	DragOver  EventKind = "drag-over"
	DragLeave EventKind = "drag-leave"
	DragDrop  EventKind = "drag-drop"
)

// Event is one platform bridge event.
type Event struct {
	Kind  EventKind
	Paths []string     // drag-drop only
	At    models.Point // drop position in screen space
}

// imageExtensions are the recognized droppable types; anything else is
// silently skipped.
var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".svg": {},
}

// Default placement size when pixel dimensions cannot be probed (SVG,
// truncated files).
const (
	defaultDropWidth  = 300
	defaultDropHeight = 200
	maxDropWidth      = 600
)

// Bridge consumes wrapper events and turns drops into placed elements.
type Bridge struct {
	store  store.Store
	editor *board.Editor
	logger *slog.Logger

	dragActive bool
}

// New creates a bridge over the store and editor.
func New(st store.Store, editor *board.Editor, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{store: st, editor: editor, logger: logger}
}

// DragActive reports whether a native drag is hovering the window.
func (b *Bridge) DragActive() bool { return b.dragActive }

// Handle processes one bridge event. Drop returns the elements placed.
func (b *Bridge) Handle(ctx context.Context, ev Event) ([]*models.Element, error) {
	switch ev.Kind {
	case DragOver:
		b.dragActive = true
		return nil, nil
	case DragLeave:
		b.dragActive = false
		return nil, nil
	case DragDrop:
		b.dragActive = false
		return b.drop(ctx, ev)
	}
	return nil, nil
}

// drop uploads every recognized image and inserts an element for each,
// cascading placement so stacked drops stay visible.
func (b *Bridge) drop(ctx context.Context, ev Event) ([]*models.Element, error) {
	world := b.editor.Viewport.ScreenToWorld(ev.At)
	var placed []*models.Element
	offset := 0.0
	for _, path := range ev.Paths {
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := imageExtensions[ext]; !ok {
			b.logger.Debug("platform: skipping non-image drop", slog.String("path", path))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			b.logger.Warn("platform: read dropped file failed",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		up, err := b.store.UploadImage(ctx, filepath.Base(path), data)
		if err != nil {
			b.logger.Warn("platform: upload failed",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		w, h := ProbeSize(data)
		el := &models.Element{
			Type:   models.TypeImage,
			X:      world.X + offset,
			Y:      world.Y + offset,
			Width:  w,
			Height: h,
			Src:    up.URL,
		}
		if err := b.editor.InsertElement(el); err != nil {
			return placed, err
		}
		placed = append(placed, el)
		offset += 24
	}
	return placed, nil
}

// ProbeSize decodes just the image header to find pixel dimensions,
// scaling oversized images down to a placeable size. Undecodable data
// (SVG among it) gets the default size.
func ProbeSize(data []byte) (float64, float64) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return defaultDropWidth, defaultDropHeight
	}
	w, h := float64(cfg.Width), float64(cfg.Height)
	if w > maxDropWidth {
		h *= maxDropWidth / w
		w = maxDropWidth
	}
	return w, h
}
