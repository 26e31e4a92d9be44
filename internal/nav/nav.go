// Package nav switches the active canvas: breadcrumb derivation,
// back/forward history, and the load sequence that keeps autosave and
// undo history coherent across canvas boundaries.
package nav

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/board"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
	"github.com/halvard/tavla/internal/tree"
)

// Flusher is the synchronous-flush side of the autosave scheduler.
type Flusher interface {
	Flush(ctx context.Context)
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Navigator owns the active-canvas state.
type Navigator struct {
	store  store.Store
	editor *board.Editor
	saver  Flusher
	tree   *tree.Model
	logger *slog.Logger

	active  string
	back    []string
	forward []string
}

// New creates a navigator. saver may be nil when autosave is disabled.
func New(st store.Store, editor *board.Editor, saver Flusher, treeModel *tree.Model, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{store: st, editor: editor, saver: saver, tree: treeModel, logger: logger}
}

// Active returns the active canvas id, or "".
func (n *Navigator) Active() string { return n.active }

// Tree returns the tree model.
func (n *Navigator) Tree() *tree.Model { return n.tree }

// Go navigates to a canvas, pushing the previous canvas onto the back
// stack. The sequence is fixed: flush any pending autosave, clear
// history, load the target, reset the viewport to its stored viewbox.
func (n *Navigator) Go(ctx context.Context, id string) error {
	if err := n.enter(ctx, id); err != nil {
		return err
	}
	if n.active != "" && n.active != id {
		n.back = append(n.back, n.active)
		n.forward = n.forward[:0]
	}
	n.active = id
	return nil
}

// Back re-enters the previous canvas without pushing (history pop).
func (n *Navigator) Back(ctx context.Context) error {
	if len(n.back) == 0 {
		return fmt.Errorf("nav: back: %w", apperr.ErrNotFound)
	}
	target := n.back[len(n.back)-1]
	if err := n.enter(ctx, target); err != nil {
		return err
	}
	n.back = n.back[:len(n.back)-1]
	n.forward = append(n.forward, n.active)
	n.active = target
	return nil
}

// Forward re-enters the next canvas without pushing.
func (n *Navigator) Forward(ctx context.Context) error {
	if len(n.forward) == 0 {
		return fmt.Errorf("nav: forward: %w", apperr.ErrNotFound)
	}
	target := n.forward[len(n.forward)-1]
	if err := n.enter(ctx, target); err != nil {
		return err
	}
	n.forward = n.forward[:len(n.forward)-1]
	n.back = append(n.back, n.active)
	n.active = target
	return nil
}

// enter performs the canvas switch without touching the stacks.
func (n *Navigator) enter(ctx context.Context, id string) error {
	if n.saver != nil {
		n.saver.Flush(ctx)
	}
	canvas, err := n.store.LoadCanvas(ctx, id)
	if err != nil {
		return fmt.Errorf("nav: load %s: %w", id, err)
	}
	n.editor.LoadCanvas(canvas)
	n.logger.Info("nav: canvas active", slog.String("canvas", id))
	return nil
}

// Breadcrumb returns the root-to-active path as crumbs.
func (n *Navigator) Breadcrumb() ([]Crumb, error) {
	if n.active == "" {
		return nil, nil
	}
	path, err := n.tree.PathTo(n.active)
	if err != nil {
		return nil, err
	}
	crumbs := make([]Crumb, len(path))
	for i, id := range path {
		name := id
		if node := n.tree.Node(id); node != nil {
			name = node.Name
		}
		crumbs[i] = Crumb{ID: id, Name: name}
	}
	return crumbs, nil
}

// CreateCanvas makes a new canvas under parentID (nil for root),
// persists it and the updated tree, and returns it.
func (n *Navigator) CreateCanvas(ctx context.Context, name string, parentID *string) (*models.Canvas, error) {
	if name == "" {
		name = "New Canvas"
	}
	canvas := models.NewCanvas(models.NewID(), name, parentID)
	saved, err := n.store.SaveCanvas(ctx, canvas)
	if err != nil {
		return nil, fmt.Errorf("nav: create canvas: %w", err)
	}
	if err := n.tree.AddCanvas(saved.ID, parentID, name); err != nil {
		n.discardCanvas(ctx, saved.ID)
		return nil, err
	}
	if err := n.store.SaveTree(ctx, n.tree.Tree()); err != nil {
		_ = n.tree.RemoveCanvas(saved.ID)
		n.discardCanvas(ctx, saved.ID)
		return nil, fmt.Errorf("nav: save tree: %w", err)
	}
	return saved, nil
}

// discardCanvas deletes a document left behind by a failed create. Best
// effort; a leftover file is reported, not fatal.
func (n *Navigator) discardCanvas(ctx context.Context, id string) {
	if err := n.store.DeleteCanvas(ctx, id); err != nil {
		n.logger.Warn("nav: orphaned canvas not removed",
			slog.String("canvas", id), slog.String("error", err.Error()))
	}
}

// CreateFolder creates a child canvas of the active one and inserts a
// folder element targeting it at the given position.
func (n *Navigator) CreateFolder(ctx context.Context, name string, x, y float64) (*models.Element, error) {
	if n.active == "" {
		return nil, fmt.Errorf("nav: no active canvas: %w", apperr.ErrInvalidInput)
	}
	parent := n.active
	child, err := n.CreateCanvas(ctx, name, &parent)
	if err != nil {
		return nil, err
	}
	folder := &models.Element{
		Type:           models.TypeFolder,
		X:              x,
		Y:              y,
		Width:          160,
		Height:         120,
		TargetCanvasID: child.ID,
	}
	if err := n.editor.InsertElement(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteCanvas removes a canvas document and its tree node; the node's
// children re-parent to its parent (or the roots) per the forest rule.
func (n *Navigator) DeleteCanvas(ctx context.Context, id string) error {
	if err := n.tree.RemoveCanvas(id); err != nil {
		return err
	}
	if err := n.store.DeleteCanvas(ctx, id); err != nil {
		return err
	}
	if err := n.store.SaveTree(ctx, n.tree.Tree()); err != nil {
		return fmt.Errorf("nav: save tree: %w", err)
	}
	return nil
}
