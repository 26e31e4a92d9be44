// Package board composes the scene model, selection, history, viewport,
// and autosave into the Editor: the single entry point user gestures and
// commands mutate a canvas through. It replaces the window-global
// singletons of older board implementations with explicit dependencies.
package board

import (
	"fmt"
	"log/slog"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/history"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/scene"
	"github.com/halvard/tavla/internal/selection"
	"github.com/halvard/tavla/internal/viewport"
)

// Saver is the autosave hook the editor drives. A nil Saver disables
// persistence (tests, read-only views).
type Saver interface {
	Schedule()
}

// Editor is the live editing session for one canvas.
type Editor struct {
	Scene     *scene.Scene
	Selection *selection.Set
	History   *history.History
	Viewport  *viewport.Viewport

	saver  Saver
	logger *slog.Logger

	// canvas metadata of the loaded document; elements live in Scene.
	meta *models.Canvas

	// gestureDepth tracks nested gesture snapshots so cancel can restore.
	gestureSnapshot []*models.Element
	inGesture       bool

	// filter editor session, nil when closed.
	filterSession *filterSession

	handlesToggledOff bool
}

// New creates an editor with empty state.
func New(saver Saver, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		Scene:     scene.New(),
		Selection: selection.New(),
		History:   history.New(0),
		Viewport:  viewport.New(models.DefaultViewBox(), 0, 0),
		saver:     saver,
		logger:    logger,
	}
}

// SetSaver wires the autosave scheduler after construction (the scheduler
// needs the editor's Document as its snapshot source).
func (e *Editor) SetSaver(s Saver) { e.saver = s }

// LoadCanvas replaces the editing session with the given document:
// scene contents, viewbox, cleared selection and history.
func (e *Editor) LoadCanvas(c *models.Canvas) {
	e.meta = c.Clone()
	e.History.Clear()
	e.Selection.Clear()
	e.filterSession = nil
	e.inGesture = false
	e.History.Apply(func() {
		e.Scene.Replace(models.CloneElements(c.Elements))
	})
	e.Viewport.SetBox(c.ViewBox)
	e.logger.Debug("board: canvas loaded",
		slog.String("canvas", c.ID),
		slog.Int("elements", len(c.Elements)))
}

// CanvasID returns the id of the loaded canvas, or "".
func (e *Editor) CanvasID() string {
	if e.meta == nil {
		return ""
	}
	return e.meta.ID
}

// Document serializes the current state back into a canvas record. This
// is the autosave snapshot source.
func (e *Editor) Document() *models.Canvas {
	if e.meta == nil {
		return nil
	}
	doc := e.meta.Clone()
	doc.Elements = e.Scene.Snapshot()
	doc.ViewBox = e.Viewport.Box()
	return doc
}

// AdoptSaved takes the authoritative record returned by the store and
// refreshes local metadata (modified timestamp) without touching scene
// state.
func (e *Editor) AdoptSaved(saved *models.Canvas) {
	if e.meta == nil || saved == nil || saved.ID != e.meta.ID {
		return
	}
	e.meta.Modified = saved.Modified
	e.meta.Version = saved.Version
}

// scheduleSave notifies the autosave coalescer.
func (e *Editor) scheduleSave() {
	if e.saver != nil {
		e.saver.Schedule()
	}
}

// InsertElement records history, inserts, selects the new element, and
// schedules a save. The element gets a fresh id and front z when unset.
func (e *Editor) InsertElement(el *models.Element) error {
	if el.ID == "" {
		el.ID = models.NewID()
	}
	if el.ZIndex == 0 {
		el.ZIndex = e.Scene.MaxZ() + 1
	}
	e.History.RecordState(e.Scene.Elements())
	if err := e.Scene.Insert(el); err != nil {
		e.History.DiscardIfNoop(e.Scene.Elements())
		return err
	}
	e.Selection.Select(el.ID, selection.Replace)
	e.scheduleSave()
	return nil
}

// DeleteSelection removes every selected element (group frames free their
// children) in one history entry.
func (e *Editor) DeleteSelection() error {
	ids := e.Selection.IDs()
	if len(ids) == 0 {
		return nil
	}
	e.History.RecordState(e.Scene.Elements())
	for _, id := range ids {
		if e.Scene.Get(id) == nil {
			continue
		}
		if err := e.Scene.Remove(id); err != nil {
			return fmt.Errorf("board: delete %s: %w", id, err)
		}
	}
	e.Selection.Clear()
	e.scheduleSave()
	return nil
}

// Undo applies the previous history snapshot.
func (e *Editor) Undo() bool {
	if e.inGesture {
		return false
	}
	restored, ok := e.History.Undo(e.Scene.Elements())
	if !ok {
		return false
	}
	e.applySnapshot(restored)
	return true
}

// Redo applies the next history snapshot.
func (e *Editor) Redo() bool {
	if e.inGesture {
		return false
	}
	restored, ok := e.History.Redo(e.Scene.Elements())
	if !ok {
		return false
	}
	e.applySnapshot(restored)
	return true
}

// applySnapshot swaps in a snapshot atomically with the re-entrancy guard
// held, prunes dangling selection entries, and schedules a save.
func (e *Editor) applySnapshot(els []*models.Element) {
	e.History.Apply(func() {
		e.Scene.Replace(els)
	})
	for _, id := range e.Selection.IDs() {
		if e.Scene.Get(id) == nil {
			e.Selection.Remove(id)
		}
	}
	e.scheduleSave()
}

// BeginGesture snapshots history and state at gesture entry (drag or
// resize). One snapshot per gesture.
func (e *Editor) BeginGesture() {
	if e.inGesture {
		return
	}
	e.inGesture = true
	e.gestureSnapshot = e.Scene.Snapshot()
	e.History.RecordState(e.gestureSnapshot)
}

// CommitGesture finalizes a gesture: the snapshot stays when the scene
// changed, collapses when the gesture was a no-op, and a save is owed.
func (e *Editor) CommitGesture() {
	if !e.inGesture {
		return
	}
	e.inGesture = false
	e.gestureSnapshot = nil
	e.History.DiscardIfNoop(e.Scene.Elements())
	e.scheduleSave()
}

// CancelGesture restores the pre-gesture state (Escape, pointer loss) and
// drops the snapshot taken at entry.
func (e *Editor) CancelGesture() {
	if !e.inGesture {
		return
	}
	e.inGesture = false
	e.History.Apply(func() {
		e.Scene.Replace(e.gestureSnapshot)
	})
	e.gestureSnapshot = nil
	e.History.DiscardIfNoop(e.Scene.Elements())
}

// InGesture reports whether a drag/resize gesture is active.
func (e *Editor) InGesture() bool { return e.inGesture }

// MoveBy applies a world-space delta to each id. Groups move their
// children recursively; children reached through a moved group are not
// moved twice even when independently listed.
func (e *Editor) MoveBy(ids []string, dx, dy float64) {
	moved := map[string]struct{}{}
	var apply func(id string)
	apply = func(id string) {
		if _, done := moved[id]; done {
			return
		}
		el := e.Scene.Get(id)
		if el == nil {
			return
		}
		moved[id] = struct{}{}
		el.X += dx
		el.Y += dy
		if el.IsGroup() {
			for _, cid := range el.Children {
				apply(cid)
			}
		}
	}
	for _, id := range ids {
		apply(id)
	}
}

// ToggleHandles flips handle visibility for the sole selection
// (double-tap on an element).
func (e *Editor) ToggleHandles() {
	e.handlesToggledOff = !e.handlesToggledOff
}

// HandlesVisible reports whether resize handles should render.
func (e *Editor) HandlesVisible() bool {
	return !e.handlesToggledOff && e.Selection.HandlesVisible()
}

// HitTest returns the id of the front-most element whose bounds contain
// the world point, or "".
func (e *Editor) HitTest(p models.Point) string {
	var hit string
	e.Scene.IterateFrontToBack(func(el *models.Element) bool {
		b, err := e.Scene.Bounds(el.ID)
		if err != nil {
			return true
		}
		if p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height {
			hit = el.ID
			return false
		}
		return true
	})
	return hit
}

// EffectiveTarget promotes a picked element to its outermost owning
// group: gestures on grouped elements act on the group as a unit.
func (e *Editor) EffectiveTarget(id string) string {
	el := e.Scene.Get(id)
	for el != nil && el.GroupID != "" {
		parent := e.Scene.Get(el.GroupID)
		if parent == nil {
			break
		}
		id = parent.ID
		el = parent
	}
	return id
}

// ElementsIntersecting returns the ids of elements whose world bounds
// intersect the rect, back to front (marquee selection).
func (e *Editor) ElementsIntersecting(r scene.Rect) []string {
	var out []string
	e.Scene.IterateBackToFront(func(el *models.Element) bool {
		b, err := e.Scene.Bounds(el.ID)
		if err == nil && r.Intersects(b) {
			out = append(out, el.ID)
		}
		return true
	})
	return out
}

// FlipHorizontal toggles flipH on every selected element; one history
// entry per invocation.
func (e *Editor) FlipHorizontal() error { return e.flip(true) }

// FlipVertical toggles flipV on every selected element.
func (e *Editor) FlipVertical() error { return e.flip(false) }

func (e *Editor) flip(horizontal bool) error {
	ids := e.Selection.IDs()
	if len(ids) == 0 {
		return fmt.Errorf("board: flip: empty selection: %w", apperr.ErrInvalidInput)
	}
	e.History.RecordState(e.Scene.Elements())
	for _, id := range ids {
		err := e.Scene.Update(id, func(el *models.Element) {
			if horizontal {
				el.FlipH = !el.FlipH
			} else {
				el.FlipV = !el.FlipV
			}
		})
		if err != nil {
			return err
		}
	}
	e.scheduleSave()
	return nil
}
