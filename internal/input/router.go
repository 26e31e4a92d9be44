// Package input implements the pointer/touch/keyboard state machine that
// turns raw events into editor commands: pick, drag, marquee, resize,
// pinch zoom, double-tap, and the keyboard shortcut surface.
package input

import (
	"math"
	"time"

	"github.com/halvard/tavla/internal/board"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/render"
	"github.com/halvard/tavla/internal/scene"
	"github.com/halvard/tavla/internal/selection"
)

// State is the interaction machine state.
type State int

// Machine states.
const (
	Idle State = iota
	PressedOnElement
	PressedOnEmpty
	Dragging
	Resizing
	Pinching
	Marquee
)

// Defaults for the gesture thresholds.
const (
	DefaultDragThreshold = 5.0 // px
	DefaultDoubleTap     = 300 * time.Millisecond
	DefaultTooltipDelay  = 600 * time.Millisecond
	handleHitRadius      = 8.0 // px
	minElementSize       = 1.0 // world units
)

// Modifiers carries the keyboard modifier state of a pointer event.
type Modifiers struct {
	Shift bool
	Ctrl  bool // Ctrl or Cmd
	Alt   bool
}

// selectMode derives the selection mode from modifiers: Shift adds,
// Ctrl/Cmd toggles, otherwise replace.
func (m Modifiers) selectMode() selection.Mode {
	switch {
	case m.Shift:
		return selection.Add
	case m.Ctrl:
		return selection.Toggle
	default:
		return selection.Replace
	}
}

// Config tunes the gesture thresholds.
type Config struct {
	DragThreshold  float64
	DoubleTapDelay time.Duration
	TooltipDelay   time.Duration
}

// Router drives an Editor from raw input events.
type Router struct {
	editor *board.Editor
	cfg    Config

	// NavigateToCanvas is invoked on folder double-tap. Nil disables
	// folder navigation.
	NavigateToCanvas func(canvasID string)

	state State

	downScreen models.Point
	downMode   selection.Mode
	pressedID  string

	dragIDs   []string
	lastWorld models.Point

	resizeID     string
	resizeHandle render.HandleName
	origBounds   scene.Rect

	pinchDist   float64
	pinchCenter models.Point

	marqueeFrom models.Point
	marqueeTo   models.Point

	lastTapTime   time.Time
	lastTapTarget string

	hoverID  string
	restedAt time.Time
}

// NewRouter creates an input router over the editor. Zero config fields
// fall back to the defaults.
func NewRouter(e *board.Editor, cfg Config) *Router {
	if cfg.DragThreshold <= 0 {
		cfg.DragThreshold = DefaultDragThreshold
	}
	if cfg.DoubleTapDelay <= 0 {
		cfg.DoubleTapDelay = DefaultDoubleTap
	}
	if cfg.TooltipDelay <= 0 {
		cfg.TooltipDelay = DefaultTooltipDelay
	}
	return &Router{editor: e, cfg: cfg}
}

// State returns the current machine state.
func (r *Router) State() State { return r.state }

// MarqueeRect returns the live marquee rectangle in screen space, or nil.
func (r *Router) MarqueeRect() *scene.Rect {
	if r.state != Marquee {
		return nil
	}
	rect := normalizeRect(r.marqueeFrom, r.marqueeTo)
	return &rect
}

// PointerDown handles the primary pointer (mouse or first touch) going
// down.
func (r *Router) PointerDown(screen models.Point, mods Modifiers, now time.Time) {
	if r.state != Idle {
		return
	}
	r.downScreen = screen
	r.downMode = mods.selectMode()

	// Resize handles take priority over element picks.
	if h, id, ok := r.handleAt(screen); ok {
		r.state = Resizing
		r.resizeID = id
		r.resizeHandle = h
		if b, err := r.editor.Scene.Bounds(id); err == nil {
			r.origBounds = b
		}
		r.editor.BeginGesture()
		return
	}

	world := r.editor.Viewport.ScreenToWorld(screen)
	r.lastWorld = world
	hit := r.editor.HitTest(world)
	if hit == "" {
		r.state = PressedOnEmpty
		r.pressedID = ""
		return
	}

	// Grouped elements pick as their outermost group.
	hit = r.editor.EffectiveTarget(hit)
	r.pressedID = hit
	r.state = PressedOnElement
	if !r.editor.Selection.Contains(hit) {
		r.editor.Selection.Select(hit, r.downMode)
	}
}

// PointerMove handles primary pointer movement.
func (r *Router) PointerMove(screen models.Point, now time.Time) {
	r.trackHover(screen, now)

	switch r.state {
	case PressedOnElement, PressedOnEmpty:
		if dist(screen, r.downScreen) < r.cfg.DragThreshold {
			return
		}
		if r.state == PressedOnElement && r.editor.Selection.Len() > 0 {
			r.state = Dragging
			r.dragIDs = r.editor.Selection.IDs()
			r.lastWorld = r.editor.Viewport.ScreenToWorld(r.downScreen)
			r.editor.BeginGesture()
			r.applyDrag(screen)
		} else {
			r.state = Marquee
			r.marqueeFrom = r.downScreen
			r.marqueeTo = screen
		}

	case Dragging:
		r.applyDrag(screen)

	case Resizing:
		r.applyResize(screen)

	case Marquee:
		r.marqueeTo = screen
	}
}

// PointerUp finalizes the current gesture.
func (r *Router) PointerUp(screen models.Point, now time.Time) {
	switch r.state {
	case Dragging, Resizing:
		r.editor.CommitGesture()

	case Marquee:
		r.completeMarquee(screen)

	case PressedOnElement:
		r.clickOrDoubleTap(r.pressedID, now)

	case PressedOnEmpty:
		if now.Sub(r.lastTapTime) <= r.cfg.DoubleTapDelay && r.lastTapTarget == "" {
			// Double-tap on empty canvas resets the viewbox.
			r.editor.Viewport.Reset(models.DefaultViewBox())
			r.lastTapTime = time.Time{}
		} else {
			if r.downMode == selection.Replace {
				r.editor.Selection.Clear()
			}
			r.lastTapTime = now
			r.lastTapTarget = ""
		}
	}
	r.reset()
}

// clickOrDoubleTap handles the up of a press that never exceeded the drag
// threshold.
func (r *Router) clickOrDoubleTap(id string, now time.Time) {
	if now.Sub(r.lastTapTime) <= r.cfg.DoubleTapDelay && r.lastTapTarget == id {
		r.lastTapTime = time.Time{}
		el := r.editor.Scene.Get(id)
		if el != nil && el.Type == models.TypeFolder && el.TargetCanvasID != "" && r.NavigateToCanvas != nil {
			r.NavigateToCanvas(el.TargetCanvasID)
			return
		}
		r.editor.ToggleHandles()
		return
	}
	r.lastTapTime = now
	r.lastTapTarget = id
	// Selection already happened on down for unselected elements; a
	// plain click on an already-selected element re-applies the mode.
	if r.editor.Selection.Contains(id) && r.downMode != selection.Add {
		r.editor.Selection.Select(id, r.downMode)
	}
}

// completeMarquee selects every element intersecting the marquee.
func (r *Router) completeMarquee(screen models.Point) {
	r.marqueeTo = screen
	sr := normalizeRect(r.marqueeFrom, r.marqueeTo)
	a := r.editor.Viewport.ScreenToWorld(models.Point{X: sr.X, Y: sr.Y})
	b := r.editor.Viewport.ScreenToWorld(models.Point{X: sr.X + sr.Width, Y: sr.Y + sr.Height})
	world := normalizeRect(a, b)
	ids := r.editor.ElementsIntersecting(world)
	r.editor.Selection.SelectAll(ids, r.downMode)
}

// applyDrag moves the drag set by the incremental world delta.
func (r *Router) applyDrag(screen models.Point) {
	world := r.editor.Viewport.ScreenToWorld(screen)
	dx := world.X - r.lastWorld.X
	dy := world.Y - r.lastWorld.Y
	r.lastWorld = world
	r.editor.MoveBy(r.dragIDs, dx, dy)
}

// applyResize recomputes the target's bbox from the original bounds and
// the pointer's world position, anchored per handle. Corner handles scale
// both axes, edge handles one. Sizes below the minimum clamp; dragging
// through the anchor flips and normalizes.
func (r *Router) applyResize(screen models.Point) {
	w := r.editor.Viewport.ScreenToWorld(screen)
	o := r.origBounds
	x0, y0 := o.X, o.Y
	x1, y1 := o.X+o.Width, o.Y+o.Height

	switch r.resizeHandle {
	case render.HandleNW:
		x0, y0 = w.X, w.Y
	case render.HandleNE:
		x1, y0 = w.X, w.Y
	case render.HandleSW:
		x0, y1 = w.X, w.Y
	case render.HandleSE:
		x1, y1 = w.X, w.Y
	case render.HandleN:
		y0 = w.Y
	case render.HandleS:
		y1 = w.Y
	case render.HandleW:
		x0 = w.X
	case render.HandleE:
		x1 = w.X
	}

	// Normalize a crossed-over box and enforce the minimum size.
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	if x1-x0 < minElementSize {
		x1 = x0 + minElementSize
	}
	if y1-y0 < minElementSize {
		y1 = y0 + minElementSize
	}

	_ = r.editor.Scene.Update(r.resizeID, func(el *models.Element) {
		el.X, el.Y = x0, y0
		el.Width, el.Height = x1-x0, y1-y0
	})
}

// SecondTouchDown enters pinch from any non-resizing state. p1 and p2 are
// the two touch positions in screen space.
func (r *Router) SecondTouchDown(p1, p2 models.Point) {
	if r.state == Resizing {
		return
	}
	if r.state == Dragging {
		r.editor.CancelGesture()
	}
	r.state = Pinching
	r.pinchDist = dist(p1, p2)
	r.pinchCenter = midpoint(p1, p2)
}

// PinchMove applies incremental anchor-preserving zoom. Jitter below the
// viewport's dead band is ignored; the reference distance resets after
// each applied step.
func (r *Router) PinchMove(p1, p2 models.Point) {
	if r.state != Pinching || r.pinchDist <= 0 {
		return
	}
	d := dist(p1, p2)
	if d <= 0 {
		return
	}
	scale := d / r.pinchDist
	if math.Abs(scale-1) < 0.01 {
		return
	}
	r.pinchCenter = midpoint(p1, p2)
	r.editor.Viewport.ZoomAt(scale, r.pinchCenter)
	r.pinchDist = d
}

// TouchUp handles a touch lifting; when one touch remains after a pinch
// the machine returns to Idle.
func (r *Router) TouchUp(remaining int) {
	if r.state == Pinching && remaining <= 1 {
		r.reset()
	}
}

// Cancel aborts the current gesture: Escape, window blur, or touchcancel.
// Dragging and resizing restore the pre-gesture state; a marquee simply
// disappears.
func (r *Router) Cancel() {
	switch r.state {
	case Dragging, Resizing:
		r.editor.CancelGesture()
	}
	r.reset()
}

func (r *Router) reset() {
	r.state = Idle
	r.pressedID = ""
	r.dragIDs = nil
	r.resizeID = ""
	r.pinchDist = 0
}

// handleAt returns the resize handle under the screen point for the sole
// selected element, when handles are visible.
func (r *Router) handleAt(screen models.Point) (render.HandleName, string, bool) {
	if !r.editor.HandlesVisible() {
		return "", "", false
	}
	id, ok := r.editor.Selection.Sole()
	if !ok {
		return "", "", false
	}
	b, err := r.editor.Scene.Bounds(id)
	if err != nil {
		return "", "", false
	}
	for _, h := range render.AllHandles {
		hx, hy := render.HandlePosition(h, b)
		hs := r.editor.Viewport.WorldToScreen(models.Point{X: hx, Y: hy})
		if dist(screen, hs) <= handleHitRadius {
			return h, id, true
		}
	}
	return "", "", false
}

// trackHover updates the tooltip rest timer.
func (r *Router) trackHover(screen models.Point, now time.Time) {
	if r.state != Idle {
		r.hoverID = ""
		return
	}
	world := r.editor.Viewport.ScreenToWorld(screen)
	id := r.editor.HitTest(world)
	if id != r.hoverID {
		r.hoverID = id
	}
	r.restedAt = now
}

// Tooltip returns the id of the element whose tooltip should show: the
// pointer has rested over it for the tooltip delay and no gesture is
// active.
func (r *Router) Tooltip(now time.Time) (string, bool) {
	if r.state != Idle || r.hoverID == "" {
		return "", false
	}
	if now.Sub(r.restedAt) < r.cfg.TooltipDelay {
		return "", false
	}
	return r.hoverID, true
}

func dist(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func midpoint(a, b models.Point) models.Point {
	return models.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func normalizeRect(a, b models.Point) scene.Rect {
	x0, x1 := a.X, b.X
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 := a.Y, b.Y
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return scene.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
