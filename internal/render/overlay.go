package render

import (
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/scene"
	"github.com/halvard/tavla/internal/selection"
	"github.com/halvard/tavla/internal/viewport"
)

// OverlayKind discriminates overlay visuals.
type OverlayKind string

// Overlay kinds.
const (
	OverlayHighlight     OverlayKind = "highlight"      // stroke on the element's own shape
	OverlayRect          OverlayKind = "highlight-rect" // separate rectangle (images, groups)
	OverlayThickBorder   OverlayKind = "thick-border"   // folders
	OverlayResizeHandle  OverlayKind = "resize-handle"
	OverlayMarquee       OverlayKind = "marquee"
	OverlayNoteIndicator OverlayKind = "note-indicator"
)

// HandleName identifies one of the eight resize handles.
type HandleName string

// Resize handles, corners then edges.
const (
	HandleNW HandleName = "nw"
	HandleNE HandleName = "ne"
	HandleSW HandleName = "sw"
	HandleSE HandleName = "se"
	HandleN  HandleName = "n"
	HandleS  HandleName = "s"
	HandleW  HandleName = "w"
	HandleE  HandleName = "e"
)

// AllHandles lists every handle name.
var AllHandles = []HandleName{HandleNW, HandleNE, HandleSW, HandleSE, HandleN, HandleS, HandleW, HandleE}

// OverlayNode is one visual in the selection/annotation overlay pass.
// Geometry is in world units except note indicators, which are placed in
// screen space.
type OverlayNode struct {
	Kind      OverlayKind
	ElementID string
	Handle    HandleName
	X, Y      float64
	Width     float64
	Height    float64
}

// Overlay computes the overlay pass: per-member selection visuals, resize
// handles when exactly one element is selected, the live marquee, and
// note indicators at each noted element's screen-space top-right corner.
func Overlay(s *scene.Scene, sel *selection.Set, vp *viewport.Viewport, marquee *scene.Rect, handlesVisible bool) []OverlayNode {
	var out []OverlayNode

	for _, id := range sel.IDs() {
		e := s.Get(id)
		if e == nil {
			continue
		}
		b, err := s.Bounds(id)
		if err != nil {
			continue
		}
		node := OverlayNode{ElementID: id, X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
		switch {
		case e.NeedsOverlayHighlight():
			node.Kind = OverlayRect
		case e.ThickensBorder():
			node.Kind = OverlayThickBorder
		default:
			node.Kind = OverlayHighlight
		}
		out = append(out, node)
	}

	// Resize handles: sole selection only, and only when not toggled off.
	if handlesVisible && sel.HandlesVisible() {
		if id, ok := sel.Sole(); ok {
			if b, err := s.Bounds(id); err == nil {
				for _, h := range AllHandles {
					hx, hy := HandlePosition(h, b)
					out = append(out, OverlayNode{
						Kind:      OverlayResizeHandle,
						ElementID: id,
						Handle:    h,
						X:         hx,
						Y:         hy,
					})
				}
			}
		}
	}

	if marquee != nil {
		out = append(out, OverlayNode{
			Kind:   OverlayMarquee,
			X:      marquee.X,
			Y:      marquee.Y,
			Width:  marquee.Width,
			Height: marquee.Height,
		})
	}

	// Note indicators are screen-space: recomputed here on every viewbox
	// change or window resize because the pass re-runs.
	s.IterateBackToFront(func(e *models.Element) bool {
		if e.Note == "" {
			return true
		}
		p := vp.WorldToScreen(models.Point{X: e.X + e.Width, Y: e.Y})
		out = append(out, OverlayNode{
			Kind:      OverlayNoteIndicator,
			ElementID: e.ID,
			X:         p.X,
			Y:         p.Y,
		})
		return true
	})

	return out
}

// HandlePosition returns the world position of a handle on bounds b.
func HandlePosition(h HandleName, b scene.Rect) (float64, float64) {
	switch h {
	case HandleNW:
		return b.X, b.Y
	case HandleNE:
		return b.X + b.Width, b.Y
	case HandleSW:
		return b.X, b.Y + b.Height
	case HandleSE:
		return b.X + b.Width, b.Y + b.Height
	case HandleN:
		return b.X + b.Width/2, b.Y
	case HandleS:
		return b.X + b.Width/2, b.Y + b.Height
	case HandleW:
		return b.X, b.Y + b.Height/2
	default: // HandleE
		return b.X + b.Width, b.Y + b.Height/2
	}
}
