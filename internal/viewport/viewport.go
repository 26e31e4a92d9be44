// Package viewport maps between screen and world coordinates through a
// pan/zoomable viewbox.
package viewport

import "github.com/halvard/tavla/internal/models"

// Zoom clamp bounds: the viewbox width and height each stay within this
// range after any zoom.
const (
	MinViewSize = 100
	MaxViewSize = 10000
)

// ZoomJitter is the dead band around scale 1.0 inside which a zoom is
// ignored as sub-pixel noise.
const ZoomJitter = 0.01

// Viewport holds the current viewbox and the screen size it is mapped to.
type Viewport struct {
	box          models.ViewBox
	screenWidth  float64
	screenHeight float64
}

// New creates a viewport over the given viewbox, mapped to a screen of
// the given pixel size.
func New(box models.ViewBox, screenW, screenH float64) *Viewport {
	if screenW <= 0 {
		screenW = models.DefaultViewWidth
	}
	if screenH <= 0 {
		screenH = models.DefaultViewHeight
	}
	return &Viewport{box: box, screenWidth: screenW, screenHeight: screenH}
}

// Box returns the current viewbox.
func (v *Viewport) Box() models.ViewBox { return v.box }

// SetBox replaces the viewbox (canvas load).
func (v *Viewport) SetBox(box models.ViewBox) { v.box = box }

// Resize updates the screen dimensions (window resize).
func (v *Viewport) Resize(w, h float64) {
	if w > 0 {
		v.screenWidth = w
	}
	if h > 0 {
		v.screenHeight = h
	}
}

// scale returns world units per screen pixel on each axis.
func (v *Viewport) scale() (float64, float64) {
	return v.box.Width / v.screenWidth, v.box.Height / v.screenHeight
}

// Pan shifts the viewbox by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	sx, sy := v.scale()
	v.box.X -= dx * sx
	v.box.Y -= dy * sy
}

// ZoomAt scales the viewbox about the world point under screenPt, keeping
// that point stationary on screen. A scale of 2 halves the viewbox (zoom
// in). Scales inside the jitter band are ignored; the resulting width and
// height are clamped to [MinViewSize, MaxViewSize].
func (v *Viewport) ZoomAt(scale float64, screenPt models.Point) {
	if scale <= 0 {
		return
	}
	if d := scale - 1; d < ZoomJitter && d > -ZoomJitter {
		return
	}
	anchor := v.ScreenToWorld(screenPt)

	newW := clamp(v.box.Width/scale, MinViewSize, MaxViewSize)
	newH := clamp(v.box.Height/scale, MinViewSize, MaxViewSize)

	// Keep the anchor at the same relative position inside the viewbox.
	fx := (anchor.X - v.box.X) / v.box.Width
	fy := (anchor.Y - v.box.Y) / v.box.Height
	v.box.Width = newW
	v.box.Height = newH
	v.box.X = anchor.X - fx*newW
	v.box.Y = anchor.Y - fy*newH
}

// Reset restores the viewbox to the given default.
func (v *Viewport) Reset(box models.ViewBox) { v.box = box }

// ScreenToWorld converts a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(p models.Point) models.Point {
	sx, sy := v.scale()
	return models.Point{
		X: v.box.X + p.X*sx,
		Y: v.box.Y + p.Y*sy,
	}
}

// WorldToScreen converts a world point to screen coordinates.
func (v *Viewport) WorldToScreen(p models.Point) models.Point {
	sx, sy := v.scale()
	return models.Point{
		X: (p.X - v.box.X) / sx,
		Y: (p.Y - v.box.Y) / sy,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
