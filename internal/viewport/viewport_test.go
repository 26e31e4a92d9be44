package viewport

import (
	"math"
	"testing"

	"github.com/halvard/tavla/internal/models"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func defaultVP() *Viewport {
	return New(models.DefaultViewBox(), 1920, 1080)
}

func TestScreenWorldRoundTrip(t *testing.T) {
	v := defaultVP()
	v.Pan(100, 50)
	v.ZoomAt(1.5, models.Point{X: 400, Y: 300})

	p := models.Point{X: 123, Y: 456}
	back := v.WorldToScreen(v.ScreenToWorld(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("round trip %v -> %v", p, back)
	}
}

func TestPanShiftsViewbox(t *testing.T) {
	v := defaultVP()
	// 1:1 mapping: 1920 world units across 1920 px.
	v.Pan(100, 0)
	if !near(v.Box().X, -100) {
		t.Errorf("x = %v, want -100", v.Box().X)
	}
	v.Pan(0, -50)
	if !near(v.Box().Y, 50) {
		t.Errorf("y = %v, want 50", v.Box().Y)
	}
}

func TestZoomInHalvesViewbox(t *testing.T) {
	v := defaultVP()
	v.ZoomAt(2, models.Point{X: 960, Y: 540})
	if !near(v.Box().Width, 960) || !near(v.Box().Height, 540) {
		t.Errorf("box = %+v, want 960x540", v.Box())
	}
}

func TestZoomKeepsAnchorStationary(t *testing.T) {
	v := defaultVP()
	screenPt := models.Point{X: 300, Y: 200}
	before := v.ScreenToWorld(screenPt)

	v.ZoomAt(1.7, screenPt)

	after := v.ScreenToWorld(screenPt)
	if !near(before.X, after.X) || !near(before.Y, after.Y) {
		t.Errorf("anchor moved: %v -> %v", before, after)
	}
}

func TestZoomJitterIgnored(t *testing.T) {
	v := defaultVP()
	before := v.Box()
	v.ZoomAt(1.005, models.Point{X: 100, Y: 100})
	if v.Box() != before {
		t.Error("jitter-band zoom changed the viewbox")
	}
	v.ZoomAt(0.995, models.Point{X: 100, Y: 100})
	if v.Box() != before {
		t.Error("jitter-band zoom out changed the viewbox")
	}
}

func TestZoomClampedToBounds(t *testing.T) {
	v := defaultVP()
	for i := 0; i < 20; i++ {
		v.ZoomAt(2, models.Point{X: 960, Y: 540})
	}
	if v.Box().Width < MinViewSize || v.Box().Height < MinViewSize {
		t.Errorf("zoomed past minimum: %+v", v.Box())
	}

	v = defaultVP()
	for i := 0; i < 20; i++ {
		v.ZoomAt(0.5, models.Point{X: 960, Y: 540})
	}
	if v.Box().Width > MaxViewSize || v.Box().Height > MaxViewSize {
		t.Errorf("zoomed past maximum: %+v", v.Box())
	}
}

func TestZoomNonPositiveScaleIgnored(t *testing.T) {
	v := defaultVP()
	before := v.Box()
	v.ZoomAt(0, models.Point{})
	v.ZoomAt(-1, models.Point{})
	if v.Box() != before {
		t.Error("non-positive scale changed the viewbox")
	}
}

func TestReset(t *testing.T) {
	v := defaultVP()
	v.Pan(500, 500)
	v.ZoomAt(3, models.Point{X: 10, Y: 10})

	v.Reset(models.DefaultViewBox())
	if v.Box() != models.DefaultViewBox() {
		t.Errorf("box = %+v after reset", v.Box())
	}
}

func TestResizeChangesMapping(t *testing.T) {
	v := defaultVP()
	v.Resize(960, 540)
	// Same viewbox over half the pixels: 2 world units per pixel.
	p := v.ScreenToWorld(models.Point{X: 1, Y: 1})
	if !near(p.X, 2) || !near(p.Y, 2) {
		t.Errorf("world point = %v, want (2,2)", p)
	}
}
