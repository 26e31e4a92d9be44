package render

import (
	"strings"
	"testing"

	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/scene"
	"github.com/halvard/tavla/internal/selection"
	"github.com/halvard/tavla/internal/viewport"
)

func buildScene(t *testing.T, els ...*models.Element) *scene.Scene {
	t.Helper()
	s := scene.New()
	s.Replace(els)
	if err := s.Validate(); err != nil {
		t.Fatalf("fixture scene: %v", err)
	}
	return s
}

func nodeByID(nodes []Node, id string) *Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

func TestProjectKinds(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "r", Type: models.TypeRectangle, X: 1, Y: 2, Width: 3, Height: 4, Stroke: "#333", StrokeWidth: 2},
		&models.Element{ID: "f", Type: models.TypeFolder, Width: 10, Height: 10},
		&models.Element{ID: "i", Type: models.TypeImage, Width: 5, Height: 5, Src: "/api/images/a.png"},
		&models.Element{ID: "l", Type: models.TypeLine, X: 0, Y: 0, Width: 10, Height: 0},
		&models.Element{ID: "p", Type: models.TypeFreehand, Points: []models.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		&models.Element{ID: "t", Type: models.TypeText, Text: "hi", Font: "12px sans-serif"},
	)

	nodes := Project(s)
	if len(nodes) != 6 {
		t.Fatalf("nodes = %d", len(nodes))
	}

	want := map[string]Kind{
		"r": KindRect, "f": KindRect, "i": KindImage,
		"l": KindLine, "p": KindPath, "t": KindText,
	}
	for id, kind := range want {
		n := nodeByID(nodes, id)
		if n == nil || n.Kind != kind {
			t.Errorf("%s: node = %+v, want kind %s", id, n, kind)
		}
	}
	if n := nodeByID(nodes, "i"); n.Href != "/api/images/a.png" {
		t.Errorf("image href = %q", n.Href)
	}
	if n := nodeByID(nodes, "p"); len(n.Points) != 2 {
		t.Errorf("path points = %v", n.Points)
	}
}

func TestProjectOrderFollowsZ(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "front", Type: models.TypeRectangle, ZIndex: 5},
		&models.Element{ID: "back", Type: models.TypeRectangle, ZIndex: 1},
	)
	nodes := Project(s)
	if nodes[0].ID != "back" || nodes[1].ID != "front" {
		t.Errorf("order = %s,%s", nodes[0].ID, nodes[1].ID)
	}
}

func TestProjectGroupPickSizedToChildBounds(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "a", Type: models.TypeRectangle, X: 0, Y: 0, Width: 10, Height: 10, GroupID: "g"},
		&models.Element{ID: "b", Type: models.TypeRectangle, X: 40, Y: 20, Width: 10, Height: 10, GroupID: "g"},
		&models.Element{ID: "g", Type: models.TypeGroup, Children: []string{"a", "b"}},
	)
	n := nodeByID(Project(s), "g")
	if n == nil || n.Kind != KindGroupPick {
		t.Fatalf("group node = %+v", n)
	}
	if n.X != 0 || n.Y != 0 || n.Width != 50 || n.Height != 30 {
		t.Errorf("group bounds = %g,%g %gx%g", n.X, n.Y, n.Width, n.Height)
	}
}

func TestProjectImageFilter(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "i", Type: models.TypeImage, Width: 5, Height: 5,
			Filters: models.Filters{"grayscale": 40, "blur": 2}},
		&models.Element{ID: "plain", Type: models.TypeImage, Width: 5, Height: 5},
	)
	nodes := Project(s)
	if n := nodeByID(nodes, "i"); n.Filter != "grayscale(40%) blur(2px)" {
		t.Errorf("filter = %q", n.Filter)
	}
	if n := nodeByID(nodes, "plain"); n.Filter != "" {
		t.Errorf("plain filter = %q", n.Filter)
	}
}

func TestFlipTransform(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "h", Type: models.TypeRectangle, X: 10, Y: 10, Width: 20, Height: 10, FlipH: true},
		&models.Element{ID: "none", Type: models.TypeRectangle, X: 0, Y: 0, Width: 5, Height: 5},
	)
	nodes := Project(s)
	if n := nodeByID(nodes, "h"); n.Transform != "translate(20 15) scale(-1 1) translate(-20 -15)" {
		t.Errorf("transform = %q", n.Transform)
	}
	if n := nodeByID(nodes, "none"); n.Transform != "" {
		t.Errorf("unflipped transform = %q", n.Transform)
	}
}

func TestOverlaySelectionVisuals(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "r", Type: models.TypeRectangle, Width: 10, Height: 10},
		&models.Element{ID: "i", Type: models.TypeImage, X: 20, Width: 10, Height: 10},
		&models.Element{ID: "f", Type: models.TypeFolder, X: 40, Width: 10, Height: 10},
	)
	sel := selection.New()
	sel.SelectAll([]string{"r", "i", "f"}, selection.Replace)
	vp := viewport.New(models.DefaultViewBox(), 1920, 1080)

	out := Overlay(s, sel, vp, nil, true)

	kinds := map[string]OverlayKind{}
	for _, n := range out {
		if n.Kind == OverlayHighlight || n.Kind == OverlayRect || n.Kind == OverlayThickBorder {
			kinds[n.ElementID] = n.Kind
		}
	}
	if kinds["r"] != OverlayHighlight {
		t.Errorf("rect visual = %s", kinds["r"])
	}
	if kinds["i"] != OverlayRect {
		t.Errorf("image visual = %s", kinds["i"])
	}
	if kinds["f"] != OverlayThickBorder {
		t.Errorf("folder visual = %s", kinds["f"])
	}

	// Multi-selection shows no resize handles.
	for _, n := range out {
		if n.Kind == OverlayResizeHandle {
			t.Fatal("handles rendered for multi-selection")
		}
	}
}

func TestOverlaySoleSelectionHandles(t *testing.T) {
	s := buildScene(t, &models.Element{ID: "r", Type: models.TypeRectangle, X: 0, Y: 0, Width: 100, Height: 50})
	sel := selection.New()
	sel.Select("r", selection.Replace)
	vp := viewport.New(models.DefaultViewBox(), 1920, 1080)

	out := Overlay(s, sel, vp, nil, true)

	handles := map[HandleName][2]float64{}
	for _, n := range out {
		if n.Kind == OverlayResizeHandle {
			handles[n.Handle] = [2]float64{n.X, n.Y}
		}
	}
	if len(handles) != 8 {
		t.Fatalf("handles = %d, want 8", len(handles))
	}
	if handles[HandleSE] != [2]float64{100, 50} {
		t.Errorf("se = %v", handles[HandleSE])
	}
	if handles[HandleN] != [2]float64{50, 0} {
		t.Errorf("n = %v", handles[HandleN])
	}

	// Handles can be toggled off while the selection stays.
	out = Overlay(s, sel, vp, nil, false)
	for _, n := range out {
		if n.Kind == OverlayResizeHandle {
			t.Fatal("handles rendered while hidden")
		}
	}
}

func TestOverlayMarquee(t *testing.T) {
	s := buildScene(t)
	vp := viewport.New(models.DefaultViewBox(), 1920, 1080)
	m := &scene.Rect{X: 5, Y: 6, Width: 70, Height: 80}

	out := Overlay(s, selection.New(), vp, m, true)
	if len(out) != 1 || out[0].Kind != OverlayMarquee || out[0].Width != 70 {
		t.Errorf("overlay = %+v", out)
	}
}

func TestOverlayNoteIndicatorsScreenSpace(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "noted", Type: models.TypeRectangle, X: 100, Y: 200, Width: 50, Height: 20, Note: "check this"},
		&models.Element{ID: "plain", Type: models.TypeRectangle, X: 0, Y: 0, Width: 10, Height: 10},
	)
	vp := viewport.New(models.DefaultViewBox(), 1920, 1080)

	out := Overlay(s, selection.New(), vp, nil, true)
	var indicators []OverlayNode
	for _, n := range out {
		if n.Kind == OverlayNoteIndicator {
			indicators = append(indicators, n)
		}
	}
	if len(indicators) != 1 || indicators[0].ElementID != "noted" {
		t.Fatalf("indicators = %+v", indicators)
	}
	// 1:1 mapping at the default viewbox, anchored top-right.
	if indicators[0].X != 150 || indicators[0].Y != 200 {
		t.Errorf("indicator at %g,%g", indicators[0].X, indicators[0].Y)
	}
}

func TestWriteSVG(t *testing.T) {
	s := buildScene(t,
		&models.Element{ID: "r", Type: models.TypeRectangle, X: 1, Y: 2, Width: 3, Height: 4, Fill: "#fff", Stroke: "#000", StrokeWidth: 1.5, GroupID: "g"},
		&models.Element{ID: "t", Type: models.TypeText, X: 10, Y: 20, Text: "a < b", ZIndex: 1},
		&models.Element{ID: "g", Type: models.TypeGroup, Children: []string{"r"}, ZIndex: 2},
	)

	svg := WriteSVG(Project(s), models.DefaultViewBox())

	for _, want := range []string{
		`viewBox="0 0 1920 1080"`,
		`<rect id="r" x="1" y="2" width="3" height="4" fill="#fff" stroke="#000" stroke-width="1.5"/>`,
		`<text id="t" x="10" y="20">a &lt; b</text>`,
		`fill="transparent" stroke="none"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q\n%s", want, svg)
		}
	}
}

func TestWriteSVGPolyline(t *testing.T) {
	s := buildScene(t, &models.Element{ID: "p", Type: models.TypeFreehand,
		Points: []models.Point{{X: 0, Y: 0}, {X: 5, Y: 10}}, Stroke: "#000"})
	svg := WriteSVG(Project(s), models.DefaultViewBox())
	if !strings.Contains(svg, `<polyline id="p" points="0,0 5,10" fill="none" stroke="#000"/>`) {
		t.Errorf("svg = %s", svg)
	}
}
