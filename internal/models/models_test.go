package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestElementJSONRoundTrip(t *testing.T) {
	in := `{"id":"e1","type":"image","x":10,"y":20,"width":300,"height":200,"zIndex":3,"src":"/api/images/a.png","filters":{"grayscale":100}}`

	var el Element
	if err := json.Unmarshal([]byte(in), &el); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if el.ID != "e1" || el.Type != TypeImage || el.Width != 300 {
		t.Errorf("decoded element = %+v", el)
	}
	if el.Filters["grayscale"] != 100 {
		t.Errorf("filters = %v", el.Filters)
	}

	out, err := json.Marshal(&el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Element
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if back.Src != el.Src || back.ZIndex != el.ZIndex {
		t.Errorf("round trip changed element: %+v", back)
	}
}

func TestElementPreservesUnknownFields(t *testing.T) {
	in := `{"id":"e1","type":"rectangle","x":0,"y":0,"width":10,"height":10,"futureField":{"nested":true},"anotherOne":42}`

	var el Element
	if err := json.Unmarshal([]byte(in), &el); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(el.Extra) != 2 {
		t.Fatalf("extra = %v, want 2 preserved fields", el.Extra)
	}

	out, err := json.Marshal(&el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"futureField":{"nested":true}`) {
		t.Errorf("futureField lost: %s", s)
	}
	if !strings.Contains(s, `"anotherOne":42`) {
		t.Errorf("anotherOne lost: %s", s)
	}
}

func TestElementExtraCannotShadowKnownFields(t *testing.T) {
	el := Element{
		ID: "e1", Type: TypeRectangle, X: 1, Y: 2, Width: 3, Height: 4,
		Extra: map[string]json.RawMessage{"id": json.RawMessage(`"spoofed"`)},
	}
	out, err := json.Marshal(&el)
	if err != nil {
		t.Fatal(err)
	}
	var back Element
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != "e1" {
		t.Errorf("id = %q, extra field shadowed a known one", back.ID)
	}
}

func TestElementClone(t *testing.T) {
	el := &Element{
		ID: "e1", Type: TypeFreehand, X: 0, Y: 0, Width: 10, Height: 10,
		Points:   []Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
		Filters:  Filters{"blur": 5},
		Children: []string{"a", "b"},
	}
	c := el.Clone()
	c.Points[0].X = 99
	c.Filters["blur"] = 0
	c.Children[0] = "z"

	if el.Points[0].X != 1 {
		t.Error("clone shares points")
	}
	if el.Filters["blur"] != 5 {
		t.Error("clone shares filters")
	}
	if el.Children[0] != "a" {
		t.Error("clone shares children")
	}
}

func TestElementCapabilities(t *testing.T) {
	img := &Element{Type: TypeImage}
	if img.CanStroke() {
		t.Error("images cannot take a stroke highlight")
	}
	if !img.NeedsOverlayHighlight() {
		t.Error("images need an overlay highlight")
	}

	folder := &Element{Type: TypeFolder}
	if !folder.ThickensBorder() {
		t.Error("folders thicken their border when selected")
	}

	rect := &Element{Type: TypeRectangle}
	if !rect.CanStroke() || rect.NeedsOverlayHighlight() {
		t.Error("rectangles highlight via their own stroke")
	}
}

func TestNewCanvasDefaults(t *testing.T) {
	c := NewCanvas("main", "Main Canvas", nil)
	if c.Version != CanvasVersion {
		t.Errorf("version = %q", c.Version)
	}
	if c.ViewBox != DefaultViewBox() {
		t.Errorf("viewBox = %+v", c.ViewBox)
	}
	if c.ViewBox.Width != 1920 || c.ViewBox.Height != 1080 {
		t.Errorf("default viewBox = %+v, want 1920x1080", c.ViewBox)
	}
	if c.Created == "" || c.Modified == "" {
		t.Error("timestamps not stamped")
	}
	if c.Elements == nil {
		t.Error("elements should be an empty slice, not nil")
	}
}

func TestCanvasMigrateStampsVersion(t *testing.T) {
	c := &Canvas{ID: "old", Name: "Old"}
	if !c.Migrate() {
		t.Fatal("versionless canvas should report migration")
	}
	if c.Version != CanvasVersion {
		t.Errorf("version = %q", c.Version)
	}
	if c.Migrate() {
		t.Error("second migrate should be a no-op")
	}
}

func TestCanvasClone(t *testing.T) {
	c := NewCanvas("c1", "One", nil)
	c.Elements = []*Element{{ID: "e1", Type: TypeRectangle, Width: 10, Height: 10}}

	cp := c.Clone()
	cp.Elements[0].Width = 99
	cp.Name = "Changed"

	if c.Elements[0].Width != 10 {
		t.Error("clone shares elements")
	}
	if c.Name != "One" {
		t.Error("clone shares header")
	}
}

func TestValidateID(t *testing.T) {
	valid := []string{"main", "a", "canvas-1", "under_score", "abc.png", strings.Repeat("x", 64)}
	for _, id := range valid {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "../etc", "a/b", "a b", "a..b", ".hidden", strings.Repeat("x", 65), "trés"}
	for _, id := range invalid {
		if err := ValidateID(id); err == nil {
			t.Errorf("ValidateID(%q) = nil, want error", id)
		}
	}
}

func TestDefaultTree(t *testing.T) {
	tr := DefaultTree()
	if len(tr.RootCanvases) != 1 || tr.RootCanvases[0] != MainCanvasID {
		t.Errorf("roots = %v", tr.RootCanvases)
	}
	node := tr.Canvases[MainCanvasID]
	if node == nil || node.Name != MainCanvasName {
		t.Errorf("main node = %+v", node)
	}
}

func TestTreeClone(t *testing.T) {
	tr := DefaultTree()
	cp := tr.Clone()
	cp.Canvases[MainCanvasID].Name = "Renamed"
	cp.RootCanvases[0] = "other"

	if tr.Canvases[MainCanvasID].Name != MainCanvasName {
		t.Error("clone shares nodes")
	}
	if tr.RootCanvases[0] != MainCanvasID {
		t.Error("clone shares roots")
	}
}
