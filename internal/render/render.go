// Package render projects the scene model into a back-to-front vector
// node list and serializes it to SVG. Elements keep their absolute
// positions; groups render as invisible pick rectangles over their
// children's bounds rather than as true parent nodes. Selection visuals
// live in a separate overlay pass.
package render

import (
	"fmt"

	"github.com/halvard/tavla/internal/filters"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/scene"
)

// Kind discriminates vector node shapes.
type Kind string

// Node kinds.
const (
	KindRect      Kind = "rect"
	KindImage     Kind = "image"
	KindLine      Kind = "line"
	KindPath      Kind = "path"
	KindText      Kind = "text"
	KindGroupPick Kind = "group-pick"
)

// Node is one drawable in the vector scene. Its ID equals the element id
// so hit results map straight back to the scene model.
type Node struct {
	ID   string
	Kind Kind

	X, Y, Width, Height float64
	Points              []models.Point

	Transform string // flip scale about center, empty when unflipped
	Filter    string // composed filter stack, empty when none

	Stroke      string
	Fill        string
	StrokeWidth float64
	Href        string // image source
	Text        string
	Font        string
}

// Project renders every scene element to a node, back to front.
func Project(s *scene.Scene) []Node {
	nodes := make([]Node, 0, s.Len())
	s.IterateBackToFront(func(e *models.Element) bool {
		nodes = append(nodes, projectElement(s, e))
		return true
	})
	return nodes
}

func projectElement(s *scene.Scene, e *models.Element) Node {
	n := Node{
		ID:          e.ID,
		X:           e.X,
		Y:           e.Y,
		Width:       e.Width,
		Height:      e.Height,
		Stroke:      e.Stroke,
		Fill:        e.Fill,
		StrokeWidth: e.StrokeWidth,
		Transform:   flipTransform(e),
	}
	switch e.Type {
	case models.TypeImage:
		n.Kind = KindImage
		n.Href = e.Src
		if f := filters.Render(e.Filters); f != "none" {
			n.Filter = f
		}
	case models.TypeRectangle, models.TypeFolder:
		n.Kind = KindRect
	case models.TypeLine:
		n.Kind = KindLine
	case models.TypeFreehand:
		n.Kind = KindPath
		n.Points = e.Points
	case models.TypeText:
		n.Kind = KindText
		n.Text = e.Text
		n.Font = e.Font
	case models.TypeGroup:
		n.Kind = KindGroupPick
		if b, err := s.Bounds(e.ID); err == nil {
			n.X, n.Y, n.Width, n.Height = b.X, b.Y, b.Width, b.Height
		}
	default:
		n.Kind = KindRect
	}
	return n
}

// flipTransform builds the center-anchored scale for flipH/flipV.
func flipTransform(e *models.Element) string {
	if !e.FlipH && !e.FlipV {
		return ""
	}
	sx, sy := 1.0, 1.0
	if e.FlipH {
		sx = -1
	}
	if e.FlipV {
		sy = -1
	}
	cx := e.X + e.Width/2
	cy := e.Y + e.Height/2
	return fmt.Sprintf("translate(%g %g) scale(%g %g) translate(%g %g)", cx, cy, sx, sy, -cx, -cy)
}
