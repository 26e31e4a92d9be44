package models

import "time"

// CanvasVersion is the current canvas document version. Documents read
// without a version are migrated in place (see Canvas.Migrate).
const CanvasVersion = "1.0.0"

// Default viewbox for new canvases.
const (
	DefaultViewWidth  = 1920
	DefaultViewHeight = 1080
)

// ViewBox is the world-space rectangle currently mapped to the screen.
type ViewBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewBox returns the viewbox assigned to freshly created canvases.
func DefaultViewBox() ViewBox {
	return ViewBox{X: 0, Y: 0, Width: DefaultViewWidth, Height: DefaultViewHeight}
}

// Canvas is one 2D surface: its viewbox plus the element list in z-order
// from back to front. Timestamps are RFC 3339 strings as written by the
// store.
type Canvas struct {
	Version  string     `json:"version"`
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	ParentID *string    `json:"parentId"`
	Created  string     `json:"created"`
	Modified string     `json:"modified"`
	ViewBox  ViewBox    `json:"viewBox"`
	Elements []*Element `json:"elements"`
}

// NewCanvas builds an empty canvas with the default viewbox and fresh
// timestamps.
func NewCanvas(id, name string, parentID *string) *Canvas {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return &Canvas{
		Version:  CanvasVersion,
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Created:  now,
		Modified: now,
		ViewBox:  DefaultViewBox(),
		Elements: []*Element{},
	}
}

// Migrate stamps the current version onto documents that predate
// versioning. Returns true when the document was changed and must be
// rewritten.
func (c *Canvas) Migrate() bool {
	if c.Version != "" {
		return false
	}
	c.Version = CanvasVersion
	c.Modified = time.Now().UTC().Format(time.RFC3339Nano)
	return true
}

// Touch updates the modified timestamp.
func (c *Canvas) Touch() {
	c.Modified = time.Now().UTC().Format(time.RFC3339Nano)
}

// Clone returns a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	cp := *c
	if c.ParentID != nil {
		p := *c.ParentID
		cp.ParentID = &p
	}
	cp.Elements = CloneElements(c.Elements)
	return &cp
}

// Element returns the element with the given id, or nil.
func (c *Canvas) Element(id string) *Element {
	for _, e := range c.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}
