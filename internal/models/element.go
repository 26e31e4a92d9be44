// Package models defines the domain types for Tavla: elements, canvases,
// and the canvas tree.
package models

import (
	"encoding/json"
	"fmt"
)

// ElementType discriminates the element variants.
type ElementType string

// Element variants.
const (
	TypeImage     ElementType = "image"
	TypeRectangle ElementType = "rectangle"
	TypeLine      ElementType = "line"
	TypeFreehand  ElementType = "freehand"
	TypeText      ElementType = "text"
	TypeFolder    ElementType = "folder"
	TypeGroup     ElementType = "group"
)

// Point is a position in world units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Filters holds a non-destructive per-image filter record keyed by option
// name (grayscale, brightness, ...). Values are clamped to each option's
// declared range before storage; defaults are elided on commit.
type Filters map[string]float64

// Element is one displayable entity on a canvas. It is a tagged variant:
// the common header is always present, variant-specific fields are used
// according to Type. Unknown JSON fields are preserved in Extra so that
// documents written by newer clients round-trip unharmed.
type Element struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	ZIndex int         `json:"zIndex"`

	GroupID string  `json:"groupId,omitempty"`
	Note    string  `json:"note,omitempty"`
	FlipH   bool    `json:"flipH,omitempty"`
	FlipV   bool    `json:"flipV,omitempty"`
	Filters Filters `json:"filters,omitempty"`

	// image
	Src string `json:"src,omitempty"`
	// shapes
	Stroke      string  `json:"stroke,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	// freehand
	Points []Point `json:"points,omitempty"`
	// text
	Text string `json:"text,omitempty"`
	Font string `json:"font,omitempty"`
	// folder
	TargetCanvasID string `json:"targetCanvasId,omitempty"`
	// group
	Children []string `json:"children,omitempty"`

	// Extra carries fields this version does not understand.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownElementFields are the JSON keys owned by Element proper; everything
// else lands in Extra.
var knownElementFields = map[string]struct{}{
	"id": {}, "type": {}, "x": {}, "y": {}, "width": {}, "height": {},
	"zIndex": {}, "groupId": {}, "note": {}, "flipH": {}, "flipV": {},
	"filters": {}, "src": {}, "stroke": {}, "fill": {}, "strokeWidth": {},
	"points": {}, "text": {}, "font": {}, "targetCanvasId": {}, "children": {},
}

// elementAlias avoids marshal recursion.
type elementAlias Element

// UnmarshalJSON decodes the known fields and stashes the rest in Extra.
func (e *Element) UnmarshalJSON(data []byte) error {
	var alias elementAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("models: decode element: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: decode element fields: %w", err)
	}
	for k := range knownElementFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		alias.Extra = raw
	}
	*e = Element(alias)
	return nil
}

// MarshalJSON emits the known fields plus any preserved Extra fields.
func (e Element) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(elementAlias(e))
	if err != nil {
		return nil, fmt.Errorf("models: encode element: %w", err)
	}
	if len(e.Extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, fmt.Errorf("models: merge element fields: %w", err)
	}
	for k, v := range e.Extra {
		if _, owned := knownElementFields[k]; owned {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	if e.Filters != nil {
		c.Filters = make(Filters, len(e.Filters))
		for k, v := range e.Filters {
			c.Filters[k] = v
		}
	}
	if e.Points != nil {
		c.Points = append([]Point(nil), e.Points...)
	}
	if e.Children != nil {
		c.Children = append([]string(nil), e.Children...)
	}
	if e.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(e.Extra))
		for k, v := range e.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

// CloneElements deep-copies a whole element list.
func CloneElements(els []*Element) []*Element {
	out := make([]*Element, len(els))
	for i, e := range els {
		out[i] = e.Clone()
	}
	return out
}

// IsGroup reports whether the element is a group frame.
func (e *Element) IsGroup() bool { return e.Type == TypeGroup }

// CanStroke reports whether the selection highlight can be drawn as a
// stroke directly on the element's own shape. Images cannot be stroked
// and get an overlay rectangle instead.
func (e *Element) CanStroke() bool {
	return e.Type != TypeImage && e.Type != TypeGroup
}

// NeedsOverlayHighlight reports whether selection must draw a separate
// overlay rectangle around the element.
func (e *Element) NeedsOverlayHighlight() bool {
	return e.Type == TypeImage || e.Type == TypeGroup
}

// ThickensBorder reports whether selection is shown by thickening the
// element's own border.
func (e *Element) ThickensBorder() bool { return e.Type == TypeFolder }
