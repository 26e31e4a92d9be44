package board

import (
	"fmt"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/selection"
)

// Group composes the current selection into a new group element: bounds
// are the union of the members' bounds, children keep their z-order, the
// group frame is inserted at the front, and the selection becomes the
// group. Requires at least two selected elements.
func (e *Editor) Group() (*models.Element, error) {
	ids := e.Selection.IDs()
	if len(ids) < 2 {
		return nil, fmt.Errorf("board: group needs 2+ elements, have %d: %w", len(ids), apperr.ErrInvalidInput)
	}
	members := map[string]struct{}{}
	for _, id := range ids {
		if e.Scene.Get(id) == nil {
			return nil, fmt.Errorf("board: group member %s: %w", id, apperr.ErrNotFound)
		}
		members[id] = struct{}{}
	}

	e.History.RecordState(e.Scene.Elements())

	// Children in current z-order, not selection order.
	var children []string
	e.Scene.IterateBackToFront(func(el *models.Element) bool {
		if _, ok := members[el.ID]; ok {
			children = append(children, el.ID)
		}
		return true
	})

	bounds, err := e.Scene.Bounds(children[0])
	if err != nil {
		return nil, err
	}
	for _, id := range children[1:] {
		b, err := e.Scene.Bounds(id)
		if err != nil {
			return nil, err
		}
		bounds = bounds.Union(b)
	}

	group := &models.Element{
		ID:       models.NewID(),
		Type:     models.TypeGroup,
		X:        bounds.X,
		Y:        bounds.Y,
		Width:    bounds.Width,
		Height:   bounds.Height,
		ZIndex:   e.Scene.MaxZ() + 1,
		Children: children,
	}
	if err := e.Scene.Insert(group); err != nil {
		return nil, err
	}
	for _, cid := range children {
		if err := e.Scene.Update(cid, func(el *models.Element) { el.GroupID = group.ID }); err != nil {
			return nil, err
		}
	}
	if err := e.Scene.Validate(); err != nil {
		return nil, err
	}

	e.Selection.Select(group.ID, selection.Replace)
	e.scheduleSave()
	return group, nil
}

// Ungroup dissolves one level of the given group: the frame is removed,
// every child's groupId cleared, and the selection becomes the freed
// children.
func (e *Editor) Ungroup(groupID string) error {
	g := e.Scene.Get(groupID)
	if g == nil {
		return fmt.Errorf("board: ungroup %s: %w", groupID, apperr.ErrNotFound)
	}
	if !g.IsGroup() {
		return fmt.Errorf("board: ungroup %s: not a group: %w", groupID, apperr.ErrInvalidInput)
	}

	e.History.RecordState(e.Scene.Elements())

	freed := append([]string(nil), g.Children...)
	if err := e.Scene.Remove(groupID); err != nil {
		return err
	}
	if err := e.Scene.Validate(); err != nil {
		return err
	}

	e.Selection.Clear()
	for _, cid := range freed {
		e.Selection.Select(cid, selection.Add)
	}
	e.scheduleSave()
	return nil
}

// UngroupSelection ungroups the sole selected group.
func (e *Editor) UngroupSelection() error {
	id, ok := e.Selection.Sole()
	if !ok {
		return fmt.Errorf("board: ungroup: need a sole selected group: %w", apperr.ErrInvalidInput)
	}
	return e.Ungroup(id)
}
