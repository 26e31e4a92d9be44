// Package scene implements the authoritative in-memory model of one
// canvas: the back-to-front element list, the id index, and change
// notification. All writers pass through this API; group/child symmetry
// is enforced centrally on every mutation.
package scene

import (
	"fmt"
	"sort"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

// Rect is an axis-aligned bounding box in world units.
type Rect struct {
	X, Y, Width, Height float64
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.Width, o.X+o.Width)
	maxY := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// ChangeListener receives the ids affected by a mutation. A nil or empty
// slice means the whole scene changed (load, undo/redo).
type ChangeListener func(ids []string)

// Scene owns the element list of the active canvas.
type Scene struct {
	elements  []*models.Element
	byID      map[string]*models.Element
	listeners []ChangeListener
	seq       int // insertion counter for z tie-breaks
	order     map[string]int
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		byID:  map[string]*models.Element{},
		order: map[string]int{},
	}
}

// OnChange registers a change listener.
func (s *Scene) OnChange(l ChangeListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Scene) notify(ids []string) {
	for _, l := range s.listeners {
		l(ids)
	}
}

// Len returns the number of elements.
func (s *Scene) Len() int { return len(s.elements) }

// Get returns the element with the given id, or nil.
func (s *Scene) Get(id string) *models.Element { return s.byID[id] }

// Elements returns the live back-to-front element slice. Callers must not
// mutate it; use Snapshot for a deep copy.
func (s *Scene) Elements() []*models.Element { return s.elements }

// Snapshot returns a deep copy of the element list, suitable for history.
func (s *Scene) Snapshot() []*models.Element {
	return models.CloneElements(s.elements)
}

// Replace swaps in a whole new element list (load, undo/redo) and rebuilds
// the id index. The scene takes ownership of els.
func (s *Scene) Replace(els []*models.Element) {
	s.elements = els
	s.byID = make(map[string]*models.Element, len(els))
	s.order = make(map[string]int, len(els))
	s.seq = 0
	for _, e := range els {
		s.byID[e.ID] = e
		s.order[e.ID] = s.seq
		s.seq++
	}
	s.sortByZ()
	s.notify(nil)
}

// Insert adds an element and places it in z-order.
func (s *Scene) Insert(e *models.Element) error {
	if e.ID == "" {
		return fmt.Errorf("scene: insert: missing id: %w", apperr.ErrInvalidInput)
	}
	if _, dup := s.byID[e.ID]; dup {
		return fmt.Errorf("scene: insert %s: %w", e.ID, apperr.ErrAlreadyExists)
	}
	if err := s.checkSymmetry(e); err != nil {
		return err
	}
	s.elements = append(s.elements, e)
	s.byID[e.ID] = e
	s.order[e.ID] = s.seq
	s.seq++
	s.sortByZ()
	s.notify([]string{e.ID})
	return nil
}

// Update applies patch to the element in place and notifies listeners.
// A patch that would break group symmetry is rolled back and refused.
func (s *Scene) Update(id string, patch func(*models.Element)) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("scene: update %s: %w", id, apperr.ErrNotFound)
	}
	prev := e.Clone()
	patch(e)
	if err := s.checkSymmetry(e); err != nil {
		*e = *prev
		return err
	}
	s.notify([]string{id})
	return nil
}

// Remove deletes an element. Removing a grouped child detaches it from its
// owner's child list; removing a group frame frees its children. This keeps
// the group/child symmetry invariant intact through any removal.
func (s *Scene) Remove(id string) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("scene: remove %s: %w", id, apperr.ErrNotFound)
	}
	affected := []string{id}
	if e.GroupID != "" {
		if g := s.byID[e.GroupID]; g != nil {
			g.Children = removeString(g.Children, id)
			affected = append(affected, g.ID)
		}
	}
	if e.IsGroup() {
		for _, cid := range e.Children {
			if c := s.byID[cid]; c != nil && c.GroupID == id {
				c.GroupID = ""
				affected = append(affected, cid)
			}
		}
	}
	for i, el := range s.elements {
		if el.ID == id {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			break
		}
	}
	delete(s.byID, id)
	delete(s.order, id)
	s.notify(affected)
	return nil
}

// Reorder assigns a new z-index to an element and re-sorts.
func (s *Scene) Reorder(id string, newZ int) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("scene: reorder %s: %w", id, apperr.ErrNotFound)
	}
	e.ZIndex = newZ
	s.order[id] = s.seq
	s.seq++
	s.sortByZ()
	s.notify([]string{id})
	return nil
}

// MaxZ returns the largest z-index in the scene, or 0 when empty.
func (s *Scene) MaxZ() int {
	z := 0
	for _, e := range s.elements {
		if e.ZIndex > z {
			z = e.ZIndex
		}
	}
	return z
}

// IterateBackToFront visits elements from back to front.
func (s *Scene) IterateBackToFront(visit func(*models.Element) bool) {
	for _, e := range s.elements {
		if !visit(e) {
			return
		}
	}
}

// IterateFrontToBack visits elements from front to back (pick order).
func (s *Scene) IterateFrontToBack(visit func(*models.Element) bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		if !visit(s.elements[i]) {
			return
		}
	}
}

// Bounds returns the axis-aligned bounding box of an element in world
// units. Group bounds are the union of their children's bounds.
func (s *Scene) Bounds(id string) (Rect, error) {
	e, ok := s.byID[id]
	if !ok {
		return Rect{}, fmt.Errorf("scene: bounds %s: %w", id, apperr.ErrNotFound)
	}
	if e.IsGroup() && len(e.Children) > 0 {
		var acc Rect
		first := true
		for _, cid := range e.Children {
			c, ok := s.byID[cid]
			if !ok {
				continue
			}
			r := Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
			if first {
				acc = r
				first = false
			} else {
				acc = acc.Union(r)
			}
		}
		if !first {
			return acc, nil
		}
	}
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}, nil
}

// Validate checks the group/child symmetry invariants:
// every child id a group names exists, carries the group's id, and no
// group contains itself; every groupId points at a group naming the child.
func (s *Scene) Validate() error {
	for _, e := range s.elements {
		if e.IsGroup() {
			for _, cid := range e.Children {
				if cid == e.ID {
					return fmt.Errorf("scene: group %s contains itself: %w", e.ID, apperr.ErrInvariant)
				}
				c, ok := s.byID[cid]
				if !ok {
					return fmt.Errorf("scene: group %s names missing child %s: %w", e.ID, cid, apperr.ErrInvariant)
				}
				if c.GroupID != e.ID {
					return fmt.Errorf("scene: child %s of group %s has groupId %q: %w", cid, e.ID, c.GroupID, apperr.ErrInvariant)
				}
			}
		}
		if e.GroupID != "" {
			g, ok := s.byID[e.GroupID]
			if !ok || !g.IsGroup() || !containsString(g.Children, e.ID) {
				return fmt.Errorf("scene: element %s has dangling groupId %q: %w", e.ID, e.GroupID, apperr.ErrInvariant)
			}
		}
	}
	return nil
}

// checkSymmetry verifies one element's group links against the rest of
// the scene. A group being assembled inserts its frame before the
// children are re-pointed at it, so a blank child groupId passes on the
// group side; the child side must always point at a group naming it.
func (s *Scene) checkSymmetry(e *models.Element) error {
	if e.IsGroup() {
		for _, cid := range e.Children {
			if cid == e.ID {
				return fmt.Errorf("scene: group %s contains itself: %w", e.ID, apperr.ErrInvariant)
			}
			c, ok := s.byID[cid]
			if !ok {
				return fmt.Errorf("scene: group %s names missing child %s: %w", e.ID, cid, apperr.ErrInvariant)
			}
			if c.GroupID != "" && c.GroupID != e.ID {
				return fmt.Errorf("scene: child %s of group %s has groupId %q: %w", cid, e.ID, c.GroupID, apperr.ErrInvariant)
			}
		}
	}
	if e.GroupID != "" {
		g, ok := s.byID[e.GroupID]
		if !ok || !g.IsGroup() || !containsString(g.Children, e.ID) {
			return fmt.Errorf("scene: element %s has dangling groupId %q: %w", e.ID, e.GroupID, apperr.ErrInvariant)
		}
	}
	return nil
}

// sortByZ keeps the slice in back-to-front order: ascending z-index,
// insertion order breaking ties.
func (s *Scene) sortByZ() {
	sort.SliceStable(s.elements, func(i, j int) bool {
		a, b := s.elements[i], s.elements[j]
		if a.ZIndex != b.ZIndex {
			return a.ZIndex < b.ZIndex
		}
		return s.order[a.ID] < s.order[b.ID]
	})
}

func removeString(ss []string, v string) []string {
	for i, s := range ss {
		if s == v {
			return append(ss[:i], ss[i+1:]...)
		}
	}
	return ss
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
