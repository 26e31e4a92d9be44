// Package selection tracks the ordered set of selected element ids and
// the visibility rules for selection overlays and resize handles.
package selection

// Mode controls how a pick combines with the existing selection.
type Mode int

const (
	// Replace makes the picked id the sole selection.
	Replace Mode = iota
	// Add unions the picked id into the selection.
	Add
	// Toggle flips the picked id's membership.
	Toggle
)

// Set is an ordered selection of element ids.
type Set struct {
	ids     []string
	present map[string]struct{}
}

// New returns an empty selection.
func New() *Set {
	return &Set{present: map[string]struct{}{}}
}

// Select applies a pick in the given mode.
func (s *Set) Select(id string, mode Mode) {
	switch mode {
	case Replace:
		s.Clear()
		s.add(id)
	case Add:
		s.add(id)
	case Toggle:
		if s.Contains(id) {
			s.Remove(id)
		} else {
			s.add(id)
		}
	}
}

// SelectAll replaces the selection with the given ids in order (marquee).
func (s *Set) SelectAll(ids []string, mode Mode) {
	if mode == Replace {
		s.Clear()
	}
	for _, id := range ids {
		s.Select(id, modeForMember(mode))
	}
}

// modeForMember maps a bulk mode to the per-id mode: a bulk Replace has
// already cleared, so each member is an Add.
func modeForMember(mode Mode) Mode {
	if mode == Replace {
		return Add
	}
	return mode
}

func (s *Set) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.present[id]; ok {
		return
	}
	s.ids = append(s.ids, id)
	s.present[id] = struct{}{}
}

// Remove drops an id from the selection.
func (s *Set) Remove(id string) {
	if _, ok := s.present[id]; !ok {
		return
	}
	delete(s.present, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.ids = s.ids[:0]
	s.present = map[string]struct{}{}
}

// Contains reports membership.
func (s *Set) Contains(id string) bool {
	_, ok := s.present[id]
	return ok
}

// IDs returns the selected ids in selection order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the selection size.
func (s *Set) Len() int { return len(s.ids) }

// Sole returns the only selected id when exactly one element is selected.
func (s *Set) Sole() (string, bool) {
	if len(s.ids) == 1 {
		return s.ids[0], true
	}
	return "", false
}

// HandlesVisible reports whether resize handles are shown: only for a
// sole selection, never for empty or multi-selection.
func (s *Set) HandlesVisible() bool { return len(s.ids) == 1 }
