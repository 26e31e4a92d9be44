// Package history implements snapshot-based undo/redo for the active
// canvas: bounded deep-copy snapshots with top-of-stack coalescing and a
// re-entrancy guard around snapshot application.
package history

import (
	"reflect"
	"time"

	"github.com/halvard/tavla/internal/models"
)

// MaxDepth is the default undo stack capacity; the oldest entries drop
// when it is exceeded.
const MaxDepth = 50

// Entry is one immutable snapshot of the elements array.
type Entry struct {
	Elements []*models.Element
	Taken    time.Time
}

// History holds the undo and redo stacks for one canvas.
type History struct {
	undo     []Entry
	redo     []Entry
	maxDepth int
	applying bool
}

// New creates a history with the given capacity; depth <= 0 uses MaxDepth.
func New(depth int) *History {
	if depth <= 0 {
		depth = MaxDepth
	}
	return &History{maxDepth: depth}
}

// RecordState snapshots the given elements onto the undo stack. Identical
// consecutive states coalesce to one entry; recording clears the redo
// stack. Calls made while a snapshot is being applied are ignored.
func (h *History) RecordState(elements []*models.Element) {
	if h.applying {
		return
	}
	snap := models.CloneElements(elements)
	if len(h.undo) > 0 && equalElements(h.undo[len(h.undo)-1].Elements, snap) {
		return
	}
	h.undo = append(h.undo, Entry{Elements: snap, Taken: time.Now()})
	if len(h.undo) > h.maxDepth {
		h.undo = h.undo[len(h.undo)-h.maxDepth:]
	}
	h.redo = h.redo[:0]
}

// DiscardIfNoop drops the top undo entry when it equals the current state.
// Used when a cancelled gesture leaves the scene unchanged.
func (h *History) DiscardIfNoop(current []*models.Element) {
	if len(h.undo) == 0 {
		return
	}
	if equalElements(h.undo[len(h.undo)-1].Elements, current) {
		h.undo = h.undo[:len(h.undo)-1]
	}
}

// Undo pops the last snapshot, pushes the current state to redo, and
// returns a deep copy to apply. ok is false when nothing can be undone.
func (h *History) Undo(current []*models.Element) (restored []*models.Element, ok bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, Entry{Elements: models.CloneElements(current), Taken: time.Now()})
	return models.CloneElements(top.Elements), true
}

// Redo is the symmetric inverse of Undo.
func (h *History) Redo(current []*models.Element) (restored []*models.Element, ok bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, Entry{Elements: models.CloneElements(current), Taken: time.Now()})
	return models.CloneElements(top.Elements), true
}

// Apply runs fn with the re-entrancy flag set, so scene change listeners
// firing during snapshot application cannot record new history.
func (h *History) Apply(fn func()) {
	h.applying = true
	defer func() { h.applying = false }()
	fn()
}

// Applying reports whether a snapshot is currently being applied.
func (h *History) Applying() bool { return h.applying }

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the undo stack size.
func (h *History) Depth() int { return len(h.undo) }

// Clear drops both stacks. Called on canvas switch.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

// equalElements compares two element lists by deep equality.
func equalElements(a, b []*models.Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
