package board

import (
	"fmt"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/filters"
	"github.com/halvard/tavla/internal/models"
)

// filterSession holds the state of an open filter editor: the target
// element and the filter record as it was when the editor opened, so
// Cancel can restore it exactly.
type filterSession struct {
	elementID string
	original  models.Filters
}

// OpenFilterEditor starts a live-preview filter session on an image
// element. The filters present at open time are snapshotted for Cancel.
func (e *Editor) OpenFilterEditor(id string) error {
	el := e.Scene.Get(id)
	if el == nil {
		return fmt.Errorf("board: filter editor %s: %w", id, apperr.ErrNotFound)
	}
	if el.Type != models.TypeImage {
		return fmt.Errorf("board: filter editor %s: not an image: %w", id, apperr.ErrInvalidInput)
	}
	var original models.Filters
	if el.Filters != nil {
		original = make(models.Filters, len(el.Filters))
		for k, v := range el.Filters {
			original[k] = v
		}
	}
	e.filterSession = &filterSession{elementID: id, original: original}
	return nil
}

// FilterEditorOpen reports whether a filter session is active.
func (e *Editor) FilterEditorOpen() bool { return e.filterSession != nil }

// PreviewFilter applies one slider value as a live preview: the scene is
// mutated (and re-rendered) but no history entry is recorded and no save
// scheduled. Values are clamped to the slider's range; unknown keys are
// ignored.
func (e *Editor) PreviewFilter(key string, value float64) error {
	if e.filterSession == nil {
		return fmt.Errorf("board: preview: no filter session: %w", apperr.ErrInvalidInput)
	}
	clamped, ok := filters.Clamp(key, value)
	if !ok {
		return nil
	}
	return e.Scene.Update(e.filterSession.elementID, func(el *models.Element) {
		if el.Filters == nil {
			el.Filters = models.Filters{}
		}
		el.Filters[key] = clamped
	})
}

// PreviewPreset applies a named preset as a live preview, replacing the
// working record.
func (e *Editor) PreviewPreset(name string) error {
	if e.filterSession == nil {
		return fmt.Errorf("board: preview: no filter session: %w", apperr.ErrInvalidInput)
	}
	p, ok := filters.Preset(name)
	if !ok {
		return fmt.Errorf("board: preset %q: %w", name, apperr.ErrNotFound)
	}
	return e.Scene.Update(e.filterSession.elementID, func(el *models.Element) {
		el.Filters = p
	})
}

// CancelFilterEditor restores the record snapshotted at open; previews
// leave no trace and no history entry is added.
func (e *Editor) CancelFilterEditor() error {
	s := e.filterSession
	if s == nil {
		return nil
	}
	e.filterSession = nil
	return e.Scene.Update(s.elementID, func(el *models.Element) {
		el.Filters = s.original
	})
}

// ApplyFilterEditor commits the session: the working record is normalized
// (clamped, defaults elided, emptied to nil), one history entry records
// the pre-open state, and a save is scheduled.
func (e *Editor) ApplyFilterEditor() error {
	s := e.filterSession
	if s == nil {
		return fmt.Errorf("board: apply: no filter session: %w", apperr.ErrInvalidInput)
	}
	e.filterSession = nil

	el := e.Scene.Get(s.elementID)
	if el == nil {
		return fmt.Errorf("board: apply filter %s: %w", s.elementID, apperr.ErrNotFound)
	}
	working := el.Filters

	// History must capture the state before the session opened, not the
	// previewed one; restore, record, then commit the normalized result.
	if err := e.Scene.Update(s.elementID, func(el *models.Element) { el.Filters = s.original }); err != nil {
		return err
	}
	e.History.RecordState(e.Scene.Elements())
	if err := e.Scene.Update(s.elementID, func(el *models.Element) {
		el.Filters = filters.Normalize(working)
	}); err != nil {
		return err
	}
	e.History.DiscardIfNoop(e.Scene.Elements())
	e.scheduleSave()
	return nil
}
