package board

import (
	"fmt"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

// SetNote stores free text on an element; one history entry, save owed.
func (e *Editor) SetNote(id, note string) error {
	if e.Scene.Get(id) == nil {
		return fmt.Errorf("board: note %s: %w", id, apperr.ErrNotFound)
	}
	e.History.RecordState(e.Scene.Elements())
	if err := e.Scene.Update(id, func(el *models.Element) { el.Note = note }); err != nil {
		return err
	}
	e.History.DiscardIfNoop(e.Scene.Elements())
	e.scheduleSave()
	return nil
}

// ClearNote removes an element's note.
func (e *Editor) ClearNote(id string) error {
	return e.SetNote(id, "")
}

// Note returns the note text of an element, or "".
func (e *Editor) Note(id string) string {
	if el := e.Scene.Get(id); el != nil {
		return el.Note
	}
	return ""
}
