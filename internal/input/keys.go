package input

import "strings"

// KeyDown routes a keyboard shortcut to the editor. key is the lowercase
// key name ("z", "y", "g", "h", "v", "escape"). editableFocus reports
// whether an editable text field currently has focus; shortcuts other
// than Escape are inert then, text editing owns the keyboard.
// Returns true when the event was consumed.
func (r *Router) KeyDown(key string, mods Modifiers, editableFocus bool) bool {
	key = strings.ToLower(key)

	if key == "escape" {
		r.Cancel()
		return true
	}
	if editableFocus {
		return false
	}
	// Undo and redo are unavailable mid-gesture; input focus is
	// exclusive while a drag or resize is active.
	if r.state != Idle && r.state != PressedOnElement && r.state != PressedOnEmpty {
		return false
	}

	switch {
	case mods.Ctrl && !mods.Shift && key == "z":
		return r.editor.Undo()
	case mods.Ctrl && mods.Shift && key == "z", mods.Ctrl && key == "y":
		return r.editor.Redo()
	case mods.Ctrl && !mods.Shift && key == "g":
		_, err := r.editor.Group()
		return err == nil
	case mods.Ctrl && mods.Shift && key == "g":
		return r.editor.UngroupSelection() == nil
	case mods.Ctrl && mods.Shift && key == "h":
		return r.editor.FlipHorizontal() == nil
	case mods.Alt && key == "v":
		return r.editor.FlipVertical() == nil
	case key == "delete", key == "backspace":
		return r.editor.DeleteSelection() == nil
	}
	return false
}
