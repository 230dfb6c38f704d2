package scene

import (
	"strings"
	"unicode/utf8"
)

// BeginEdit enters inline edit mode on a dynamic element that shows no
// image. The current content is saved so [Element.CancelEdit] can restore
// it, and the editable text is exposed with plain line breaks. It reports
// whether edit mode was entered.
func (e *Element) BeginEdit() bool {
	if !e.Movable() || e.Image != "" || e.editing {
		return false
	}
	e.original, e.hasOrig = e.Content, true
	e.Content = brToNewline(e.Content)
	e.editable = true
	e.editing = true
	return true
}

// EditText returns the text being edited.
func (e *Element) EditText() string { return e.Content }

// InsertText appends s at the caret, which sits at the end of the text.
func (e *Element) InsertText(s string) {
	if e.editing {
		e.Content += s
	}
}

// DeleteBack removes the rune before the caret.
func (e *Element) DeleteBack() {
	if !e.editing || e.Content == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(e.Content)
	e.Content = e.Content[:len(e.Content)-size]
}

// FinishEdit leaves edit mode, normalizing the content. On a static element
// it only clears edit state. It reports whether the content changed.
func (e *Element) FinishEdit() bool {
	wasEditing := e.editing
	before := e.original
	e.editable = false
	e.editing = false
	if !e.Movable() || !wasEditing {
		e.original, e.hasOrig = "", false
		return false
	}
	e.Content = NormalizeContent(e.Content)
	e.original, e.hasOrig = "", false
	return e.Content != before
}

// CancelEdit restores the content saved by BeginEdit and leaves edit mode
// the same way FinishEdit does.
func (e *Element) CancelEdit() {
	if e.editing && e.hasOrig {
		e.Content = brToNewline(e.original)
	}
	e.FinishEdit()
}

// EditLines returns the edit buffer split into lines, with a caret marker
// appended to the last line.
func (e *Element) EditLines(caret string) []string {
	lines := strings.Split(e.Content, "\n")
	lines[len(lines)-1] += caret
	return lines
}
