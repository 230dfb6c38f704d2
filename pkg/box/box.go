// Package box tracks the overlay regions ("boxes") that occlude the grid.
//
// A [Registry] is rebuilt wholesale from a [Source] whenever the set of
// overlay elements changes structurally, and refreshed every frame so that
// dynamic boxes follow their element's live geometry. Static boxes capture
// their geometry once at rebuild time; the layout layer guarantees they never
// move.
package box

import (
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// RectSource reports the live, rendered rectangle of an overlay element.
type RectSource interface {
	Bounds() geom.Rect
}

// Element is an overlay element owned by the layout layer. The registry only
// holds handles to elements; it never creates or destroys them.
type Element interface {
	RectSource
	// Handle returns a stable identifier for the element.
	Handle() string
	// Movable reports the element's class marker: true for dynamic
	// (draggable, editable) elements, false for static ones.
	Movable() bool
}

// Preparer is implemented by elements that normalize their own state when
// they are registered: focusability for every element, and forced
// non-editability with stale edit markers cleared for static elements.
type Preparer interface {
	PrepareOverlay(movable bool)
}

// Source enumerates the overlay elements currently in the document, in
// document order.
type Source interface {
	Overlays() []Element
}

// Box is the registry's record for one overlay element.
type Box struct {
	Element Element
	Rect    geom.Rect
	Movable bool
}

// Refresh re-reads the element's live rectangle.
func (b *Box) Refresh() {
	b.Rect = b.Element.Bounds()
}

// Handle returns the element's handle.
func (b *Box) Handle() string { return b.Element.Handle() }
