package scene

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/dotgrid/pkg/box"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Document is an ordered set of overlay elements. It is not safe for
// concurrent use.
type Document struct {
	// NavHeight is the height in pixels of the reserved strip at the top of
	// the viewport that dragged boxes may not enter.
	NavHeight float64

	elements []*Element
	byHandle map[string]*Element
	cell     geom.Size
	version  uint64
}

// New returns an empty document.
func New() *Document {
	return &Document{byHandle: make(map[string]*Element)}
}

// Add appends e in document order and returns it. The element gets a fresh
// handle. Class defaults to [Dynamic]; an ID, when set, must be valid and
// unique.
func (d *Document) Add(e *Element) (*Element, error) {
	if e.Class == "" {
		e.Class = Dynamic
	}
	if !e.Class.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidScene, "element %q: unknown class %q", e.ID, e.Class)
	}
	if e.ID != "" {
		if err := errors.ValidateElementID(e.ID); err != nil {
			return nil, err
		}
		if d.Find(e.ID) != nil {
			return nil, errors.New(errors.ErrCodeInvalidScene, "duplicate element id %q", e.ID)
		}
	}
	if e.Rect.W < 0 || e.Rect.H < 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "element %q: negative size %vx%v", e.ID, e.Rect.W, e.Rect.H)
	}
	e.handle = uuid.NewString()
	e.doc = d
	d.elements = append(d.elements, e)
	d.byHandle[e.handle] = e
	d.version++
	return e, nil
}

// Remove deletes the element with the given handle.
func (d *Document) Remove(handle string) bool {
	e, ok := d.byHandle[handle]
	if !ok {
		return false
	}
	delete(d.byHandle, handle)
	for i, el := range d.elements {
		if el == e {
			d.elements = append(d.elements[:i], d.elements[i+1:]...)
			break
		}
	}
	e.doc = nil
	d.version++
	return true
}

// Lookup returns the element with the given handle.
func (d *Document) Lookup(handle string) (*Element, bool) {
	e, ok := d.byHandle[handle]
	return e, ok
}

// Find returns the element with the given scene ID, or nil.
func (d *Document) Find(id string) *Element {
	for _, e := range d.elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Elements returns the elements in document order. The slice aliases the
// document.
func (d *Document) Elements() []*Element { return d.elements }

// Len returns the number of elements.
func (d *Document) Len() int { return len(d.elements) }

// Overlays implements [box.Source].
func (d *Document) Overlays() []box.Element {
	out := make([]box.Element, len(d.elements))
	for i, e := range d.elements {
		out[i] = e
	}
	return out
}

// Version increments on every structural change (add or remove).
func (d *Document) Version() uint64 { return d.version }

// SetCell sets the cell size used to measure auto-sized elements.
func (d *Document) SetCell(cell geom.Size) { d.cell = cell }

// Cell returns the cell size set by SetCell.
func (d *Document) Cell() geom.Size { return d.cell }

// Editing returns the element in edit mode, or nil.
func (d *Document) Editing() *Element {
	for _, e := range d.elements {
		if e.editing {
			return e
		}
	}
	return nil
}

// FocusOrder returns the focusable elements sorted by tab index, document
// order breaking ties. Elements with a zero tab index follow the positive
// ones.
func (d *Document) FocusOrder() []*Element {
	var pos, zero []*Element
	for _, e := range d.elements {
		switch {
		case !e.focusable || e.TabIndex < 0:
		case e.TabIndex == 0:
			zero = append(zero, e)
		default:
			pos = append(pos, e)
		}
	}
	slices.SortStableFunc(pos, func(a, b *Element) int { return cmp.Compare(a.TabIndex, b.TabIndex) })
	return append(pos, zero...)
}

var _ box.Source = (*Document)(nil)
