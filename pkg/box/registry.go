package box

import (
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Registry holds one Box per overlay element in document order.
// It is not safe for concurrent use.
type Registry struct {
	boxes []*Box
	rects []geom.Rect
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Rebuild discards every box and re-scans src. Elements that left the
// document since the last rebuild are dropped. A nil source or an empty
// document yields an empty registry. Rebuild returns the number of boxes.
func (r *Registry) Rebuild(src Source) int {
	r.boxes = r.boxes[:0]
	if src == nil {
		return 0
	}
	for _, el := range src.Overlays() {
		if el == nil {
			continue
		}
		movable := el.Movable()
		if p, ok := el.(Preparer); ok {
			p.PrepareOverlay(movable)
		}
		r.boxes = append(r.boxes, &Box{
			Element: el,
			Rect:    el.Bounds(),
			Movable: movable,
		})
	}
	return len(r.boxes)
}

// Refresh re-reads the live rectangle of every dynamic box. Static boxes keep
// the geometry captured at rebuild time.
func (r *Registry) Refresh() {
	for _, b := range r.boxes {
		if b.Movable {
			b.Refresh()
		}
	}
}

// Len returns the number of registered boxes.
func (r *Registry) Len() int { return len(r.boxes) }

// Boxes returns the registered boxes in document order. The slice aliases the
// registry and is invalidated by Rebuild.
func (r *Registry) Boxes() []*Box { return r.boxes }

// At returns the i-th box in document order.
func (r *Registry) At(i int) *Box { return r.boxes[i] }

// Find returns the box whose element has the given handle.
func (r *Registry) Find(handle string) (*Box, bool) {
	for _, b := range r.boxes {
		if b.Element.Handle() == handle {
			return b, true
		}
	}
	return nil, false
}

// HitTest returns the topmost box whose rectangle contains p. Later boxes in
// document order paint over earlier ones, so the search runs backwards.
func (r *Registry) HitTest(p geom.Point) (*Box, bool) {
	for i := len(r.boxes) - 1; i >= 0; i-- {
		if r.boxes[i].Rect.Contains(p) {
			return r.boxes[i], true
		}
	}
	return nil, false
}

// Rects returns the current rectangle of every box in document order. The
// returned slice is reused by the next call.
func (r *Registry) Rects() []geom.Rect {
	r.rects = r.rects[:0]
	for _, b := range r.boxes {
		r.rects = append(r.rects, b.Rect)
	}
	return r.rects
}

// Movable returns the number of dynamic boxes.
func (r *Registry) Movable() int {
	n := 0
	for _, b := range r.boxes {
		if b.Movable {
			n++
		}
	}
	return n
}
