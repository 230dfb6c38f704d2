// Package drag turns pointer motion into snapped, clamped box positions.
//
// A [Controller] is either idle or dragging exactly one box. A session starts
// on a single primary-button press over a movable box that is not being
// edited, and ends on release. While dragging, every pointer move places the
// box at pointer minus grab offset, snaps it to the cell lattice, clamps it
// into the draggable area and applies the result to both the element and the
// box's cached rectangle in the same call.
package drag

import (
	"math"

	"github.com/matzehuels/dotgrid/pkg/box"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Stacking orders applied to dragged elements.
const (
	NormalZ   = 5
	DraggingZ = 10
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Mover is implemented by elements that can be repositioned by a drag.
type Mover interface {
	box.Element
	// Editing reports whether the element is in inline edit mode.
	Editing() bool
	// MoveTo places the element's top-left corner at p.
	MoveTo(p geom.Point)
	// SetZ sets the element's stacking order.
	SetZ(z int)
	// FreezeWidth pins the element's width so it does not reflow while it
	// moves.
	FreezeWidth(w float64)
}

// Bounds is the area a dragged box must stay inside.
type Bounds struct {
	View geom.Size // viewport size in pixels
	Top  float64   // bottom edge of the reserved strip (navigation bar)
}

// Session is the state of an active drag.
type Session struct {
	Box    *box.Box
	Offset geom.Point // pointer minus box origin at grab time
	mover  Mover
}

// Controller tracks at most one drag session. It is not safe for concurrent
// use.
type Controller struct {
	session *Session
}

// State returns the current state.
func (c *Controller) State() State {
	if c.session != nil {
		return Dragging
	}
	return Idle
}

// Session returns the active session, or nil when idle.
func (c *Controller) Session() *Session { return c.session }

// Press starts a session for b if the press qualifies: b is movable, its
// element supports moving and is not being edited, and clicks is 1 (the press
// is not part of a multi-click sequence). It reports whether a session
// started. A press while already dragging is ignored.
func (c *Controller) Press(b *box.Box, pointer geom.Point, clicks int) bool {
	if c.session != nil || b == nil || !b.Movable || clicks > 1 {
		return false
	}
	m, ok := b.Element.(Mover)
	if !ok || m.Editing() {
		return false
	}
	live := m.Bounds()
	c.session = &Session{
		Box:    b,
		Offset: pointer.Sub(live.Origin()),
		mover:  m,
	}
	m.SetZ(DraggingZ)
	m.FreezeWidth(live.W)
	return true
}

// Move repositions the dragged box for a new pointer position and returns the
// box's resulting rectangle. It reports false when idle.
func (c *Controller) Move(pointer geom.Point, bounds Bounds, cell geom.Size) (geom.Rect, bool) {
	s := c.session
	if s == nil {
		return geom.Rect{}, false
	}
	size := s.Box.Rect.Size()
	if size.W == 0 || size.H == 0 {
		size = s.mover.Bounds().Size()
	}

	target := Snap(pointer.Sub(s.Offset), cell)
	target = Clamp(target, size, bounds)

	s.mover.MoveTo(target)
	s.Box.Refresh()
	return s.Box.Rect, true
}

// Release ends the session and restores the element's normal stacking order.
// It reports whether a session was active.
func (c *Controller) Release() bool {
	s := c.session
	if s == nil {
		return false
	}
	s.mover.SetZ(NormalZ)
	c.session = nil
	return true
}

// Snap rounds p to the nearest multiple of the cell size on each axis. Halves
// round towards positive infinity.
func Snap(p geom.Point, cell geom.Size) geom.Point {
	if !cell.Valid() {
		return p
	}
	return geom.Point{
		X: math.Floor(p.X/cell.W+0.5) * cell.W,
		Y: math.Floor(p.Y/cell.H+0.5) * cell.H,
	}
}

// Clamp constrains a box origin so a box of the given size stays within
// [0, View.W] horizontally and [Top, View.H] vertically. When the box is
// larger than the available area it is pinned to the minimum bound.
func Clamp(p geom.Point, size geom.Size, b Bounds) geom.Point {
	maxX := math.Max(0, b.View.W-size.W)
	maxY := math.Max(b.Top, b.View.H-size.H)
	return geom.Point{
		X: math.Min(math.Max(p.X, 0), maxX),
		Y: math.Min(math.Max(p.Y, b.Top), maxY),
	}
}
