package engine

import "github.com/matzehuels/dotgrid/pkg/geom"

// Command is an input event queued with [Engine.Post] and applied at the
// start of the next [Engine.Step].
type Command interface {
	command()
}

// PointerMove records a new pointer position. While a drag is active it also
// moves the dragged box.
type PointerMove struct {
	At geom.Point
}

// PointerLeave marks the pointer as absent from the surface.
type PointerLeave struct{}

// PointerDown is a primary-button press. Clicks is its position in the
// current click sequence (1 for a single click).
type PointerDown struct {
	At     geom.Point
	Clicks int
}

// PointerUp is a primary-button release.
type PointerUp struct{}

// Resize changes the viewport size in pixels.
type Resize struct {
	Viewport geom.Size
}

// SetFontSize changes the font size of a [metrics.Sizer] provider.
//
// [metrics.Sizer]: github.com/matzehuels/dotgrid/pkg/metrics.Sizer
type SetFontSize struct {
	Points float64
}

// Remeasure re-reads the cell size, for example after a zoom change.
type Remeasure struct{}

// Rebuild re-scans the box source after elements were added or removed.
type Rebuild struct{}

func (PointerMove) command()  {}
func (PointerLeave) command() {}
func (PointerDown) command()  {}
func (PointerUp) command()    {}
func (Resize) command()       {}
func (SetFontSize) command()  {}
func (Remeasure) command()    {}
func (Rebuild) command()      {}
