// Package metrics measures the pixel size of one logical grid cell.
//
// A logical cell is two character columns wide: every cell renders as a glyph
// followed by a spacer, which brings monospace characters (narrower than they
// are tall) close to a square aspect ratio. Cell size is measured from the
// active font, never configured directly, so it must be re-measured whenever
// the font size or zoom changes.
package metrics

import (
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

const (
	// Representative is the glyph whose rendered size defines a character.
	Representative = 'M'

	// CellColumns is the number of character columns in one logical cell.
	CellColumns = 2
)

// Provider measures the current logical cell size.
type Provider interface {
	Measure() (geom.Size, error)
}

// Sizer is implemented by providers whose font size can change at runtime.
type Sizer interface {
	Provider
	FontSize() float64
	SetFontSize(pt float64)
}

// CellFromChar converts the size of one representative character into a
// logical cell size.
func CellFromChar(char geom.Size) geom.Size {
	return geom.Size{W: char.W * CellColumns, H: char.H}
}

// CharFromCell is the inverse of [CellFromChar].
func CharFromCell(cell geom.Size) geom.Size {
	return geom.Size{W: cell.W / CellColumns, H: cell.H}
}

// Validate reports an INVALID_METRICS error for zero, negative or non-finite
// cell sizes. Such a size leaves the pixel-to-cell mapping undefined, so
// callers must not build a grid from it.
func Validate(cell geom.Size) error {
	if !cell.Valid() {
		return errors.New(errors.ErrCodeInvalidMetrics, "cell size %vx%v is not positive", cell.W, cell.H)
	}
	return nil
}

// Fixed reports a configured character size. It is used for terminals that
// address whole character cells and in tests.
type Fixed struct {
	Char geom.Size
}

// Measure returns the logical cell for the configured character size.
func (f Fixed) Measure() (geom.Size, error) {
	cell := CellFromChar(f.Char)
	if err := Validate(cell); err != nil {
		return geom.Size{}, err
	}
	return cell, nil
}

var _ Provider = Fixed{}
