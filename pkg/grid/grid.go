// Package grid stores the character grid: one glyph per logical cell plus a
// parallel array of trail timestamps.
//
// The grid is always rectangular and fully initialized. It is rebuilt, never
// resized in place, when the viewport or the font size changes.
package grid

import (
	"math"
	"time"

	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Grid is a rows x cols array of cells stored row-major.
// The zero value is an empty 0x0 grid.
type Grid struct {
	rows, cols int
	glyphs     []Glyph
	stamps     []time.Time
}

// New allocates a grid with every cell set to Background and no trail stamp.
func New(rows, cols int) *Grid {
	g := &Grid{}
	g.Rebuild(rows, cols)
	return g
}

// Dimensions returns the grid size needed to cover view with cells of the
// given pixel size, rounding up on both axes. An invalid cell size yields an
// empty grid; callers validate metrics before getting here.
func Dimensions(view, cell geom.Size) (rows, cols int) {
	if !cell.Valid() || view.W <= 0 || view.H <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(view.W / cell.W))
	rows = int(math.Ceil(view.H / cell.H))
	return rows, cols
}

// Rebuild discards all cells and stamps and allocates a fresh rows x cols
// grid. Negative dimensions are treated as zero.
func (g *Grid) Rebuild(rows, cols int) {
	rows, cols = max(rows, 0), max(cols, 0)
	g.rows, g.cols = rows, cols
	g.glyphs = make([]Glyph, rows*cols)
	g.stamps = make([]time.Time, rows*cols)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.glyphs) }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// At returns the glyph at column x, row y. Out-of-range reads return
// Background.
func (g *Grid) At(x, y int) Glyph {
	if !g.InBounds(x, y) {
		return Background
	}
	return g.glyphs[y*g.cols+x]
}

// Set writes the glyph at column x, row y. Out-of-range writes are skipped and
// reported as false.
func (g *Grid) Set(x, y int, glyph Glyph) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.glyphs[y*g.cols+x] = glyph
	return true
}

// Stamp records t as the last time a trail mark was set at (x, y).
func (g *Grid) Stamp(x, y int, t time.Time) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.stamps[y*g.cols+x] = t
	return true
}

// Timestamp returns the trail stamp at (x, y) and whether one is recorded.
func (g *Grid) Timestamp(x, y int) (time.Time, bool) {
	if !g.InBounds(x, y) {
		return time.Time{}, false
	}
	t := g.stamps[y*g.cols+x]
	return t, !t.IsZero()
}

// ClearStamp removes the trail stamp at (x, y).
func (g *Grid) ClearStamp(x, y int) {
	if g.InBounds(x, y) {
		g.stamps[y*g.cols+x] = time.Time{}
	}
}

// Row returns the glyphs of row y. The slice aliases the grid.
func (g *Grid) Row(y int) []Glyph {
	if y < 0 || y >= g.rows {
		return nil
	}
	return g.glyphs[y*g.cols : (y+1)*g.cols]
}

// Count returns how many cells currently hold glyph.
func (g *Grid) Count(glyph Glyph) int {
	n := 0
	for _, c := range g.glyphs {
		if c == glyph {
			n++
		}
	}
	return n
}

// Equal reports whether both grids have the same shape and glyphs. Trail
// stamps are not compared.
func (g *Grid) Equal(o *Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.glyphs {
		if g.glyphs[i] != o.glyphs[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of g, stamps included.
func (g *Grid) Clone() *Grid {
	c := &Grid{rows: g.rows, cols: g.cols}
	c.glyphs = append([]Glyph(nil), g.glyphs...)
	c.stamps = append([]time.Time(nil), g.stamps...)
	return c
}
