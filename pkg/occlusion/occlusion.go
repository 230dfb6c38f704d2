package occlusion

import (
	"math"
	"time"

	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/grid"
)

// DefaultWindow is how long a trail mark keeps rendering after it was set.
const DefaultWindow = 100 * time.Millisecond

// Frame is the input to one update.
type Frame struct {
	Grid       *grid.Grid
	Cell       geom.Size   // logical cell size in pixels
	Boxes      []geom.Rect // box rectangles in registry order
	Pointer    geom.Point  // pointer position in pixels
	HasPointer bool        // false once the pointer has left the surface
	Now        time.Time
}

// Stats summarizes one update.
type Stats struct {
	Inside  int // cells whose center lies in at least one box
	Trail   int // cells rendering as trail before borders are drawn
	Expired int // stamps cleared this frame
	Stamped bool
}

// Engine runs the per-frame classification. The zero value is not usable;
// construct with [New].
type Engine struct {
	window  time.Duration
	indexed bool

	index  Index
	inside []bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWindow sets the trail decay window.
func WithWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithIndex enables the row-bucket spatial index for the membership test.
// Results are identical with and without it.
func WithIndex(enabled bool) Option {
	return func(e *Engine) { e.indexed = enabled }
}

// New creates an engine with the default decay window.
func New(opts ...Option) *Engine {
	e := &Engine{window: DefaultWindow}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns the trail decay window.
func (e *Engine) Window() time.Duration { return e.window }

// Update reclassifies every cell of f.Grid and draws box borders on top.
func (e *Engine) Update(f Frame) Stats {
	g := f.Grid
	var st Stats
	if g == nil || g.Len() == 0 || !f.Cell.Valid() {
		return st
	}
	rows, cols := g.Rows(), g.Cols()

	if cap(e.inside) < g.Len() {
		e.inside = make([]bool, g.Len())
	}
	inside := e.inside[:g.Len()]

	if e.indexed {
		e.index.Build(f.Boxes, f.Cell, rows)
	}

	// Background and blank cells.
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := CellCenter(x, y, f.Cell)
			in := false
			if e.indexed {
				in = e.index.Inside(f.Boxes, y, c)
			} else {
				in = Inside(f.Boxes, c)
			}
			inside[y*cols+x] = in
			if in {
				g.Set(x, y, grid.Blank)
				st.Inside++
			} else {
				g.Set(x, y, grid.Background)
			}
		}
	}

	// Fresh pointer stamp.
	if f.HasPointer {
		x, y := CellAt(f.Pointer, f.Cell)
		if g.InBounds(x, y) && !inside[y*cols+x] {
			g.Set(x, y, grid.Trail)
			g.Stamp(x, y, f.Now)
			st.Stamped = true
		}
	}

	// Trail decay.
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			ts, ok := g.Timestamp(x, y)
			if !ok {
				continue
			}
			if f.Now.Sub(ts) <= e.window && !inside[y*cols+x] {
				if g.At(x, y) == grid.Background {
					g.Set(x, y, grid.Trail)
				}
				st.Trail++
				continue
			}
			g.ClearStamp(x, y)
			st.Expired++
		}
	}

	for _, r := range f.Boxes {
		DrawBorder(g, r, f.Cell)
	}
	return st
}

// CellCenter returns the pixel center of cell (x, y).
func CellCenter(x, y int, cell geom.Size) geom.Point {
	return geom.Point{
		X: float64(x)*cell.W + cell.W/2,
		Y: float64(y)*cell.H + cell.H/2,
	}
}

// CellAt maps a pixel position to the cell containing it. The result may lie
// outside the grid.
func CellAt(p geom.Point, cell geom.Size) (x, y int) {
	return int(math.Floor(p.X / cell.W)), int(math.Floor(p.Y / cell.H))
}

// Inside reports whether p lies in the closed rectangle of any box.
func Inside(boxes []geom.Rect, p geom.Point) bool {
	for _, r := range boxes {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// BorderSpan returns the inclusive cell range a box's border occupies: the
// cells containing the rectangle's left/top and right/bottom edges.
func BorderSpan(r geom.Rect, cell geom.Size) (x0, y0, x1, y1 int) {
	return int(math.Floor(r.X / cell.W)), int(math.Floor(r.Y / cell.H)),
		int(math.Floor(r.Right() / cell.W)), int(math.Floor(r.Bottom() / cell.H))
}

// DrawBorder outlines r on g. Corners are written last so they win over edge
// glyphs.
func DrawBorder(g *grid.Grid, r geom.Rect, cell geom.Size) {
	startCol, startRow, endCol, endRow := BorderSpan(r, cell)

	// Only the visible span is walked; Set skips anything still outside.
	for col := max(startCol, 0); col <= min(endCol, g.Cols()-1); col++ {
		g.Set(col, startRow, grid.BorderH)
		g.Set(col, endRow, grid.BorderH)
	}
	for row := max(startRow, 0); row <= min(endRow, g.Rows()-1); row++ {
		g.Set(startCol, row, grid.BorderV)
		g.Set(endCol, row, grid.BorderV)
	}
	g.Set(startCol, startRow, grid.BorderCorner)
	g.Set(endCol, startRow, grid.BorderCorner)
	g.Set(startCol, endRow, grid.BorderCorner)
	g.Set(endCol, endRow, grid.BorderCorner)
}
