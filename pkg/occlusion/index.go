package occlusion

import (
	"math"

	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Index buckets box indices by the grid rows whose cell centers they can
// contain. A lookup then only tests the boxes spanning the cell's row, using
// the same closed-rectangle test as [Inside].
type Index struct {
	rows [][]int
}

// Build fills the index for the given boxes and grid height.
func (ix *Index) Build(boxes []geom.Rect, cell geom.Size, rows int) {
	if cap(ix.rows) < rows {
		ix.rows = make([][]int, rows)
	}
	ix.rows = ix.rows[:rows]
	for y := range ix.rows {
		ix.rows[y] = ix.rows[y][:0]
	}
	for i, r := range boxes {
		// Rows whose center y = (row + 0.5) * h lies in [r.Y, r.Bottom()],
		// widened by one row each way to absorb float rounding; Contains
		// makes the exact decision.
		first := int(math.Ceil(r.Y/cell.H-0.5)) - 1
		last := int(math.Floor(r.Bottom()/cell.H-0.5)) + 1
		for y := max(first, 0); y <= min(last, rows-1); y++ {
			ix.rows[y] = append(ix.rows[y], i)
		}
	}
}

// Inside reports whether p, the center of a cell in row y, lies inside any
// indexed box.
func (ix *Index) Inside(boxes []geom.Rect, y int, p geom.Point) bool {
	if y < 0 || y >= len(ix.rows) {
		return Inside(boxes, p)
	}
	for _, i := range ix.rows[y] {
		if boxes[i].Contains(p) {
			return true
		}
	}
	return false
}
