package grid

import (
	"testing"
	"time"

	"github.com/matzehuels/dotgrid/pkg/geom"
)

func TestNewInitializesBackground(t *testing.T) {
	g := New(24, 120)
	if g.Rows() != 24 || g.Cols() != 120 {
		t.Fatalf("size = %dx%d, want 24x120", g.Rows(), g.Cols())
	}
	if got := g.Count(Background); got != 24*120 {
		t.Errorf("background cells = %d, want %d", got, 24*120)
	}
	for y := 0; y < g.Rows(); y++ {
		if len(g.Row(y)) != g.Cols() {
			t.Fatalf("row %d has %d cells", y, len(g.Row(y)))
		}
		for x := 0; x < g.Cols(); x++ {
			if _, ok := g.Timestamp(x, y); ok {
				t.Fatalf("cell (%d,%d) has a stamp after New", x, y)
			}
		}
	}
}

func TestRebuildDiscardsState(t *testing.T) {
	g := New(4, 4)
	g.Set(1, 1, Trail)
	g.Stamp(1, 1, time.Unix(10, 0))

	g.Rebuild(2, 3)
	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("size = %dx%d, want 2x3", g.Rows(), g.Cols())
	}
	if g.At(1, 1) != Background {
		t.Errorf("At(1,1) = %v after rebuild", g.At(1, 1))
	}
	if _, ok := g.Timestamp(1, 1); ok {
		t.Error("stamp survived rebuild")
	}
}

func TestRebuildNegative(t *testing.T) {
	g := New(-1, 5)
	if g.Rows() != 0 || g.Len() != 0 {
		t.Errorf("New(-1, 5) = %dx%d", g.Rows(), g.Cols())
	}
}

func TestOutOfBoundsIsSkipped(t *testing.T) {
	g := New(3, 3)
	tests := []struct{ x, y int }{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {100, 100}}
	for _, tt := range tests {
		if g.Set(tt.x, tt.y, BorderH) {
			t.Errorf("Set(%d,%d) reported success", tt.x, tt.y)
		}
		if g.Stamp(tt.x, tt.y, time.Unix(1, 0)) {
			t.Errorf("Stamp(%d,%d) reported success", tt.x, tt.y)
		}
		if g.At(tt.x, tt.y) != Background {
			t.Errorf("At(%d,%d) = %v", tt.x, tt.y, g.At(tt.x, tt.y))
		}
		g.ClearStamp(tt.x, tt.y)
	}
	if g.Count(BorderH) != 0 {
		t.Error("out-of-bounds write leaked into the grid")
	}
}

func TestStamps(t *testing.T) {
	g := New(2, 2)
	now := time.Unix(100, 0)
	g.Stamp(1, 0, now)
	got, ok := g.Timestamp(1, 0)
	if !ok || !got.Equal(now) {
		t.Errorf("Timestamp = %v, %v", got, ok)
	}
	g.ClearStamp(1, 0)
	if _, ok := g.Timestamp(1, 0); ok {
		t.Error("stamp not cleared")
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name       string
		view, cell geom.Size
		rows, cols int
	}{
		{"exact", geom.Size{W: 1200, H: 240}, geom.Size{W: 10, H: 10}, 24, 120},
		{"round up", geom.Size{W: 1201, H: 241}, geom.Size{W: 10, H: 10}, 25, 121},
		{"fractional cell", geom.Size{W: 100, H: 100}, geom.Size{W: 14.4, H: 17}, 6, 7},
		{"zero cell", geom.Size{W: 100, H: 100}, geom.Size{}, 0, 0},
		{"empty view", geom.Size{}, geom.Size{W: 10, H: 10}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := Dimensions(tt.view, tt.cell)
			if rows != tt.rows || cols != tt.cols {
				t.Errorf("Dimensions() = %d,%d, want %d,%d", rows, cols, tt.rows, tt.cols)
			}
		})
	}
}

func TestEqualAndClone(t *testing.T) {
	a := New(2, 2)
	a.Set(0, 0, BorderCorner)
	a.Stamp(1, 1, time.Unix(5, 0))

	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal")
	}
	b.Set(1, 0, Trail)
	if a.Equal(b) {
		t.Error("mutating clone changed equality")
	}
	if a.At(1, 0) != Background {
		t.Error("clone aliases the original")
	}
	if a.Equal(New(2, 3)) {
		t.Error("grids of different shape compare equal")
	}
}

func TestGlyphText(t *testing.T) {
	for g := Background; g <= Blank; g++ {
		if l := len(g.Text()); l != 2 {
			t.Errorf("%v.Text() has length %d", g, l)
		}
	}
	if Glyph(99).Text() != ". " {
		t.Error("unknown glyph should render as background")
	}
	if !BorderCorner.IsBorder() || Trail.IsBorder() {
		t.Error("IsBorder classification wrong")
	}
}
