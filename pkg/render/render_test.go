package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/dotgrid/pkg/grid"
)

func TestTextShape(t *testing.T) {
	tests := []struct{ rows, cols int }{{1, 1}, {3, 7}, {24, 120}}
	for _, tt := range tests {
		g := grid.New(tt.rows, tt.cols)
		out := Text(g)

		if n := strings.Count(out, "\n"); n != tt.rows {
			t.Errorf("%dx%d: %d line breaks, want %d", tt.rows, tt.cols, n, tt.rows)
		}
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		for i, l := range lines {
			if len(l) != 2*tt.cols {
				t.Errorf("%dx%d: line %d has %d chars, want %d", tt.rows, tt.cols, i, len(l), 2*tt.cols)
			}
		}
	}
}

func TestTextEmpty(t *testing.T) {
	if out := Text(grid.New(0, 0)); out != "" {
		t.Errorf("Text(empty) = %q", out)
	}
}

func TestTextGlyphs(t *testing.T) {
	g := grid.New(2, 3)
	g.Set(0, 0, grid.BorderCorner)
	g.Set(1, 0, grid.BorderH)
	g.Set(2, 0, grid.BorderCorner)
	g.Set(0, 1, grid.BorderV)
	g.Set(1, 1, grid.Blank)
	g.Set(2, 1, grid.Trail)

	want := "+ - + \n|   * \n"
	if got := Text(g); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTextPure(t *testing.T) {
	g := grid.New(3, 3)
	g.Set(1, 1, grid.Trail)
	before := g.Clone()
	_ = Text(g)
	_ = Lines(g)
	if !g.Equal(before) {
		t.Error("rendering mutated the grid")
	}
}

func TestLinesMatchText(t *testing.T) {
	g := grid.New(4, 5)
	g.Set(3, 2, grid.Trail)
	joined := strings.Join(Lines(g), "\n") + "\n"
	if joined != Text(g) {
		t.Error("Lines() disagrees with Text()")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	g := grid.New(2, 2)
	if err := WriteText(&buf, g); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	if buf.String() != ". . \n. . \n" {
		t.Errorf("WriteText() wrote %q", buf.String())
	}
}
