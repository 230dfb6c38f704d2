package render

import (
	"io"
	"strings"

	"github.com/matzehuels/dotgrid/pkg/grid"
)

// Text serializes g row by row. Every row is the concatenation of its cells'
// two-character glyph strings followed by a single line break, so the result
// has exactly Rows() line breaks and every line is 2*Cols() characters wide.
func Text(g *grid.Grid) string {
	var b strings.Builder
	b.Grow(g.Rows() * (2*g.Cols() + 1))
	writeRows(&b, g)
	return b.String()
}

// WriteText writes the serialization of g to w.
func WriteText(w io.Writer, g *grid.Grid) error {
	_, err := io.WriteString(w, Text(g))
	return err
}

// Lines returns each serialized row without its line break.
func Lines(g *grid.Grid) []string {
	lines := make([]string, g.Rows())
	var b strings.Builder
	for y := range lines {
		b.Reset()
		b.Grow(2 * g.Cols())
		for _, c := range g.Row(y) {
			b.WriteString(c.Text())
		}
		lines[y] = b.String()
	}
	return lines
}

func writeRows(b *strings.Builder, g *grid.Grid) {
	for y := 0; y < g.Rows(); y++ {
		for _, c := range g.Row(y) {
			b.WriteString(c.Text())
		}
		b.WriteByte('\n')
	}
}
