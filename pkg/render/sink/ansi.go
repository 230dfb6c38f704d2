package sink

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/grid"
	"github.com/matzehuels/dotgrid/pkg/occlusion"
)

// Palette assigns a style to every glyph class.
type Palette struct {
	Background lipgloss.Style
	Trail      lipgloss.Style
	Border     lipgloss.Style
	Focus      lipgloss.Style // border cells of the highlighted box
	Blank      lipgloss.Style
}

// DefaultPalette is a dim background with a bright trail.
func DefaultPalette() Palette {
	return Palette{
		Background: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Trail:      lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		Border:     lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
		Focus:      lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		Blank:      lipgloss.NewStyle(),
	}
}

// PlainPalette applies no styling; RenderANSI then matches render.Text
// line for line.
func PlainPalette() Palette {
	s := lipgloss.NewStyle()
	return Palette{Background: s, Trail: s, Border: s, Focus: s, Blank: s}
}

func (p Palette) style(g grid.Glyph) lipgloss.Style {
	switch g {
	case grid.Trail:
		return p.Trail
	case grid.BorderH, grid.BorderV, grid.BorderCorner:
		return p.Border
	case grid.Blank:
		return p.Blank
	default:
		return p.Background
	}
}

// Label is text drawn over the grid at a character position. Col counts
// character columns, so cell x starts at column 2*x.
type Label struct {
	Row, Col int
	Text     string
	Width    int // maximum display width; zero means up to the end of the row
	Style    lipgloss.Style
}

// CellRect is an inclusive range of cells.
type CellRect struct {
	X0, Y0, X1, Y1 int
}

func (r CellRect) onPerimeter(x, y int) bool {
	if x < r.X0 || x > r.X1 || y < r.Y0 || y > r.Y1 {
		return false
	}
	return x == r.X0 || x == r.X1 || y == r.Y0 || y == r.Y1
}

// BoxCells returns the border cells of a box rectangle.
func BoxCells(r geom.Rect, cell geom.Size) CellRect {
	x0, y0, x1, y1 := occlusion.BorderSpan(r, cell)
	return CellRect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// BoxLabels lays out text lines inside the border of r, one label per line
// with a one-character margin. Lines that do not fit vertically are dropped.
func BoxLabels(r geom.Rect, cell geom.Size, lines []string, style lipgloss.Style) []Label {
	c := BoxCells(r, cell)
	width := 2*(c.X1-c.X0-1) - 2
	if width <= 0 {
		return nil
	}
	var labels []Label
	for i, line := range lines {
		row := c.Y0 + 1 + i
		if row >= c.Y1 {
			break
		}
		labels = append(labels, Label{Row: row, Col: 2*(c.X0+1) + 1, Text: line, Width: width, Style: style})
	}
	return labels
}

// ANSIOption configures [RenderANSI].
type ANSIOption func(*ansiRenderer)

type ansiRenderer struct {
	palette   Palette
	labels    []Label
	highlight *CellRect
}

// WithPalette overrides the default palette.
func WithPalette(p Palette) ANSIOption { return func(r *ansiRenderer) { r.palette = p } }

// WithLabels overlays labels in the order given; later labels win.
func WithLabels(labels ...Label) ANSIOption {
	return func(r *ansiRenderer) { r.labels = append(r.labels, labels...) }
}

// WithHighlight renders border glyphs on the perimeter of rect with the focus
// style.
func WithHighlight(rect CellRect) ANSIOption {
	return func(r *ansiRenderer) { r.highlight = &rect }
}

// styled character; label >= 0 selects a label style, -1 a glyph style.
type ansiChar struct {
	r     rune
	glyph grid.Glyph
	focus bool
	label int
	skip  bool // trailing column of a wide rune
}

// RenderANSI renders g with one style per glyph class. Consecutive characters
// sharing a style are emitted as a single styled run. Lines are separated by
// a line break with no trailing break after the last row.
func RenderANSI(g *grid.Grid, opts ...ANSIOption) string {
	r := ansiRenderer{palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&r)
	}

	width := 2 * g.Cols()
	rows := make([][]ansiChar, g.Rows())
	for y := range rows {
		line := make([]ansiChar, width)
		for x, c := range g.Row(y) {
			focus := r.highlight != nil && c.IsBorder() && r.highlight.onPerimeter(x, y)
			text := c.Text()
			line[2*x] = ansiChar{r: rune(text[0]), glyph: c, focus: focus, label: -1}
			line[2*x+1] = ansiChar{r: rune(text[1]), glyph: c, focus: focus, label: -1}
		}
		rows[y] = line
	}

	for i, l := range r.labels {
		if l.Row < 0 || l.Row >= len(rows) || l.Col >= width {
			continue
		}
		avail := width - l.Col
		if l.Width > 0 && l.Width < avail {
			avail = l.Width
		}
		placeLabel(rows[l.Row], l.Col, runewidth.Truncate(l.Text, avail, ""), i)
	}

	var b strings.Builder
	for y, line := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		r.writeLine(&b, line)
	}
	return b.String()
}

func placeLabel(line []ansiChar, col int, text string, idx int) {
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col < 0 {
			col += w
			continue
		}
		if col+w > len(line) {
			return
		}
		line[col] = ansiChar{r: ch, label: idx}
		if w == 2 {
			line[col+1] = ansiChar{label: idx, skip: true}
		}
		col += w
	}
}

func (r *ansiRenderer) writeLine(b *strings.Builder, line []ansiChar) {
	var run strings.Builder
	var cur lipgloss.Style
	var curKey string
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(cur.Render(run.String()))
			run.Reset()
		}
	}
	for _, c := range line {
		if c.skip {
			continue
		}
		style, key := r.styleFor(c)
		if key != curKey {
			flush()
			cur, curKey = style, key
		}
		run.WriteRune(c.r)
	}
	flush()
}

func (r *ansiRenderer) styleFor(c ansiChar) (lipgloss.Style, string) {
	switch {
	case c.label >= 0:
		return r.labels[c.label].Style, "label" + strconv.Itoa(c.label)
	case c.focus:
		return r.palette.Focus, "focus"
	default:
		return r.palette.style(c.glyph), c.glyph.String()
	}
}
