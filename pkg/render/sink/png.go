package sink

import (
	"bytes"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/grid"
	"github.com/matzehuels/dotgrid/pkg/metrics"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	size       float64
	dpi        float64
	background color.Color
	colors     map[grid.Glyph]color.Color
}

// WithFontSize sets the font size in points (default [metrics.DefaultFontSize]).
func WithFontSize(pt float64) PNGOption { return func(r *pngRenderer) { r.size = pt } }

// WithDPI sets the output resolution (default 144 for 2x images).
func WithDPI(dpi float64) PNGOption { return func(r *pngRenderer) { r.dpi = dpi } }

// WithGlyphColor overrides the ink of one glyph class.
func WithGlyphColor(g grid.Glyph, c color.Color) PNGOption {
	return func(r *pngRenderer) { r.colors[g] = c }
}

// WithBackground sets the canvas color.
func WithBackground(c color.Color) PNGOption { return func(r *pngRenderer) { r.background = c } }

func defaultColors() map[grid.Glyph]color.Color {
	return map[grid.Glyph]color.Color{
		grid.Background:   color.RGBA{0x58, 0x58, 0x58, 0xff},
		grid.Trail:        color.RGBA{0xff, 0xd7, 0x00, 0xff},
		grid.BorderH:      color.RGBA{0x00, 0xaf, 0xaf, 0xff},
		grid.BorderV:      color.RGBA{0x00, 0xaf, 0xaf, 0xff},
		grid.BorderCorner: color.RGBA{0x00, 0xaf, 0xaf, 0xff},
	}
}

// RenderPNG draws g with the Go Mono font, one two-character glyph per cell,
// and returns the encoded image.
func RenderPNG(g *grid.Grid, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{
		size:       metrics.DefaultFontSize,
		dpi:        2 * metrics.DefaultDPI,
		background: color.Black,
		colors:     defaultColors(),
	}
	for _, opt := range opts {
		opt(&r)
	}

	f, err := metrics.NewFont(metrics.FontOptions{Size: r.size, DPI: r.dpi})
	if err != nil {
		return nil, err
	}
	cell, err := f.Measure()
	if err != nil {
		return nil, err
	}
	w := int(math.Ceil(float64(g.Cols()) * cell.W))
	h := int(math.Ceil(float64(g.Rows()) * cell.H))
	if w == 0 || h == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot rasterize an empty grid")
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(r.background)
	dc.Clear()
	face := f.Face()
	dc.SetFontFace(face)
	ascent := float64(face.Metrics().Ascent) / 64

	for y := 0; y < g.Rows(); y++ {
		baseline := float64(y)*cell.H + ascent
		for x, c := range g.Row(y) {
			ink, ok := r.colors[c]
			if !ok {
				continue
			}
			dc.SetColor(ink)
			dc.DrawString(c.Text(), float64(x)*cell.W, baseline)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
