package metrics

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Font defaults.
const (
	DefaultFontSize = 15.0
	DefaultDPI      = 72.0
	DefaultZoom     = 1.0
)

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

// Mono returns the parsed Go Mono font shared by measurement and PNG export.
func Mono() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// FontOptions configures a [Font] provider.
type FontOptions struct {
	Size float64 // font size in points
	DPI  float64 // output resolution
	Zoom float64 // page zoom factor applied on top of DPI
}

// Font measures the representative glyph of a TrueType face. It is not safe
// for concurrent use.
type Font struct {
	ttf  *truetype.Font
	opts FontOptions
	face font.Face
}

// NewFont creates a provider for the embedded Go Mono font. Zero options fall
// back to the package defaults.
func NewFont(opts FontOptions) (*Font, error) {
	ttf, err := Mono()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded font")
	}
	if opts.Size == 0 {
		opts.Size = DefaultFontSize
	}
	if opts.DPI == 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Zoom == 0 {
		opts.Zoom = DefaultZoom
	}
	return &Font{ttf: ttf, opts: opts}, nil
}

// FontSize returns the active size in points.
func (f *Font) FontSize() float64 { return f.opts.Size }

// SetFontSize changes the active size. The next Measure reflects it.
func (f *Font) SetFontSize(pt float64) {
	if pt == f.opts.Size {
		return
	}
	f.opts.Size = pt
	f.closeFace()
}

// SetZoom changes the zoom factor. The next Measure reflects it.
func (f *Font) SetZoom(z float64) {
	if z == f.opts.Zoom {
		return
	}
	f.opts.Zoom = z
	f.closeFace()
}

// Face returns the face for the active size, creating it on first use.
func (f *Font) Face() font.Face {
	if f.face == nil {
		f.face = truetype.NewFace(f.ttf, &truetype.Options{
			Size:    f.opts.Size,
			DPI:     f.opts.DPI * f.opts.Zoom,
			Hinting: font.HintingFull,
		})
	}
	return f.face
}

// Char returns the rendered size of the representative glyph.
func (f *Font) Char() (geom.Size, error) {
	if f.opts.Size <= 0 || f.opts.DPI <= 0 || f.opts.Zoom <= 0 {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidMetrics,
			"font size %vpt at %v dpi, zoom %v", f.opts.Size, f.opts.DPI, f.opts.Zoom)
	}
	face := f.Face()
	adv, ok := face.GlyphAdvance(Representative)
	if !ok {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidMetrics, "font has no glyph %q", Representative)
	}
	m := face.Metrics()
	return geom.Size{W: toFloat(adv), H: toFloat(m.Height)}, nil
}

// Measure returns the logical cell size: two representative glyph advances
// wide and one line tall.
func (f *Font) Measure() (geom.Size, error) {
	char, err := f.Char()
	if err != nil {
		return geom.Size{}, err
	}
	cell := CellFromChar(char)
	if err := Validate(cell); err != nil {
		return geom.Size{}, err
	}
	return cell, nil
}

// String describes the active font configuration.
func (f *Font) String() string {
	return fmt.Sprintf("go-mono %vpt @%vdpi x%v", f.opts.Size, f.opts.DPI, f.opts.Zoom)
}

func (f *Font) closeFace() {
	if f.face != nil {
		_ = f.face.Close()
		f.face = nil
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

var _ Sizer = (*Font)(nil)
