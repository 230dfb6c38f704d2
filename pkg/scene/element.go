package scene

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/dotgrid/pkg/drag"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Class is an element's class marker.
type Class string

const (
	Dynamic Class = "dynamic"
	Static  Class = "static"
)

// Valid reports whether c is a known class.
func (c Class) Valid() bool { return c == Dynamic || c == Static }

// NormalZ is the stacking order of an element at rest.
const NormalZ = drag.NormalZ

// Element is one overlay box in a [Document].
type Element struct {
	handle string
	doc    *Document

	ID      string // name from the scene file
	Class   Class
	Rect    geom.Rect // W or H of zero means sized from content
	Content string    // display markup, lines separated by "<br>"
	Image   string    // elements showing an image cannot be edited

	TabIndex    int
	Z           int
	FrozenWidth float64

	focusable bool
	editable  bool
	editing   bool
	original  string
	hasOrig   bool
}

// Handle returns the element's generated handle.
func (e *Element) Handle() string { return e.handle }

// Movable reports whether the element is dynamic.
func (e *Element) Movable() bool { return e.Class == Dynamic }

// AutoSized reports whether either dimension is derived from content.
func (e *Element) AutoSized() bool { return e.Rect.W == 0 || e.Rect.H == 0 }

// Bounds returns the element's rendered rectangle. A frozen width overrides
// the layout width; missing dimensions are measured from the content.
func (e *Element) Bounds() geom.Rect {
	r := e.Rect
	if e.AutoSized() {
		var cell geom.Size
		if e.doc != nil {
			cell = e.doc.cell
		}
		auto := ContentSize(e.Lines(), cell)
		if r.W == 0 {
			r.W = auto.W
		}
		if r.H == 0 {
			r.H = auto.H
		}
	}
	if e.FrozenWidth > 0 {
		r.W = e.FrozenWidth
	}
	return r
}

// PrepareOverlay makes the element focusable and, for static elements,
// forces it read-only with any stale edit state cleared.
func (e *Element) PrepareOverlay(movable bool) {
	e.focusable = true
	if e.Z == 0 {
		e.Z = NormalZ
	}
	if !movable {
		e.editable = false
		e.editing = false
		e.original, e.hasOrig = "", false
	}
}

// Focusable reports whether the element has been registered.
func (e *Element) Focusable() bool { return e.focusable }

// Editing reports whether the element is in inline edit mode.
func (e *Element) Editing() bool { return e.editing }

// Editable reports whether the element currently accepts text input.
func (e *Element) Editable() bool { return e.editable }

// MoveTo places the element's top-left corner at p.
func (e *Element) MoveTo(p geom.Point) {
	e.Rect.X, e.Rect.Y = p.X, p.Y
}

// SetZ sets the stacking order.
func (e *Element) SetZ(z int) { e.Z = z }

// FreezeWidth pins the rendered width.
func (e *Element) FreezeWidth(w float64) { e.FrozenWidth = w }

// Lines returns the content split at line-break markup.
func (e *Element) Lines() []string { return Lines(e.Content) }

// padChars is the text margin inside the border on each side.
const padChars = 1

// ContentSize measures lines in cells and converts the result to pixels.
// The rectangle spans the text plus border and margin so that the border
// lands on the cells just outside the text. An invalid cell yields a zero
// size.
func ContentSize(lines []string, cell geom.Size) geom.Size {
	if !cell.Valid() {
		return geom.Size{}
	}
	width := 0
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(l))
	}
	rows := max(len(lines), 1)
	cols := int(math.Ceil(float64(width+2*padChars) / 2))
	// A span of n cells from an aligned origin needs (n-1) cells of extent.
	return geom.Size{
		W: float64(cols+1) * cell.W,
		H: float64(rows+1) * cell.H,
	}
}

// Lines splits display markup into text lines.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(brToNewline(content), "\n")
}

var brReplacer = strings.NewReplacer("<br />", "\n", "<br/>", "\n", "<br>", "\n", "<BR>", "\n")

func brToNewline(s string) string {
	return brReplacer.Replace(s)
}

// NormalizeContent trims surrounding whitespace from edited text and
// converts its line breaks to display markup. Text is composed to NFC so
// equal visible content always fingerprints the same.
func NormalizeContent(text string) string {
	text = norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	return strings.ReplaceAll(strings.TrimSpace(text), "\n", "<br>")
}
