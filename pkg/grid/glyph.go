package grid

// Glyph classifies what a cell displays.
type Glyph uint8

// Cell glyphs. Background is the zero value so a freshly allocated grid is
// fully initialized.
const (
	Background Glyph = iota
	Trail
	BorderH
	BorderV
	BorderCorner
	Blank
)

// glyphText holds the two-character rendering of every glyph: the mark
// followed by a spacer column.
var glyphText = [...]string{
	Background:   ". ",
	Trail:        "* ",
	BorderH:      "- ",
	BorderV:      "| ",
	BorderCorner: "+ ",
	Blank:        "  ",
}

var glyphNames = [...]string{
	Background:   "background",
	Trail:        "trail",
	BorderH:      "border-h",
	BorderV:      "border-v",
	BorderCorner: "border-corner",
	Blank:        "blank",
}

// Text returns the two-character string the renderer emits for g.
func (g Glyph) Text() string {
	if int(g) < len(glyphText) {
		return glyphText[g]
	}
	return glyphText[Background]
}

// String returns the glyph's name.
func (g Glyph) String() string {
	if int(g) < len(glyphNames) {
		return glyphNames[g]
	}
	return "unknown"
}

// IsBorder reports whether g is one of the three border glyphs.
func (g Glyph) IsBorder() bool {
	return g == BorderH || g == BorderV || g == BorderCorner
}
