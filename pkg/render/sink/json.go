package sink

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/grid"
	"github.com/matzehuels/dotgrid/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	cell  geom.Size
	at    time.Duration
	boxes []BoxInfo
}

// BoxInfo describes one overlay for JSON consumers.
type BoxInfo struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	Movable bool    `json:"movable"`
	Content string  `json:"content,omitempty"`
}

// WithJSONCell records the cell size in pixels.
func WithJSONCell(c geom.Size) JSONOption { return func(r *jsonRenderer) { r.cell = c } }

// WithJSONTime records the frame time as an offset from the start of the run.
func WithJSONTime(d time.Duration) JSONOption { return func(r *jsonRenderer) { r.at = d } }

// WithJSONBoxes includes the overlay registry in the output.
func WithJSONBoxes(boxes ...BoxInfo) JSONOption {
	return func(r *jsonRenderer) { r.boxes = append(r.boxes, boxes...) }
}

type jsonOutput struct {
	Rows   int            `json:"rows"`
	Cols   int            `json:"cols"`
	Cell   *jsonCell      `json:"cell,omitempty"`
	TimeMS int64          `json:"time_ms"`
	Lines  []string       `json:"lines"`
	Counts map[string]int `json:"counts"`
	Boxes  []BoxInfo      `json:"boxes,omitempty"`
}

type jsonCell struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

var countedGlyphs = []grid.Glyph{
	grid.Background, grid.Trail, grid.BorderH, grid.BorderV, grid.BorderCorner, grid.Blank,
}

// RenderJSON renders g as an indented JSON frame document.
func RenderJSON(g *grid.Grid, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Rows:   g.Rows(),
		Cols:   g.Cols(),
		TimeMS: r.at.Milliseconds(),
		Lines:  render.Lines(g),
		Counts: make(map[string]int, len(countedGlyphs)),
		Boxes:  r.boxes,
	}
	if out.Lines == nil {
		out.Lines = []string{}
	}
	if r.cell.Valid() {
		out.Cell = &jsonCell{W: r.cell.W, H: r.cell.H}
	}
	for _, c := range countedGlyphs {
		out.Counts[c.String()] = g.Count(c)
	}
	return json.MarshalIndent(out, "", "  ")
}
