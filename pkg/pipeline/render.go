package pipeline

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/render"
	"github.com/matzehuels/dotgrid/pkg/render/sink"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// Caret is appended to the text of an element being edited.
const Caret = "_"

// Render generates output artifacts of the engine's current frame in the
// requested formats.
func Render(eng *engine.Engine, doc *scene.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	g := eng.Grid()

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			data = []byte(render.Text(g))
		case FormatANSI:
			var ansiOpts []sink.ANSIOption
			if opts.Labels && doc != nil {
				ansiOpts = append(ansiOpts, sink.WithLabels(SceneLabels(doc, eng.Cell(), lipgloss.NewStyle())...))
			}
			data = []byte(sink.RenderANSI(g, ansiOpts...) + "\n")
		case FormatJSON:
			data, err = sink.RenderJSON(g,
				sink.WithJSONCell(eng.Cell()),
				sink.WithJSONTime(eng.Now().Sub(Epoch)),
				sink.WithJSONBoxes(BoxInfos(eng)...),
			)
		case FormatPNG:
			var pngOpts []sink.PNGOption
			if opts.FontSize > 0 {
				pngOpts = append(pngOpts, sink.WithFontSize(opts.FontSize))
			}
			data, err = sink.RenderPNG(g, pngOpts...)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// SceneLabels lays out the content of every element inside its border.
// Elements in edit mode show their edit buffer with a caret.
func SceneLabels(doc *scene.Document, cell geom.Size, style lipgloss.Style) []sink.Label {
	var labels []sink.Label
	for _, el := range doc.Elements() {
		lines := el.Lines()
		if el.Editing() {
			lines = el.EditLines(Caret)
		}
		if len(lines) == 0 {
			continue
		}
		labels = append(labels, sink.BoxLabels(el.Bounds(), cell, lines, style)...)
	}
	return labels
}

// BoxInfos describes the engine's registered boxes for JSON output.
func BoxInfos(eng *engine.Engine) []sink.BoxInfo {
	boxes := eng.Registry().Boxes()
	out := make([]sink.BoxInfo, 0, len(boxes))
	for _, b := range boxes {
		info := sink.BoxInfo{
			ID:      b.Handle(),
			X:       b.Rect.X,
			Y:       b.Rect.Y,
			W:       b.Rect.W,
			H:       b.Rect.H,
			Movable: b.Movable,
		}
		if el, ok := b.Element.(*scene.Element); ok {
			if el.ID != "" {
				info.ID = el.ID
			}
			info.Content = el.Content
		}
		out = append(out, info)
	}
	return out
}
