package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dotgrid/pkg/cache"
	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/grid"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// 10x10 pixel cells.
var fixed10 = metrics.Fixed{Char: geom.Size{W: 5, H: 10}}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"ansi", false},
		{"json", false},
		{"png", false},
		{"svg", true},
		{"TEXT", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"text", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"text", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.FrameRate != DefaultFrameRate {
		t.Errorf("defaults = %vx%v @%d", o.Width, o.Height, o.FrameRate)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatText {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Scene == nil || o.Logger == nil {
		t.Error("scene and logger should default")
	}
	if o.Interval() != time.Second/60 {
		t.Errorf("Interval() = %v", o.Interval())
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative width", Options{Width: -1}},
		{"frame rate", Options{FrameRate: 5000}},
		{"negative at", Options{At: -time.Second}},
		{"bad event", Options{Timeline: Timeline{Events: []Event{{Kind: "jump"}}}}},
		{"bad format", Options{Formats: []string{"gif"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFrameOffsets(t *testing.T) {
	tests := []struct {
		end, interval time.Duration
		want          []time.Duration
	}{
		{0, 10 * time.Millisecond, []time.Duration{0}},
		{30 * time.Millisecond, 10 * time.Millisecond, []time.Duration{0, 10e6, 20e6, 30e6}},
		{25 * time.Millisecond, 10 * time.Millisecond, []time.Duration{0, 10e6, 20e6, 25e6}},
	}
	for _, tt := range tests {
		got := FrameOffsets(tt.end, tt.interval)
		if len(got) != len(tt.want) {
			t.Errorf("FrameOffsets(%v, %v) = %v, want %v", tt.end, tt.interval, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("FrameOffsets(%v, %v)[%d] = %v, want %v", tt.end, tt.interval, i, got[i], tt.want[i])
			}
		}
	}
}

const trailTimeline = `
[[event]]
at = "0ms"
kind = "move"
x = 105
y = 105
`

func TestDecodeTimeline(t *testing.T) {
	tl, err := DecodeTimeline(strings.NewReader(`
duration = "2s"

[[event]]
at = "500ms"
kind = "up"

[[event]]
at = "100ms"
kind = "down"
x = 10
y = 10

[[event]]
at = "100ms"
kind = "move"
x = 20
y = 20
`))
	if err != nil {
		t.Fatalf("DecodeTimeline() error: %v", err)
	}
	if tl.Duration != 2*time.Second || tl.End() != 2*time.Second {
		t.Errorf("Duration = %v, End = %v", tl.Duration, tl.End())
	}
	kinds := []string{tl.Events[0].Kind, tl.Events[1].Kind, tl.Events[2].Kind}
	if strings.Join(kinds, ",") != "down,move,up" {
		t.Errorf("events not sorted stably: %v", kinds)
	}
}

func TestDecodeTimelineErrors(t *testing.T) {
	for _, in := range []string{
		"[[event]\n",
		"[[event]]\nkind = \"teleport\"\n",
		"[[event]]\nkind = \"move\"\nz = 3\n",
		"[[event]]\nat = \"-1s\"\nkind = \"up\"\n",
		"[[event]]\nkind = \"resize\"\nw = -5\n",
	} {
		if _, err := DecodeTimeline(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("DecodeTimeline(%q) error = %v, want INVALID_INPUT", in, err)
		}
	}
}

func TestEventCommandDefaults(t *testing.T) {
	cmd, err := Event{Kind: EventDown, X: 1, Y: 2}.Command()
	if err != nil {
		t.Fatal(err)
	}
	down, ok := cmd.(engine.PointerDown)
	if !ok || down.Clicks != 1 || down.At != (geom.Point{X: 1, Y: 2}) {
		t.Errorf("Command() = %#v, want a single click at (1,2)", cmd)
	}
}

func play(t *testing.T, opts Options) *Result {
	t.Helper()
	if opts.Metrics == nil {
		opts.Metrics = fixed10
	}
	if opts.Width == 0 {
		opts.Width, opts.Height = 1200, 240
	}
	res, err := NewRunner(nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	return res
}

func cellText(text string, x, y int) string {
	line := strings.Split(text, "\n")[y]
	return line[2*x : 2*x+2]
}

func TestTrailTimeline(t *testing.T) {
	tl, err := DecodeTimeline(strings.NewReader(trailTimeline))
	if err != nil {
		t.Fatal(err)
	}

	at50 := play(t, Options{Timeline: tl, At: 50 * time.Millisecond, FrameRate: 100})
	if got := cellText(string(at50.Artifacts[FormatText]), 10, 10); got != "* " {
		t.Errorf("cell at 50ms = %q, want trail", got)
	}

	at150 := play(t, Options{Timeline: tl, At: 150 * time.Millisecond, FrameRate: 100})
	if got := cellText(string(at150.Artifacts[FormatText]), 10, 10); got != ". " {
		t.Errorf("cell at 150ms = %q, want background", got)
	}
	if at150.Stats.Frames != 16 || at150.Stats.Rows != 24 || at150.Stats.Cols != 120 {
		t.Errorf("stats = %+v", at150.Stats)
	}
}

func TestDragTimeline(t *testing.T) {
	doc := scene.New()
	el, _ := doc.Add(&scene.Element{ID: "card", Rect: geom.Rect{W: 40, H: 20}})
	tl := Timeline{Events: []Event{
		{At: 0, Kind: EventDown, X: 3, Y: 3},
		{At: 10 * time.Millisecond, Kind: EventMove, X: 50, Y: 25},
		{At: 20 * time.Millisecond, Kind: EventUp},
	}}
	res := play(t, Options{Scene: doc, Timeline: tl, FrameRate: 100, Formats: []string{FormatJSON}})

	if el.Rect.X != 50 || el.Rect.Y != 20 {
		t.Errorf("card at (%v,%v), want (50,20)", el.Rect.X, el.Rect.Y)
	}
	var frame struct {
		TimeMS int64 `json:"time_ms"`
		Boxes  []struct {
			ID string  `json:"id"`
			X  float64 `json:"x"`
		} `json:"boxes"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &frame); err != nil {
		t.Fatal(err)
	}
	if frame.TimeMS != 20 || len(frame.Boxes) != 1 || frame.Boxes[0].ID != "card" || frame.Boxes[0].X != 50 {
		t.Errorf("json frame = %+v", frame)
	}
	if res.SceneHash == 0 {
		t.Error("scene hash not set")
	}
}

func TestAllFrames(t *testing.T) {
	res := play(t, Options{AllFrames: true, At: 30 * time.Millisecond, FrameRate: 100})
	if len(res.Frames) != 4 {
		t.Fatalf("len(Frames) = %d, want 4", len(res.Frames))
	}
	if res.Frames[3].At != 30*time.Millisecond {
		t.Errorf("last frame at %v", res.Frames[3].At)
	}

	one := play(t, Options{At: 30 * time.Millisecond, FrameRate: 100})
	if len(one.Frames) != 1 || one.Frames[0].Text != res.Frames[3].Text {
		t.Error("single frame should equal the last of all frames")
	}
}

func TestRenderFormats(t *testing.T) {
	doc, _ := scene.FromFile(scene.Starter())
	res := play(t, Options{
		Scene:   doc,
		Labels:  true,
		Formats: []string{FormatText, FormatANSI, FormatJSON, FormatPNG},
	})
	for _, f := range []string{FormatText, FormatANSI, FormatJSON, FormatPNG} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if _, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG])); err != nil {
		t.Errorf("png artifact: %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatANSI]), "drag me around") {
		t.Error("ansi output should include box labels")
	}
	if strings.Contains(string(res.Artifacts[FormatText]), "drag me around") {
		t.Error("text output must only contain glyphs")
	}
}

func TestSceneLabelsEditing(t *testing.T) {
	doc := scene.New()
	doc.SetCell(geom.Size{W: 10, H: 10})
	el, _ := doc.Add(&scene.Element{Content: "ab"})
	el.BeginEdit()
	labels := SceneLabels(doc, doc.Cell(), lipgloss.NewStyle())
	if len(labels) != 1 || labels[0].Text != "ab"+Caret {
		t.Errorf("labels = %+v", labels)
	}
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewRunner(nil, nil).Play(ctx, Options{Metrics: fixed10, At: time.Second})
	if err == nil {
		t.Error("expected context error")
	}
}

func TestPlayFontEvent(t *testing.T) {
	tl := Timeline{Events: []Event{{At: 0, Kind: EventFont, Size: 30}}}
	_, _, err := NewRunner(nil, nil).Play(context.Background(), Options{Metrics: fixed10, Timeline: tl})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("font event on fixed metrics: %v", err)
	}

	eng, _, err := NewRunner(nil, nil).Play(context.Background(), Options{FontSize: 12, Timeline: tl})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if eng.FontSize() != 30 {
		t.Errorf("FontSize() = %v, want 30", eng.FontSize())
	}
	if eng.Grid().Count(grid.Background) == 0 {
		t.Error("grid should be populated")
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil)
	opts := Options{FontSize: 12, Width: 400, Height: 200, At: 50 * time.Millisecond, Formats: []string{FormatText, FormatJSON}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Fatal("first run should not be cached")
	}
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Fatal("second run should come from the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatText], second.Artifacts[FormatText]) || second.Stats.Frames != first.Stats.Frames {
		t.Error("cached result differs from the rendered one")
	}

	opts.Width = 600
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("changed options should miss the cache")
	}

	opts.Metrics = fixed10
	if key := runner.cacheKey(opts); key != "" {
		t.Errorf("custom metrics should not be cached, key %q", key)
	}
}
