// Package pipeline replays input timelines against an engine without a
// terminal.
//
// This package implements the headless play → render pipeline used by the
// render command and the HTTP server. By centralizing this logic, both entry
// points step the engine with the same virtual clock and produce identical
// frames for identical inputs.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Play: Step an engine at a fixed frame rate on a virtual clock, posting
//     each timeline event before the first frame at or after its offset
//  2. Render: Serialize the final frame (or every frame) as text, ANSI, JSON
//     or PNG
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), logger)
//	opts := pipeline.Options{
//	    Scene:    doc,
//	    Timeline: tl,
//	    At:       150 * time.Millisecond,
//	    Formats:  []string{"text"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Artifacts["text"]))
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1280.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 720.0

	// DefaultFrameRate is the number of engine steps per virtual second.
	DefaultFrameRate = 60
)

// Epoch is the virtual clock's zero. Frame offsets are relative to it.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatANSI = "ansi"
	FormatJSON = "json"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatANSI: true,
	FormatJSON: true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one playback.
type Options struct {
	// Play options
	Scene         *scene.Document
	Timeline      Timeline
	Width         float64
	Height        float64
	FrameRate     int
	At            time.Duration // offset of the emitted frame; zero means the timeline end
	AllFrames     bool          // keep the text of every frame
	Window        time.Duration // trail decay window
	StickyPointer bool

	// Metrics options
	FontSize float64
	DPI      float64
	Zoom     float64
	Metrics  metrics.Provider // overrides the font options when set

	// Render options
	Formats []string
	Labels  bool // draw box content in ANSI output

	// Runtime options
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Frame is the text of one step.
type Frame struct {
	At   time.Duration
	Text string
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Frames holds every frame when AllFrames is set; otherwise only the
	// emitted one.
	Frames []Frame

	// Artifacts contains rendered outputs of the emitted frame keyed by
	// format.
	Artifacts map[string][]byte

	// SceneHash is the fingerprint of the scene after playback.
	SceneHash uint64

	// Stats contains timing and size information.
	Stats Stats

	// Cached is set when the result came from the runner's cache.
	Cached bool `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Frames     int
	Events     int
	Rows, Cols int
	Trail      int // trail cells in the emitted frame
	PlayTime   time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, ansi, json, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForPlay(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForPlay checks playback fields and applies their defaults.
func (o *Options) ValidateForPlay() error {
	o.SetPlayDefaults()
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "viewport %vx%v is negative", o.Width, o.Height)
	}
	if o.FrameRate < 1 || o.FrameRate > 1000 {
		return errors.New(errors.ErrCodeInvalidInput, "frame rate %d out of range [1, 1000]", o.FrameRate)
	}
	if o.At < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame offset %v is negative", o.At)
	}
	return o.Timeline.Validate()
}

// SetPlayDefaults sets default values for playback.
func (o *Options) SetPlayDefaults() {
	if o.Scene == nil {
		o.Scene = scene.New()
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.FrameRate == 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Interval returns the virtual time between frames.
func (o *Options) Interval() time.Duration {
	rate := o.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return time.Second / time.Duration(rate)
}

// End returns the offset of the last frame: the requested frame, or the end
// of the timeline.
func (o *Options) End() time.Duration {
	if o.At > 0 {
		return o.At
	}
	return o.Timeline.End()
}

// metricsProvider returns the override provider or a font built from the
// font options.
func (o *Options) metricsProvider() (metrics.Provider, error) {
	if o.Metrics != nil {
		return o.Metrics, nil
	}
	f, err := metrics.NewFont(metrics.FontOptions{Size: o.FontSize, DPI: o.DPI, Zoom: o.Zoom})
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	return f, nil
}
