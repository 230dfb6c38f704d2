package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgrid/pkg/buildinfo"
	"github.com/matzehuels/dotgrid/pkg/cache"
	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/observability"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options as long as they
// don't share a scene.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. If c is nil, a NullCache is used (caching
// disabled). If logger is nil, log.Default() is used.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// resultKey lists every input a headless run depends on.
type resultKey struct {
	Version   string
	Scene     uint64
	Timeline  Timeline
	Width     float64
	Height    float64
	FrameRate int
	At        time.Duration
	AllFrames bool
	Window    time.Duration
	Sticky    bool
	FontSize  float64
	DPI       float64
	Zoom      float64
	Formats   []string
	Labels    bool
}

// cacheKey returns the result key for opts, or "" when the run cannot be
// cached. Runs with a custom metrics provider are never cached.
func (r *Runner) cacheKey(opts Options) string {
	if opts.Metrics != nil {
		return ""
	}
	fp, err := scene.Fingerprint(opts.Scene)
	if err != nil {
		return ""
	}
	key, err := cache.Key("frames", resultKey{
		Version:   buildinfo.Version,
		Scene:     fp,
		Timeline:  opts.Timeline,
		Width:     opts.Width,
		Height:    opts.Height,
		FrameRate: opts.FrameRate,
		At:        opts.At,
		AllFrames: opts.AllFrames,
		Window:    opts.Window,
		Sticky:    opts.StickyPointer,
		FontSize:  opts.FontSize,
		DPI:       opts.DPI,
		Zoom:      opts.Zoom,
		Formats:   opts.Formats,
		Labels:    opts.Labels,
	})
	if err != nil {
		return ""
	}
	return key
}

// cached returns a stored result for key.
func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	if key == "" {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	res.Cached = true
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	if key == "" {
		return
	}
	data, err := json.Marshal(res)
	if err == nil {
		err = r.Cache.Set(ctx, key, data, cache.TTLFrames)
	}
	if err != nil {
		r.Logger.Debug("cache write failed", "err", err)
	}
}

// Execute plays the timeline and renders the emitted frame. A cached result
// is returned without replaying, in which case opts.Scene is left as it was.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key := r.cacheKey(opts)
	if res, ok := r.cached(ctx, key); ok {
		r.Logger.Debug("cache hit", "key", key)
		return res, nil
	}

	playStart := time.Now()
	eng, frames, err := r.Play(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	result := &Result{Frames: frames}
	result.Stats.PlayTime = time.Since(playStart)
	result.Stats.Frames = int(eng.Frame())
	result.Stats.Events = len(opts.Timeline.Events)
	result.Stats.Rows, result.Stats.Cols = eng.Grid().Rows(), eng.Grid().Cols()
	result.Stats.Trail = eng.Stats().Trail

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(eng, opts.Scene, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	if h, err := scene.Fingerprint(opts.Scene); err == nil {
		result.SceneHash = h
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	r.store(ctx, key, result)
	return result, nil
}

// Play builds an engine for opts.Scene and steps it from offset zero to
// opts.End(). Events are posted before the first frame whose offset is at
// or after theirs. It returns the engine in its final state and the frames
// kept according to opts.AllFrames.
func (r *Runner) Play(ctx context.Context, opts Options) (*engine.Engine, []Frame, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPlay(); err != nil {
		return nil, nil, err
	}

	m, err := opts.metricsProvider()
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(engine.Options{
		Metrics:       m,
		Source:        opts.Scene,
		Viewport:      geom.Size{W: opts.Width, H: opts.Height},
		NavHeight:     opts.Scene.NavHeight,
		Window:        opts.Window,
		StickyPointer: opts.StickyPointer,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	offsets := FrameOffsets(opts.End(), opts.Interval())
	observability.Pipeline().OnPlaybackStart(ctx, len(opts.Timeline.Events), len(offsets))
	start := time.Now()

	frames, err := r.play(ctx, eng, opts, offsets)
	observability.Pipeline().OnPlaybackComplete(ctx, len(offsets), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	r.Logger.Info("played timeline",
		"events", len(opts.Timeline.Events),
		"frames", len(offsets),
		"duration", time.Since(start))
	return eng, frames, nil
}

func (r *Runner) play(ctx context.Context, eng *engine.Engine, opts Options, offsets []time.Duration) ([]Frame, error) {
	events := opts.Timeline.Events
	next := 0
	var frames []Frame
	for _, at := range offsets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for next < len(events) && events[next].At <= at {
			cmd, err := events[next].Command()
			if err != nil {
				return nil, err
			}
			eng.Post(cmd)
			next++
		}
		text, err := eng.Step(Epoch.Add(at))
		if err != nil {
			return nil, fmt.Errorf("frame at %v: %w", at, err)
		}
		if opts.AllFrames {
			frames = append(frames, Frame{At: at, Text: text})
		}
	}
	if !opts.AllFrames && len(offsets) > 0 {
		frames = []Frame{{At: offsets[len(offsets)-1], Text: eng.Text()}}
	}
	return frames, nil
}

// FrameOffsets returns the frame times from zero to end: every multiple of
// interval below end, then end itself.
func FrameOffsets(end, interval time.Duration) []time.Duration {
	if interval <= 0 {
		interval = time.Second / DefaultFrameRate
	}
	offsets := make([]time.Duration, 0, int(end/interval)+1)
	for at := time.Duration(0); at < end; at += interval {
		offsets = append(offsets, at)
	}
	return append(offsets, end)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
