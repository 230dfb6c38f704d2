// Package engine owns all mutable state of one animated background and
// advances it one frame at a time.
//
// Input arrives as [Command] values queued with [Engine.Post]. [Engine.Step]
// drains the queue in order, refreshes dynamic box geometry, reclassifies
// the grid and returns the rendered text. Nothing happens between steps, so
// a sequence of posts and steps with explicit timestamps is fully
// reproducible.
package engine

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgrid/pkg/box"
	"github.com/matzehuels/dotgrid/pkg/drag"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/grid"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/observability"
	"github.com/matzehuels/dotgrid/pkg/occlusion"
	"github.com/matzehuels/dotgrid/pkg/render"
)

// Options configures an Engine.
type Options struct {
	Metrics  metrics.Provider // required
	Source   box.Source       // overlay elements; nil means no boxes
	Viewport geom.Size        // surface size in pixels

	// NavHeight is the bottom edge of the reserved strip that dragged boxes
	// may not enter.
	NavHeight float64

	Window time.Duration // trail decay window; zero means the default
	Index  bool          // use the row-bucket index for occlusion tests

	// StickyPointer re-stamps the pointer cell on every step while the
	// pointer is present, not only on steps that received a move.
	StickyPointer bool

	Logger *log.Logger
}

// ValidateAndSetDefaults checks required fields and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Metrics == nil {
		return errors.New(errors.ErrCodeInvalidInput, "metrics provider is required")
	}
	if o.Viewport.W < 0 || o.Viewport.H < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "viewport %vx%v is negative", o.Viewport.W, o.Viewport.H)
	}
	if o.NavHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nav height %v is negative", o.NavHeight)
	}
	if o.Window <= 0 {
		o.Window = occlusion.DefaultWindow
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// cellSetter is implemented by sources that size elements from the cell.
type cellSetter interface {
	SetCell(geom.Size)
}

// Engine is one animated background. It is not safe for concurrent use.
type Engine struct {
	opts Options
	log  *log.Logger

	cell geom.Size
	view geom.Size

	grid *grid.Grid
	reg  *box.Registry
	occ  *occlusion.Engine
	drag drag.Controller

	pointer    geom.Point
	hasPointer bool
	moved      bool

	queue []Command
	now   time.Time
	frame uint64
	stats occlusion.Stats
	text  string
}

// New measures the cell, builds the grid and scans the box source.
func New(opts Options) (*Engine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	e := &Engine{
		opts: opts,
		log:  opts.Logger,
		view: opts.Viewport,
		grid: grid.New(0, 0),
		reg:  box.NewRegistry(),
		occ:  occlusion.New(occlusion.WithWindow(opts.Window), occlusion.WithIndex(opts.Index)),
	}
	if err := e.remeasure(); err != nil {
		return nil, err
	}
	return e, nil
}

// Post queues a command for the next step.
func (e *Engine) Post(cmds ...Command) {
	e.queue = append(e.queue, cmds...)
}

// Pending returns the number of queued commands.
func (e *Engine) Pending() int { return len(e.queue) }

// Step applies queued commands, refreshes the boxes, updates the grid for
// time now and returns the rendered frame. It fails only when a command is
// rejected, typically a font change that yields invalid cell metrics. The
// previous frame is returned with the error, the grid is left unchanged and
// the commands after the failing one stay queued.
func (e *Engine) Step(now time.Time) (string, error) {
	start := time.Now()
	e.moved = false
	for len(e.queue) > 0 {
		cmd := e.queue[0]
		e.queue = e.queue[1:]
		if err := e.apply(cmd); err != nil {
			return e.text, err
		}
	}

	e.reg.Refresh()
	e.stats = e.occ.Update(occlusion.Frame{
		Grid:       e.grid,
		Cell:       e.cell,
		Boxes:      e.reg.Rects(),
		Pointer:    e.pointer,
		HasPointer: e.hasPointer && (e.moved || e.opts.StickyPointer),
		Now:        now,
	})
	e.text = render.Text(e.grid)
	e.now = now
	e.frame++
	observability.Engine().OnStep(e.frame, time.Since(start), e.stats.Trail, e.stats.Inside)
	return e.text, nil
}

func (e *Engine) apply(cmd Command) error {
	switch c := cmd.(type) {
	case PointerMove:
		e.pointer, e.hasPointer, e.moved = c.At, true, true
		if r, ok := e.drag.Move(c.At, e.bounds(), e.cell); ok {
			e.log.Debug("drag move", "x", r.X, "y", r.Y)
		}
	case PointerLeave:
		e.hasPointer = false
	case PointerDown:
		b, ok := e.reg.HitTest(c.At)
		if ok && e.drag.Press(b, c.At, c.Clicks) {
			e.log.Debug("drag start", "box", b.Handle(), "offset", e.drag.Session().Offset)
			observability.Engine().OnDragStart(b.Handle())
		}
	case PointerUp:
		e.release()
	case Resize:
		if c.Viewport.W < 0 || c.Viewport.H < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "viewport %vx%v is negative", c.Viewport.W, c.Viewport.H)
		}
		e.view = c.Viewport
		e.rebuildGrid()
		e.rebuildRegistry()
	case SetFontSize:
		sz, ok := e.opts.Metrics.(metrics.Sizer)
		if !ok {
			return errors.New(errors.ErrCodeUnsupported, "metrics provider cannot change font size")
		}
		prev := sz.FontSize()
		sz.SetFontSize(c.Points)
		if err := e.remeasure(); err != nil {
			sz.SetFontSize(prev)
			return err
		}
		e.log.Info("font size changed", "pt", c.Points, "cell", e.cell)
	case Remeasure:
		return e.remeasure()
	case Rebuild:
		e.rebuildRegistry()
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown command %T", cmd)
	}
	return nil
}

func (e *Engine) release() {
	s := e.drag.Session()
	if s == nil {
		return
	}
	b := s.Box
	e.drag.Release()
	e.log.Debug("drag end", "box", b.Handle(), "x", b.Rect.X, "y", b.Rect.Y)
	observability.Engine().OnDragEnd(b.Handle(), b.Rect.X, b.Rect.Y)
}

// remeasure reads the cell size and rebuilds everything derived from it.
func (e *Engine) remeasure() error {
	cell, err := e.opts.Metrics.Measure()
	if err != nil {
		return err
	}
	if err := metrics.Validate(cell); err != nil {
		return err
	}
	e.cell = cell
	if cs, ok := e.opts.Source.(cellSetter); ok {
		cs.SetCell(cell)
	}
	e.rebuildGrid()
	e.rebuildRegistry()
	return nil
}

func (e *Engine) rebuildGrid() {
	rows, cols := grid.Dimensions(e.view, e.cell)
	e.grid.Rebuild(rows, cols)
	e.log.Debug("grid rebuilt", "rows", rows, "cols", cols, "cell", e.cell)
	observability.Engine().OnGridRebuild(rows, cols, e.cell.W, e.cell.H)
}

func (e *Engine) rebuildRegistry() {
	// Box pointers do not survive a rebuild.
	e.release()
	n := e.reg.Rebuild(e.opts.Source)
	observability.Engine().OnRegistryRebuild(n, e.reg.Movable())
}

func (e *Engine) bounds() drag.Bounds {
	return drag.Bounds{View: e.view, Top: e.opts.NavHeight}
}

// SetNavHeight changes the reserved strip height used for drag clamping.
func (e *Engine) SetNavHeight(h float64) {
	if h >= 0 {
		e.opts.NavHeight = h
	}
}

// Grid returns the live grid. It is rebuilt, not resized, on resize and font
// changes, so callers must not keep it across steps.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Registry returns the box registry.
func (e *Engine) Registry() *box.Registry { return e.reg }

// Cell returns the current cell size in pixels.
func (e *Engine) Cell() geom.Size { return e.cell }

// Viewport returns the surface size in pixels.
func (e *Engine) Viewport() geom.Size { return e.view }

// NavHeight returns the reserved strip height.
func (e *Engine) NavHeight() float64 { return e.opts.NavHeight }

// Pointer returns the last pointer position and whether it is present.
func (e *Engine) Pointer() (geom.Point, bool) { return e.pointer, e.hasPointer }

// Dragging returns the box being dragged, or nil.
func (e *Engine) Dragging() *box.Box {
	if s := e.drag.Session(); s != nil {
		return s.Box
	}
	return nil
}

// Frame returns the number of completed steps.
func (e *Engine) Frame() uint64 { return e.frame }

// Now returns the time passed to the last successful step.
func (e *Engine) Now() time.Time { return e.now }

// Stats returns the occlusion statistics of the last step.
func (e *Engine) Stats() occlusion.Stats { return e.stats }

// Text returns the frame produced by the last successful step.
func (e *Engine) Text() string { return e.text }

// FontSize returns the provider's font size, or zero when it has none.
func (e *Engine) FontSize() float64 {
	if sz, ok := e.opts.Metrics.(metrics.Sizer); ok {
		return sz.FontSize()
	}
	return 0
}
