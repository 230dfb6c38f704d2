package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgrid/pkg/observability"
)

// logHooks writes observability events to a logger at debug level. Step
// events are frequent, so they are only logged every stepEvery frames.
type logHooks struct {
	log *log.Logger
}

const stepEvery = 60

func (h *logHooks) OnStep(frame uint64, d time.Duration, trail, inside int) {
	if frame%stepEvery != 0 {
		return
	}
	h.log.Debug("step", "frame", frame, "duration", d, "trail", trail, "inside", inside)
}

func (h *logHooks) OnGridRebuild(rows, cols int, cellW, cellH float64) {
	h.log.Debug("grid", "rows", rows, "cols", cols, "cell_w", cellW, "cell_h", cellH)
}

func (h *logHooks) OnRegistryRebuild(boxes, movable int) {
	h.log.Debug("registry", "boxes", boxes, "movable", movable)
}

func (h *logHooks) OnDragStart(handle string) {
	h.log.Debug("drag start", "box", handle)
}

func (h *logHooks) OnDragEnd(handle string, x, y float64) {
	h.log.Debug("drag end", "box", handle, "x", x, "y", y)
}

func (h *logHooks) OnPlaybackStart(_ context.Context, events, frames int) {
	h.log.Debug("playback start", "events", events, "frames", frames)
}

func (h *logHooks) OnPlaybackComplete(_ context.Context, frames int, d time.Duration, err error) {
	if err != nil {
		h.log.Debug("playback failed", "frames", frames, "duration", d, "err", err)
		return
	}
	h.log.Debug("playback complete", "frames", frames, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.log.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.log.Debug("render failed", "formats", formats, "err", err)
		return
	}
	h.log.Debug("render complete", "formats", formats, "duration", d)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.log.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.log.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ observability.EngineHooks   = (*logHooks)(nil)
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.HTTPHooks     = (*logHooks)(nil)
)
