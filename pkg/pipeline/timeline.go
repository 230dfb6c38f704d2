package pipeline

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Event kinds.
const (
	EventMove   = "move"
	EventLeave  = "leave"
	EventDown   = "down"
	EventUp     = "up"
	EventResize = "resize"
	EventFont   = "font"
)

// Event is one timed input.
type Event struct {
	At     time.Duration `toml:"at"`
	Kind   string        `toml:"kind"`
	X      float64       `toml:"x,omitempty"`
	Y      float64       `toml:"y,omitempty"`
	Clicks int           `toml:"clicks,omitempty"`
	W      float64       `toml:"w,omitempty"`
	H      float64       `toml:"h,omitempty"`
	Size   float64       `toml:"size,omitempty"`
}

// Command converts the event into an engine command.
func (e Event) Command() (engine.Command, error) {
	switch e.Kind {
	case EventMove:
		return engine.PointerMove{At: geom.Point{X: e.X, Y: e.Y}}, nil
	case EventLeave:
		return engine.PointerLeave{}, nil
	case EventDown:
		clicks := e.Clicks
		if clicks == 0 {
			clicks = 1
		}
		return engine.PointerDown{At: geom.Point{X: e.X, Y: e.Y}, Clicks: clicks}, nil
	case EventUp:
		return engine.PointerUp{}, nil
	case EventResize:
		return engine.Resize{Viewport: geom.Size{W: e.W, H: e.H}}, nil
	case EventFont:
		return engine.SetFontSize{Points: e.Size}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown event kind %q", e.Kind)
}

// Timeline is an ordered list of events.
type Timeline struct {
	// Duration extends playback past the last event.
	Duration time.Duration `toml:"duration,omitempty"`
	Events   []Event       `toml:"event"`
}

// Validate checks every event and sorts the events by offset, keeping the
// file order of simultaneous events.
func (t *Timeline) Validate() error {
	if t.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeline duration %v is negative", t.Duration)
	}
	for i, ev := range t.Events {
		if ev.At < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "event %d: negative offset %v", i, ev.At)
		}
		if _, err := ev.Command(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if ev.Kind == EventResize && (ev.W < 0 || ev.H < 0) {
			return errors.New(errors.ErrCodeInvalidInput, "event %d: negative viewport", i)
		}
	}
	slices.SortStableFunc(t.Events, func(a, b Event) int { return cmp.Compare(a.At, b.At) })
	return nil
}

// End returns the later of Duration and the last event offset.
func (t *Timeline) End() time.Duration {
	end := t.Duration
	for _, ev := range t.Events {
		end = max(end, ev.At)
	}
	return end
}

// DecodeTimeline reads a TOML timeline.
func DecodeTimeline(r io.Reader) (Timeline, error) {
	var t Timeline
	md, err := toml.NewDecoder(r).Decode(&t)
	if err != nil {
		return Timeline{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode timeline")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Timeline{}, errors.New(errors.ErrCodeInvalidInput, "unknown timeline key %q", undec[0].String())
	}
	if err := t.Validate(); err != nil {
		return Timeline{}, err
	}
	return t, nil
}

// LoadTimeline reads a TOML timeline from path.
func LoadTimeline(path string) (Timeline, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Timeline{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "timeline %s", path)
		}
		return Timeline{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open timeline %s", path)
	}
	defer fh.Close()
	return DecodeTimeline(fh)
}
