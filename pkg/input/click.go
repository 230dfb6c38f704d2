// Package input derives pointer gestures that terminals do not report
// directly.
package input

import (
	"math"
	"time"

	"github.com/matzehuels/dotgrid/pkg/geom"
)

// Defaults for multi-click detection.
const (
	DefaultClickInterval = 400 * time.Millisecond
	DefaultClickSlop     = 4.0
)

// ClickCounter numbers consecutive presses the way a browser fills a mouse
// event's detail field: a press close in time and space to the previous one
// continues the sequence, anything else starts a new sequence at 1.
type ClickCounter struct {
	Interval time.Duration // maximum gap between presses of one sequence
	Slop     float64       // maximum pointer travel in pixels between presses

	last  time.Time
	pos   geom.Point
	count int
}

// NewClickCounter returns a counter with the default interval and slop.
func NewClickCounter() *ClickCounter {
	return &ClickCounter{Interval: DefaultClickInterval, Slop: DefaultClickSlop}
}

// Press registers a press at p and returns its position in the current click
// sequence, starting at 1.
func (c *ClickCounter) Press(p geom.Point, now time.Time) int {
	interval, slop := c.Interval, c.Slop
	if interval <= 0 {
		interval = DefaultClickInterval
	}
	if slop <= 0 {
		slop = DefaultClickSlop
	}

	d := p.Sub(c.pos)
	near := math.Hypot(d.X, d.Y) <= slop
	recent := !c.last.IsZero() && now.Sub(c.last) <= interval && !now.Before(c.last)
	if c.count > 0 && near && recent {
		c.count++
	} else {
		c.count = 1
	}
	c.last, c.pos = now, p
	return c.count
}

// Reset forgets the current sequence.
func (c *ClickCounter) Reset() {
	c.count = 0
	c.last = time.Time{}
}
