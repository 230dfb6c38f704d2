package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/dotgrid/pkg/grid"
)

// spinnerWidth is the number of cells in the spinner's dot strip.
const spinnerWidth = 4

// Spinner draws a trail glyph sweeping over a strip of background dots while
// a long operation runs. It stops when its context ends.
type Spinner struct {
	message string
	out     io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	frames  []string

	mu      sync.Mutex
	started bool
	stopped chan struct{}
	once    sync.Once
}

// newSpinnerWithContext creates a spinner writing to stderr.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     w,
		ctx:     sctx,
		cancel:  cancel,
		frames:  spinnerFrames(spinnerWidth),
		stopped: make(chan struct{}),
	}
}

// spinnerFrames returns one frame per trail position, bouncing back and
// forth across n cells.
func spinnerFrames(n int) []string {
	cell := func(pos int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			if i == pos {
				b.WriteString(grid.Trail.Text())
			} else {
				b.WriteString(grid.Background.Text())
			}
		}
		return strings.TrimRight(b.String(), " ")
	}
	frames := make([]string, 0, 2*n-2)
	for i := 0; i < n; i++ {
		frames = append(frames, cell(i))
	}
	for i := n - 2; i > 0; i-- {
		frames = append(frames, cell(i))
	}
	return frames
}

// Start begins the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(s.frames[i%len(s.frames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.started = true
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", 2*spinnerWidth+len(s.message)+1))
}

// Cancelled reports whether the spinner's context has ended.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
