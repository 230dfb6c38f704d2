// Package cli implements the dotgrid command-line interface.
//
// The commands drive one engine each: run owns the terminal through a
// bubbletea program, render replays a timeline headlessly and writes the
// selected frame, serve exposes a session over HTTP and scene manages scene
// files. The CLI is built using cobra and logs with charmbracelet/log.
//
// # Commands
//
//   - run: Animate a scene in the terminal (mouse, drag, inline editing)
//   - render: Replay a timeline and write text, ANSI, JSON or PNG frames
//   - serve: Serve frames and input endpoints over HTTP
//   - scene: Create a starter scene or export a scene as JSON
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// installs logging observability hooks. Loggers are passed through
// context.Context. The run command writes its log to --log-file because the
// terminal belongs to the program.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat renders timestamps as "HH:MM:SS.cc".
const logTimeFormat = "15:04:05.00"

// newLogger creates a logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// openLogFile appends to path with a logger at level. The caller closes the
// returned file.
func openLogFile(path string, level log.Level) (*log.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l := newLogger(f, level)
	l.SetPrefix(appName)
	return l, f, nil
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time rounded to
// the millisecond, e.g. "Rendered frames frames=61 elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type ctxKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
