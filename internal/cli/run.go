package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/observability"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	fontSize  float64 // overrides font_size
	frameRate int     // overrides frame_rate
	sticky    bool    // keep stamping the pointer between moves
	noLabels  bool    // hide box content
	logFile   string  // log destination while the terminal is in use
	save      bool    // write the scene back on exit
}

// runCommand creates the run command for the interactive terminal view.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "Animate a scene in the terminal",
		Long: `Animate a scene in the terminal.

Move the mouse to leave a trail, drag movable boxes with the left button and
double click a box to edit its text. Without a scene file the starter scene
is used.

Keys:
  tab / shift+tab   cycle focus
  enter             edit the focused box (enter again to finish)
  alt+enter         new line while editing
  ctrl+v            paste while editing
  esc               cancel editing, or clear focus
  + / -             change font size
  y                 copy the frame to the clipboard
  q                 quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runInteractive(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "font size in points (overrides config)")
	cmd.Flags().IntVar(&opts.frameRate, "frame-rate", 0, "frames per second (overrides config)")
	cmd.Flags().BoolVar(&opts.sticky, "sticky", false, "keep the pointer cell lit while the mouse rests")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "hide box content")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	cmd.Flags().BoolVar(&opts.save, "save", false, "write edits and moves back to the scene file on exit")

	return cmd
}

func (c *CLI) runInteractive(ctx context.Context, path string, opts runOpts) error {
	if opts.save && path == "" {
		return fmt.Errorf("--save requires a scene file")
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.fontSize > 0 {
		cfg.FontSize = cfg.ClampFontSize(opts.fontSize)
	}
	if opts.frameRate > 0 {
		cfg.FrameRate = opts.frameRate
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc, err := loadScene(path)
	if err != nil {
		return err
	}
	if cfg.NavHeight > 0 && doc.NavHeight == 0 {
		doc.NavHeight = cfg.NavHeight
	}

	logger, closeLog, err := c.tuiLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	font, err := metrics.NewFont(metrics.FontOptions{Size: cfg.FontSize, DPI: cfg.DPI, Zoom: cfg.Zoom})
	if err != nil {
		return err
	}
	char, err := font.Char()
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Options{
		Metrics:       font,
		Source:        doc,
		NavHeight:     doc.NavHeight,
		Window:        cfg.TrailWindow,
		Index:         true,
		StickyPointer: opts.sticky,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	logger.Info("starting", "scene", path, "boxes", doc.Len(), "font", font.String())

	model := NewBackgroundModel(eng, doc, cfg, char, logger)
	model.SetLabels(!opts.noLabels)

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("terminal: %w", err)
	}
	// Quitting mid-edit keeps the edited text.
	model.finishEdit()

	logger.Info("stopped", "frames", eng.Frame())
	if opts.save {
		if err := saveScene(path, doc); err != nil {
			return err
		}
		printSuccess("Saved %s", path)
	}
	return nil
}

// tuiLogger returns a logger for the run command. The terminal is owned by
// the program, so logs go to path or nowhere.
func (c *CLI) tuiLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		observability.Reset()
		return log.New(io.Discard), func() {}, nil
	}
	l, f, err := openLogFile(path, c.Logger.GetLevel())
	if err != nil {
		return nil, nil, err
	}
	if c.Logger.GetLevel() <= log.DebugLevel {
		installHooks(l)
	}
	return l, func() { _ = f.Close() }, nil
}

// loadScene reads a scene file, or returns the starter scene for an empty path.
func loadScene(path string) (*scene.Document, error) {
	if path == "" {
		return scene.FromFile(scene.Starter())
	}
	return scene.Load(path)
}

// saveScene writes doc to path as TOML.
func saveScene(path string, doc *scene.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := scene.Encode(f, doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
