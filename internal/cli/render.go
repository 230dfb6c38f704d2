package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgrid/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string        // output file (single format) or base path (multiple)
	formats   []string      // output formats: text, ansi, json, png
	timeline  string        // timeline TOML file
	at        time.Duration // offset of the emitted frame
	all       bool          // write every frame, not only the emitted one
	width     float64       // viewport width in pixels
	height    float64       // viewport height in pixels
	frameRate int           // frames per virtual second
	fontSize  float64       // overrides font_size
	labels    bool          // draw box content in ANSI output
	sticky    bool          // keep the pointer cell lit between moves
	noCache   bool          // always replay, never read or write the cache
}

// renderCommand creates the render command for headless frames.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Replay a timeline and render a frame",
		Long: `Replay a timeline of input events against a scene at a fixed frame rate
and write the frame at --at (or at the end of the timeline).

Without --out, text, ansi and json frames go to stdout. PNG always needs a
file, and several formats are written next to each other as <out>.<format>.`,
		Example: `  dotgrid render examples/scene.toml -t examples/timeline.toml
  dotgrid render examples/scene.toml -t examples/timeline.toml -f png,json -o frame
  dotgrid render examples/scene.toml -t examples/timeline.toml --all -o frames/f`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), ansi, json, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.timeline, "timeline", "t", "", "timeline file with input events")
	cmd.Flags().DurationVar(&opts.at, "at", 0, "offset of the emitted frame (default: end of timeline)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "write every frame as text")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "viewport height in pixels")
	cmd.Flags().IntVar(&opts.frameRate, "frame-rate", 0, "frames per second (overrides config)")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "font size in points (overrides config)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw box content in ansi output")
	cmd.Flags().BoolVar(&opts.sticky, "sticky", false, "keep the pointer cell lit between moves")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the frame cache")

	return cmd
}

// runRender builds pipeline options from the config and flags, plays the
// timeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	popts, err := c.pipelineOptions(input, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering frames...")
	if opts.output != "" {
		spinner.Start()
	}
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, popts)
	if opts.output != "" {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Rendered frames", "frames", result.Stats.Frames, "cached", result.Cached)
	logger.Debug("render stats",
		"events", result.Stats.Events,
		"play", result.Stats.PlayTime,
		"scene", fmt.Sprintf("%016x", result.SceneHash))
	if opts.output != "" {
		printFrameStats(result.Stats.Frames, result.Stats.Rows, result.Stats.Cols, result.Stats.Trail)
	}

	if opts.all {
		return writeFrames(result.Frames, opts.output)
	}
	return writeArtifacts(ctx, result.Artifacts, opts)
}

// pipelineOptions merges the config file and flags into pipeline options.
func (c *CLI) pipelineOptions(input string, opts *renderOpts) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	if opts.fontSize > 0 {
		cfg.FontSize = opts.fontSize
	}
	if opts.frameRate > 0 {
		cfg.FrameRate = opts.frameRate
	}

	doc, err := loadScene(input)
	if err != nil {
		return pipeline.Options{}, err
	}
	if cfg.NavHeight > 0 && doc.NavHeight == 0 {
		doc.NavHeight = cfg.NavHeight
	}

	popts := pipeline.Options{
		Scene:         doc,
		Width:         opts.width,
		Height:        opts.height,
		FrameRate:     cfg.FrameRate,
		At:            opts.at,
		AllFrames:     opts.all,
		Window:        cfg.TrailWindow,
		StickyPointer: opts.sticky,
		FontSize:      cfg.FontSize,
		DPI:           cfg.DPI,
		Zoom:          cfg.Zoom,
		Formats:       opts.formats,
		Labels:        opts.labels,
	}
	if opts.timeline == "" && opts.at == 0 {
		c.Logger.Warn("no timeline or --at given, rendering the first frame")
	}
	if opts.timeline != "" {
		tl, err := pipeline.LoadTimeline(opts.timeline)
		if err != nil {
			return pipeline.Options{}, err
		}
		popts.Timeline = tl
	}
	return popts, nil
}

// writeArtifacts writes one artifact to --out (or stdout), or several to
// <base>.<format>.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	if len(opts.formats) == 1 {
		format := opts.formats[0]
		if format == pipeline.FormatPNG && opts.output == "" {
			return fmt.Errorf("png output needs --out")
		}
		if err := writeOutput(opts.output, artifacts[format]); err != nil {
			return err
		}
		if opts.output != "" {
			printFile(opts.output)
		}
		return nil
	}

	base := basePath(opts.output)
	if base == "" {
		return fmt.Errorf("multiple formats need --out")
	}
	for _, format := range opts.formats {
		path := base + "." + format
		if err := writeOutput(path, artifacts[format]); err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		logger.Debugf("Generated %s: %d bytes", path, len(artifacts[format]))
		printFile(path)
	}
	return nil
}

// writeFrames writes every frame to stdout separated by blank lines, or to
// <base>-NNNN.txt files.
func writeFrames(frames []pipeline.Frame, output string) error {
	if output == "" {
		for i, f := range frames {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprint(stdout, f.Text)
		}
		return nil
	}
	base := basePath(output)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	for i, f := range frames {
		path := fmt.Sprintf("%s-%04d.txt", base, i)
		if err := writeOutput(path, []byte(f.Text)); err != nil {
			return err
		}
	}
	printSuccess("Wrote %d frames to %s-*.txt", len(frames), base)
	return nil
}

// basePath strips a known format extension from output.
func basePath(output string) string {
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] || ext == ".txt" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutput writes data to path, or to stdout for an empty path.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// openOutput returns stdout for an empty path, else creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
