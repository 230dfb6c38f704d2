package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/pipeline"
	"github.com/matzehuels/dotgrid/pkg/server"
)

// shutdownTimeout bounds graceful shutdown after the context ends.
const shutdownTimeout = 5 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	width    float64
	height   float64
	fontSize float64
	sticky   bool
}

// serveCommand creates the serve command exposing one session over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:   "127.0.0.1:8080",
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "Serve frames over HTTP",
		Long: `Serve one animated session over HTTP.

Endpoints:
  GET  /frame          current frame as text (?t= offset in ms)
  GET  /frame.json     current frame as JSON
  GET  /scene          scene as JSON (ETag from the scene fingerprint)
  POST /pointer        {"x":..,"y":..} pointer move
  POST /pointer/leave  pointer left the surface
  POST /drag/down      {"x":..,"y":..,"clicks":..} button press
  POST /drag/up        button release
  GET  /healthz        liveness`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runServe(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "viewport height in pixels")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "font size in points (overrides config)")
	cmd.Flags().BoolVar(&opts.sticky, "sticky", false, "keep the pointer cell lit between moves")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.fontSize > 0 {
		cfg.FontSize = opts.fontSize
	}
	doc, err := loadScene(path)
	if err != nil {
		return err
	}
	if cfg.NavHeight > 0 && doc.NavHeight == 0 {
		doc.NavHeight = cfg.NavHeight
	}
	font, err := metrics.NewFont(metrics.FontOptions{Size: cfg.FontSize, DPI: cfg.DPI, Zoom: cfg.Zoom})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Scene:         doc,
		Metrics:       font,
		Viewport:      geom.Size{W: opts.width, H: opts.height},
		Window:        cfg.TrailWindow,
		StickyPointer: opts.sticky,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printInfo("Serving %s on %s", sceneName(path), StyleLink.Render("http://"+ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return ctx.Err()
}

func sceneName(path string) string {
	if path == "" {
		return "starter scene"
	}
	return path
}
