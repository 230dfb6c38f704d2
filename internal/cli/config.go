package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/input"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/occlusion"
	"github.com/matzehuels/dotgrid/pkg/pipeline"
	"github.com/matzehuels/dotgrid/pkg/render/sink"
)

// Config defaults.
const (
	defaultMinFontSize = 6.0
	defaultMaxFontSize = 48.0
	fontStep           = 1.0
)

// Config holds the settings read from config.toml. Flags override it.
type Config struct {
	FontSize    float64       `toml:"font_size"`
	MinFontSize float64       `toml:"min_font_size"`
	MaxFontSize float64       `toml:"max_font_size"`
	DPI         float64       `toml:"dpi"`
	Zoom        float64       `toml:"zoom"`
	TrailWindow time.Duration `toml:"trail_window"`
	FrameRate   int           `toml:"frame_rate"`
	NavHeight   float64       `toml:"nav_height"`
	DoubleClick time.Duration `toml:"double_click"`
	Theme       Theme         `toml:"theme"`
}

// Theme holds glyph colours as lipgloss colour strings ("36", "#5fafaf").
// Empty entries keep the default palette.
type Theme struct {
	Background string `toml:"background"`
	Trail      string `toml:"trail"`
	Border     string `toml:"border"`
	Focus      string `toml:"focus"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		FontSize:    metrics.DefaultFontSize,
		MinFontSize: defaultMinFontSize,
		MaxFontSize: defaultMaxFontSize,
		DPI:         metrics.DefaultDPI,
		Zoom:        metrics.DefaultZoom,
		TrailWindow: occlusion.DefaultWindow,
		FrameRate:   pipeline.DefaultFrameRate,
		DoubleClick: input.DefaultClickInterval,
	}
}

// loadConfig reads path over the defaults. A missing file yields the
// defaults unless required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, cfg.Validate()
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports INVALID_CONFIG for values no engine can run with.
func (c Config) Validate() error {
	switch {
	case c.FontSize <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "font_size %v must be positive", c.FontSize)
	case c.MinFontSize <= 0 || c.MaxFontSize < c.MinFontSize:
		return errors.New(errors.ErrCodeInvalidConfig, "font size range %v..%v is empty", c.MinFontSize, c.MaxFontSize)
	case c.FontSize < c.MinFontSize || c.FontSize > c.MaxFontSize:
		return errors.New(errors.ErrCodeInvalidConfig, "font_size %v outside %v..%v", c.FontSize, c.MinFontSize, c.MaxFontSize)
	case c.DPI <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "dpi %v must be positive", c.DPI)
	case c.Zoom <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "zoom %v must be positive", c.Zoom)
	case c.TrailWindow <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "trail_window %v must be positive", c.TrailWindow)
	case c.FrameRate <= 0 || c.FrameRate > 240:
		return errors.New(errors.ErrCodeInvalidConfig, "frame_rate %d outside 1..240", c.FrameRate)
	case c.NavHeight < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "nav_height %v is negative", c.NavHeight)
	case c.DoubleClick <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "double_click %v must be positive", c.DoubleClick)
	}
	return nil
}

// ClampFontSize limits pt to the configured range.
func (c Config) ClampFontSize(pt float64) float64 {
	return min(max(pt, c.MinFontSize), c.MaxFontSize)
}

// Palette returns the default palette with the theme colours applied.
func (c Config) Palette() sink.Palette {
	p := sink.DefaultPalette()
	if c.Theme.Background != "" {
		p.Background = p.Background.Foreground(lipgloss.Color(c.Theme.Background))
	}
	if c.Theme.Trail != "" {
		p.Trail = p.Trail.Foreground(lipgloss.Color(c.Theme.Trail))
	}
	if c.Theme.Border != "" {
		p.Border = p.Border.Foreground(lipgloss.Color(c.Theme.Border))
	}
	if c.Theme.Focus != "" {
		p.Focus = p.Focus.Foreground(lipgloss.Color(c.Theme.Focus))
	}
	return p
}

// config loads the configuration for the current invocation.
func (c *CLI) config() (Config, error) {
	path, explicit, err := c.resolveConfigPath()
	if err != nil {
		// No home directory: run on defaults.
		c.Logger.Debug("config directory unavailable", "err", err)
		path = ""
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", path, "font_size", cfg.FontSize, "frame_rate", cfg.FrameRate)
	return cfg, nil
}
