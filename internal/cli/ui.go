package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives frames and status lines. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // spinner
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // edit buffer
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // info
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue renders paths and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printStatus(icon lipgloss.Style, mark, format string, args ...any) {
	fmt.Fprintln(stdout, icon.Render(mark)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	printStatus(styleIconSuccess, iconSuccess, format, args...)
}

func printInfo(format string, args ...any) {
	printStatus(styleIconInfo, iconInfo, format, args...)
}

// printFile prints an indented line naming a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printFrameStats prints playback statistics on one dim line, e.g.
// "61 frames · 120x24 cells · 3 trail".
func printFrameStats(frames, rows, cols, trail int) {
	parts := []string{
		fmt.Sprintf("%d frames", frames),
		fmt.Sprintf("%dx%d cells", cols, rows),
	}
	if trail > 0 {
		parts = append(parts, fmt.Sprintf("%d trail", trail))
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printNextStep suggests a command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
