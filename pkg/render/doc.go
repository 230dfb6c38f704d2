// Package render serializes the character grid for display.
//
// [Text] is the canonical output: a single block of text, one line per grid
// row, two characters per cell (the glyph mark and a spacer). It is a pure
// function of the grid.
//
// The [sink] subpackage builds other outputs on top of it: ANSI-styled text
// for terminals, JSON frames for the HTTP server, and PNG snapshots.
//
//	out := render.Text(g)
//	fmt.Print(out)
package render
