// Package sink renders a grid into display formats beyond plain text.
//
//   - [RenderANSI]: lipgloss-styled text for terminals, with text labels
//     overlaid on top of the grid (box content drawn by the overlay layer)
//   - [RenderJSON]: a frame document for HTTP clients
//   - [RenderPNG]: a raster snapshot drawn with the Go Mono font
package sink
