// Package pkg provides the libraries behind dotgrid, an animated ASCII-art
// background engine.
//
// # Overview
//
// dotgrid fills a viewport with a grid of two-character cells. Every cell
// shows a background dot, a short-lived trail left by the pointer, a border
// around one of the overlay boxes, or nothing when a box covers it. Boxes
// come from a scene document; dynamic boxes can be dragged and edited.
//
// # Architecture
//
// One step of the engine:
//
//	commands (pointer, drag, resize, font)
//	         ↓
//	    [drag] moves the dragged element
//	         ↓
//	    [box] refreshes dynamic box rects
//	         ↓
//	    [occlusion] classifies cells, stamps and decays the trail, draws borders
//	         ↓
//	    [render] serializes the grid as text
//
// [engine] owns all of this state and advances it with Step(now).
//
// # Main Packages
//
// [geom] - Pixel points, sizes and rectangles.
//
// [metrics] - Cell size measurement from a TrueType face or a fixed size.
//
// [grid] - The glyph and trail timestamp arrays.
//
// [box] - The registry of overlay rectangles read from the scene.
//
// [occlusion] - Per-frame cell classification, trail decay and borders.
//
// [drag] - The single drag session: grab offset, snapping and clamping.
//
// [render] - Text serialization of the grid, plus ANSI, JSON and PNG sinks.
//
// [scene] - The overlay document: elements, classes, inline editing and
// TOML/JSON files.
//
// [input] - Click sequence detection for double clicks.
//
// [pipeline] - Headless timeline playback used by the render command and
// the HTTP server.
//
// [server] - A chi router serving one session's frames.
//
// [cache] - On-disk cache of headless render results.
//
// [observability] - Hooks for step timing, rebuilds, drags and HTTP traffic.
//
// [errors] - Coded errors with user-facing messages.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/occlusion/   # Specific package
//	go test -run Example       # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/geom
// [metrics]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/metrics
// [grid]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/grid
// [box]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/box
// [occlusion]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/occlusion
// [drag]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/drag
// [render]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/render
// [engine]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/engine
// [scene]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/scene
// [input]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/input
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/dotgrid/pkg/errors
package pkg
