// Package geom holds the pixel-space primitives shared by the engine packages.
//
// All coordinates are viewport pixels with the origin at the top-left corner,
// x growing to the right and y growing downwards.
package geom

import "math"

// Point is a position in pixel space.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// Valid reports whether both dimensions are finite and strictly positive.
func (s Size) Valid() bool {
	return finite(s.W) && finite(s.H) && s.W > 0 && s.H > 0
}

// Scale returns s multiplied component-wise by f.
func (s Size) Scale(f float64) Size { return Size{W: s.W * f, H: s.H * f} }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// At returns r moved so its top-left corner is p.
func (r Rect) At(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// Contains reports whether p lies inside the closed rectangle. Points on any
// of the four edges count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Within reports whether r lies entirely inside outer.
func (r Rect) Within(outer Rect) bool {
	return r.X >= outer.X && r.Y >= outer.Y &&
		r.Right() <= outer.Right() && r.Bottom() <= outer.Bottom()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
