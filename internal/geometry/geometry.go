// Package geometry provides the integer point/size/rect primitives shared
// by the window manager and the compositor.
package geometry

import "image"

// Point is a position in the global output coordinate space.
type Point struct {
	X int32
	Y int32
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int32
	Height int32
}

// Rect is a window rectangle in global coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Overlaps reports whether the two rectangles share any area.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image converts the rect to an image.Rectangle for draw operations.
func (r Rect) Image() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
}
