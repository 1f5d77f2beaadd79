// Package layout computes deterministic window geometry for the
// registry's tiling and cascade helpers.
package layout

import (
	"math"

	"github.com/prismwm/prism/internal/geometry"
)

// Cascade placement constants: first window at (50,50), each following
// window offset diagonally by 30px.
const (
	CascadeOriginX = 50
	CascadeOriginY = 50
	CascadeStep    = 30
)

// Grid computes a fixed-column grid over the workarea, filling cells
// left-to-right, top-to-bottom from the top-left corner. cols <= 0
// selects ceil(sqrt(n)) columns. gap is the spacing between cells and
// the workarea edge.
func Grid(n int, workarea geometry.Rect, cols int, gap int32) []geometry.Rect {
	if n <= 0 {
		return nil
	}
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	rows := (n + cols - 1) / cols

	cellW := (workarea.Width - int32(cols+1)*gap) / int32(cols)
	cellH := (workarea.Height - int32(rows+1)*gap) / int32(rows)
	if cellW <= 0 || cellH <= 0 {
		return nil
	}

	rects := make([]geometry.Rect, n)
	for i := 0; i < n; i++ {
		row := int32(i / cols)
		col := int32(i % cols)
		rects[i] = geometry.Rect{
			X:      workarea.X + gap + col*(cellW+gap),
			Y:      workarea.Y + gap + row*(cellH+gap),
			Width:  cellW,
			Height: cellH,
		}
	}
	return rects
}

// Cascade computes diagonally offset rects of a fixed size, wrapping
// back to the origin when a window would fall off the workarea.
func Cascade(n int, workarea geometry.Rect, size geometry.Size) []geometry.Rect {
	if n <= 0 {
		return nil
	}
	rects := make([]geometry.Rect, n)
	x := workarea.X + CascadeOriginX
	y := workarea.Y + CascadeOriginY
	for i := 0; i < n; i++ {
		if x+size.Width > workarea.X+workarea.Width || y+size.Height > workarea.Y+workarea.Height {
			x = workarea.X + CascadeOriginX
			y = workarea.Y + CascadeOriginY
		}
		rects[i] = geometry.Rect{X: x, Y: y, Width: size.Width, Height: size.Height}
		x += CascadeStep
		y += CascadeStep
	}
	return rects
}
