package layout

import (
	"testing"

	"github.com/prismwm/prism/internal/geometry"
)

func TestGridDimensions(t *testing.T) {
	workarea := geometry.Rect{Width: 1200, Height: 800}

	tests := []struct {
		name     string
		n        int
		cols     int
		gap      int32
		wantCell geometry.Size
	}{
		{"single window fills workarea", 1, 0, 0, geometry.Size{Width: 1200, Height: 800}},
		{"two windows split horizontally", 2, 0, 0, geometry.Size{Width: 600, Height: 800}},
		{"four windows quarter", 4, 0, 0, geometry.Size{Width: 600, Height: 400}},
		{"fixed single column stacks", 3, 1, 0, geometry.Size{Width: 1200, Height: 266}},
		{"gap shrinks cells", 2, 2, 10, geometry.Size{Width: 585, Height: 780}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rects := Grid(tt.n, workarea, tt.cols, tt.gap)
			if len(rects) != tt.n {
				t.Fatalf("Grid returned %d rects, want %d", len(rects), tt.n)
			}
			for i, r := range rects {
				if r.Width != tt.wantCell.Width || r.Height != tt.wantCell.Height {
					t.Errorf("rect %d is %dx%d, want %dx%d", i, r.Width, r.Height, tt.wantCell.Width, tt.wantCell.Height)
				}
			}
		})
	}
}

func TestGridCellsDoNotOverlap(t *testing.T) {
	workarea := geometry.Rect{X: 100, Y: 50, Width: 1280, Height: 720}
	for _, n := range []int{1, 2, 3, 5, 7, 12} {
		rects := Grid(n, workarea, 0, 8)
		if len(rects) != n {
			t.Fatalf("n=%d: got %d rects", n, len(rects))
		}
		for i := range rects {
			if rects[i].X < workarea.X || rects[i].Y < workarea.Y {
				t.Errorf("n=%d: rect %d escapes workarea origin: %+v", n, i, rects[i])
			}
			if rects[i].X+rects[i].Width > workarea.X+workarea.Width ||
				rects[i].Y+rects[i].Height > workarea.Y+workarea.Height {
				t.Errorf("n=%d: rect %d escapes workarea bounds: %+v", n, i, rects[i])
			}
			for j := i + 1; j < n; j++ {
				if rects[i].Overlaps(rects[j]) {
					t.Errorf("n=%d: rects %d and %d overlap", n, i, j)
				}
			}
		}
	}
}

func TestGridRejectsImpossibleFit(t *testing.T) {
	tiny := geometry.Rect{Width: 10, Height: 10}
	if rects := Grid(50, tiny, 0, 8); rects != nil {
		t.Fatalf("expected nil for unfittable grid, got %d rects", len(rects))
	}
	if rects := Grid(0, tiny, 0, 0); rects != nil {
		t.Fatalf("expected nil for zero windows, got %d rects", len(rects))
	}
}

func TestCascadeOffsets(t *testing.T) {
	workarea := geometry.Rect{Width: 1920, Height: 1080}
	size := geometry.Size{Width: 800, Height: 600}

	rects := Cascade(3, workarea, size)
	if len(rects) != 3 {
		t.Fatalf("got %d rects, want 3", len(rects))
	}
	for i, r := range rects {
		wantX := int32(CascadeOriginX + i*CascadeStep)
		wantY := int32(CascadeOriginY + i*CascadeStep)
		if r.X != wantX || r.Y != wantY {
			t.Errorf("rect %d at (%d,%d), want (%d,%d)", i, r.X, r.Y, wantX, wantY)
		}
		if r.Width != size.Width || r.Height != size.Height {
			t.Errorf("rect %d is %dx%d, want %dx%d", i, r.Width, r.Height, size.Width, size.Height)
		}
	}
}

func TestCascadeWrapsAtEdge(t *testing.T) {
	workarea := geometry.Rect{Width: 1000, Height: 700}
	size := geometry.Size{Width: 940, Height: 500}

	// Slot 0 at (50,50). Slot 1 would reach x=1020 > 1000, so it wraps
	// back to the origin.
	rects := Cascade(2, workarea, size)
	if rects[1].X != CascadeOriginX || rects[1].Y != CascadeOriginY {
		t.Fatalf("second rect at (%d,%d), want wrap to (%d,%d)", rects[1].X, rects[1].Y, CascadeOriginX, CascadeOriginY)
	}
}

func TestCascadeRespectsWorkareaOrigin(t *testing.T) {
	workarea := geometry.Rect{X: 200, Y: 100, Width: 1920, Height: 1080}
	rects := Cascade(1, workarea, geometry.Size{Width: 400, Height: 300})
	if rects[0].X != 200+CascadeOriginX || rects[0].Y != 100+CascadeOriginY {
		t.Fatalf("rect at (%d,%d), want workarea-relative origin", rects[0].X, rects[0].Y)
	}
}
