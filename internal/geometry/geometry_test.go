package geometry

import (
	"image"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{X: 50, Y: 40}, true},
		{"top-left corner", Point{X: 10, Y: 20}, true},
		{"right edge exclusive", Point{X: 110, Y: 40}, false},
		{"bottom edge exclusive", Point{X: 50, Y: 70}, false},
		{"left of rect", Point{X: 9, Y: 40}, false},
		{"above rect", Point{X: 50, Y: 19}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("%s: Contains(%+v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestRectOverlaps(t *testing.T) {
	base := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"identical", base, true},
		{"partial", Rect{X: 50, Y: 50, Width: 100, Height: 100}, true},
		{"contained", Rect{X: 25, Y: 25, Width: 10, Height: 10}, true},
		{"touching edges", Rect{X: 100, Y: 0, Width: 50, Height: 100}, false},
		{"disjoint", Rect{X: 200, Y: 200, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		if got := base.Overlaps(tt.other); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
		if got := tt.other.Overlaps(base); got != tt.want {
			t.Errorf("%s: Overlaps is not symmetric", tt.name)
		}
	}
}

func TestRectEmpty(t *testing.T) {
	if (Rect{Width: 10, Height: 10}).Empty() {
		t.Error("non-degenerate rect reported empty")
	}
	if !(Rect{Width: 0, Height: 10}).Empty() {
		t.Error("zero-width rect not reported empty")
	}
	if !(Rect{Width: 10, Height: -1}).Empty() {
		t.Error("negative-height rect not reported empty")
	}
}

func TestRectCenter(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if c := r.Center(); c.X != 60 || c.Y != 45 {
		t.Errorf("Center() = %+v, want (60,45)", c)
	}
}

func TestRectImage(t *testing.T) {
	r := Rect{X: 5, Y: 10, Width: 20, Height: 30}
	want := image.Rect(5, 10, 25, 40)
	if got := r.Image(); got != want {
		t.Errorf("Image() = %v, want %v", got, want)
	}
}
