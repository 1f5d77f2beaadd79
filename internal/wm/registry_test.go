package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismwm/prism/internal/geometry"
)

func newTestRegistry() *Registry {
	return NewRegistry(geometry.Rect{Width: 1920, Height: 1080}, 0, 8)
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	reg := newTestRegistry()
	seen := make(map[uint32]bool)
	for i := 0; i < 10; i++ {
		id, err := reg.Create(Options{Title: "w"})
		require.NoError(t, err)
		require.False(t, seen[id], "ID %d reused", id)
		seen[id] = true
	}

	// IDs are not reused even after destruction.
	for id := range seen {
		require.NoError(t, reg.Destroy(id))
	}
	id, err := reg.Create(Options{Title: "w"})
	require.NoError(t, err)
	assert.False(t, seen[id], "destroyed window's ID was reused")
}

func TestFirstWindowReceivesFocus(t *testing.T) {
	reg := newTestRegistry()
	first, err := reg.Create(Options{Title: "first"})
	require.NoError(t, err)
	_, err = reg.Create(Options{Title: "second"})
	require.NoError(t, err)

	assert.Equal(t, first, reg.Focused())
	win, err := reg.Get(first)
	require.NoError(t, err)
	assert.True(t, win.Focused())
}

func TestNotFoundAfterDestroy(t *testing.T) {
	reg := newTestRegistry()
	id, err := reg.Create(Options{Title: "gone"})
	require.NoError(t, err)
	require.NoError(t, reg.Destroy(id))

	// Lookups from other call sites in the same frame fail cleanly.
	_, err = reg.Get(id)
	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.ErrorIs(t, reg.Destroy(id), ErrWindowNotFound)
	assert.ErrorIs(t, reg.Focus(id), ErrWindowNotFound)
	assert.ErrorIs(t, reg.Raise(id), ErrWindowNotFound)
	assert.ErrorIs(t, reg.Lower(id), ErrWindowNotFound)
}

func TestDestroyFocusedClearsFocus(t *testing.T) {
	reg := newTestRegistry()
	a, _ := reg.Create(Options{Title: "a"})
	b, _ := reg.Create(Options{Title: "b"})
	require.NoError(t, reg.Focus(b))
	require.NoError(t, reg.Destroy(b))

	assert.Equal(t, uint32(0), reg.Focused(), "destroying the focus holder must leave no focused window")
	winA, err := reg.Get(a)
	require.NoError(t, err)
	assert.False(t, winA.Focused())
}

func TestFocusIsExclusiveAndRaises(t *testing.T) {
	reg := newTestRegistry()
	a, _ := reg.Create(Options{Title: "a"})
	b, _ := reg.Create(Options{Title: "b"})
	c, _ := reg.Create(Options{Title: "c"})

	require.NoError(t, reg.Focus(b))

	focusedCount := 0
	for _, win := range reg.Windows() {
		if win.Focused() {
			focusedCount++
			assert.Equal(t, b, win.ID())
		}
	}
	assert.Equal(t, 1, focusedCount, "exactly one window may hold focus")
	assert.Equal(t, b, reg.Windows()[0].ID(), "focused window must move to front")
	_ = a
	_ = c
}

func TestZOrderRaiseLower(t *testing.T) {
	reg := newTestRegistry()
	a, _ := reg.Create(Options{Title: "a"})
	b, _ := reg.Create(Options{Title: "b"})
	c, _ := reg.Create(Options{Title: "c"})

	// Creation order: each new window lands at the front.
	order := func() []uint32 {
		var ids []uint32
		for _, win := range reg.Windows() {
			ids = append(ids, win.ID())
		}
		return ids
	}
	assert.Equal(t, []uint32{c, b, a}, order())

	require.NoError(t, reg.Raise(a))
	assert.Equal(t, []uint32{a, c, b}, order())

	require.NoError(t, reg.Lower(c))
	assert.Equal(t, []uint32{a, b, c}, order())
}

func TestWindowAtPrefersFrontmost(t *testing.T) {
	reg := newTestRegistry()
	back, _ := reg.Create(Options{
		Title:    "back",
		Position: geometry.Point{X: 0, Y: 0},
		Size:     geometry.Size{Width: 400, Height: 400},
	})
	front, _ := reg.Create(Options{
		Title:    "front",
		Position: geometry.Point{X: 200, Y: 200},
		Size:     geometry.Size{Width: 400, Height: 400},
	})

	tests := []struct {
		name  string
		point geometry.Point
		want  uint32
		hit   bool
	}{
		{"overlap favors front", geometry.Point{X: 300, Y: 300}, front, true},
		{"back only", geometry.Point{X: 50, Y: 50}, back, true},
		{"front only", geometry.Point{X: 550, Y: 550}, front, true},
		{"miss", geometry.Point{X: 1800, Y: 900}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reg.WindowAt(tt.point)
			assert.Equal(t, tt.hit, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowAtSkipsInvisible(t *testing.T) {
	reg := newTestRegistry()
	back, _ := reg.Create(Options{Size: geometry.Size{Width: 400, Height: 400}})
	front, _ := reg.Create(Options{Size: geometry.Size{Width: 400, Height: 400}})

	frontWin, _ := reg.Get(front)
	require.NoError(t, frontWin.Hide())

	got, ok := reg.WindowAt(geometry.Point{X: 100, Y: 100})
	require.True(t, ok)
	assert.Equal(t, back, got, "hidden windows must not take hits")
}

func TestParentChildConsistency(t *testing.T) {
	reg := newTestRegistry()
	parent, _ := reg.Create(Options{Title: "parent"})
	child, _ := reg.Create(Options{Title: "child"})

	require.NoError(t, reg.SetParent(child, parent))
	parentWin, _ := reg.Get(parent)
	childWin, _ := reg.Get(child)
	assert.Equal(t, parent, childWin.Parent())
	assert.Equal(t, []uint32{child}, parentWin.Children())

	// Destroying the child must remove it from the parent's list.
	require.NoError(t, reg.Destroy(child))
	assert.Empty(t, parentWin.Children(), "destroy left a dangling child ID")
}

func TestDestroyParentDetachesChildren(t *testing.T) {
	reg := newTestRegistry()
	parent, _ := reg.Create(Options{Title: "parent"})
	child, _ := reg.Create(Options{Title: "child", Parent: parent})

	childWin, _ := reg.Get(child)
	require.Equal(t, parent, childWin.Parent())

	require.NoError(t, reg.Destroy(parent))
	assert.Equal(t, uint32(0), childWin.Parent(), "destroying a parent must detach its children")
	_, err := reg.Get(child)
	assert.NoError(t, err, "children outlive their parent")
}

func TestTilePartitionsWorkarea(t *testing.T) {
	reg := NewRegistry(geometry.Rect{Width: 1200, Height: 800}, 0, 0)
	a, _ := reg.Create(Options{Title: "A"})
	b, _ := reg.Create(Options{Title: "B"})
	c, _ := reg.Create(Options{Title: "C"})

	require.NoError(t, reg.Tile())

	wins := reg.Windows()
	require.Len(t, wins, 3)
	for i, w := range wins {
		assert.Equal(t, StateNormal, w.State())
		for j := i + 1; j < len(wins); j++ {
			assert.False(t, w.Rect().Overlaps(wins[j].Rect()),
				"tiled windows %d and %d overlap: %+v vs %+v", w.ID(), wins[j].ID(), w.Rect(), wins[j].Rect())
		}
	}

	// 3 windows, auto columns = ceil(sqrt(3)) = 2, rows = 2: cells are
	// 600x400 assigned back-to-front from the top-left.
	winA, _ := reg.Get(a)
	winB, _ := reg.Get(b)
	winC, _ := reg.Get(c)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 600, Height: 400}, winA.Rect())
	assert.Equal(t, geometry.Rect{X: 600, Y: 0, Width: 600, Height: 400}, winB.Rect())
	assert.Equal(t, geometry.Rect{X: 0, Y: 400, Width: 600, Height: 400}, winC.Rect())
}

func TestTileThenFocusEndToEnd(t *testing.T) {
	reg := NewRegistry(geometry.Rect{Width: 1200, Height: 800}, 0, 0)
	_, _ = reg.Create(Options{Title: "A"})
	b, _ := reg.Create(Options{Title: "B"})
	_, _ = reg.Create(Options{Title: "C"})

	require.NoError(t, reg.Tile())
	require.NoError(t, reg.Focus(b))

	focused := 0
	for _, win := range reg.Windows() {
		if win.Focused() {
			focused++
			assert.Equal(t, b, win.ID())
		}
	}
	assert.Equal(t, 1, focused)
	assert.Equal(t, b, reg.Windows()[0].ID(), "focused window must be frontmost")
}

func TestCascadeStaggersWindows(t *testing.T) {
	reg := newTestRegistry()
	a, _ := reg.Create(Options{Title: "a"})
	b, _ := reg.Create(Options{Title: "b"})

	require.NoError(t, reg.Cascade())

	winA, _ := reg.Get(a)
	winB, _ := reg.Get(b)
	rectA := winA.Rect()
	rectB := winB.Rect()

	// a is older (further back), so it takes the first slot.
	assert.Equal(t, geometry.Point{X: 50, Y: 50}, geometry.Point{X: rectA.X, Y: rectA.Y})
	assert.Equal(t, geometry.Point{X: 80, Y: 80}, geometry.Point{X: rectB.X, Y: rectB.Y})
}

func TestLayoutHelpersSkipDesktop(t *testing.T) {
	reg := newTestRegistry()
	desktop, _ := reg.Create(Options{Title: "desktop", Desktop: true, Size: geometry.Size{Width: 1920, Height: 1080}})
	_, _ = reg.Create(Options{Title: "app"})

	reg.MinimizeAll()
	desktopWin, _ := reg.Get(desktop)
	assert.Equal(t, StateNormal, desktopWin.State(), "desktop windows are exempt from layout helpers")
}

func TestMinimizeAllRestoreAll(t *testing.T) {
	reg := newTestRegistry()
	ids := make([]uint32, 3)
	for i := range ids {
		ids[i], _ = reg.Create(Options{Title: "w"})
	}

	reg.MinimizeAll()
	for _, id := range ids {
		win, _ := reg.Get(id)
		assert.Equal(t, StateMinimized, win.State())
	}

	reg.RestoreAll()
	for _, id := range ids {
		win, _ := reg.Get(id)
		assert.Equal(t, StateNormal, win.State())
	}
}

func TestUpdateConsumesSyncFlags(t *testing.T) {
	reg := newTestRegistry()
	id, _ := reg.Create(Options{Title: "w"})
	win, _ := reg.Get(id)
	win.SetPosition(geometry.Point{X: 5, Y: 5})

	assert.Equal(t, 1, reg.Update())
	assert.Equal(t, 0, reg.Update(), "sync flags are consumed once per frame")
}
