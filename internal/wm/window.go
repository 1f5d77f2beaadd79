// Package wm owns the window type, its lifecycle state machine, and the
// registry that tracks z-order and focus across all windows.
package wm

import (
	"fmt"
	"sync"

	"github.com/prismwm/prism/internal/geometry"
	"github.com/prismwm/prism/internal/surface"
)

// Window is one on-screen window. It owns exactly one surface, whose
// dimensions always match the window size. All exported methods are
// safe for concurrent use; the window's own lock guards its attribute
// block while the surface carries its own lock, so a producer writing
// pixels never contends with attribute reads.
type Window struct {
	mu sync.Mutex

	id      uint32
	title   string
	pos     geometry.Point
	size    geometry.Size
	minSize geometry.Size
	maxSize geometry.Size
	opacity float64
	state   State
	focused bool
	visible bool
	desktop bool

	// Parent/child relations are ID edges resolved through the
	// registry, never pointers, so destroying a subtree cannot leave a
	// dangling back-reference.
	parent   uint32
	children []uint32

	surf *surface.Surface

	needsRedraw bool
	needsSync   bool
}

// ID returns the registry-assigned window ID.
func (w *Window) ID() uint32 {
	return w.id
}

// Title returns the window title.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
	w.needsSync = true
}

// Position returns the window's top-left corner.
func (w *Window) Position() geometry.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pos
}

// SetPosition moves the window. Movement changes composed output, so
// the surface is marked damaged.
func (w *Window) SetPosition(p geometry.Point) {
	w.mu.Lock()
	w.pos = p
	w.needsRedraw = true
	w.needsSync = true
	surf := w.surf
	w.mu.Unlock()
	if surf != nil {
		surf.MarkDamaged()
	}
}

// Size returns the window size. It always matches the surface
// dimensions.
func (w *Window) Size() geometry.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// SetSize resizes the window and synchronously reallocates its surface.
// The new size is clamped to the window's min/max constraints. On
// allocation failure the window keeps its previous size and surface.
func (w *Window) SetSize(s geometry.Size) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s = w.clampSize(s)
	if s == w.size {
		return nil
	}
	if w.surf == nil {
		return fmt.Errorf("resize window %d: %w", w.id, ErrInvalidState)
	}
	if err := w.surf.Resize(s.Width, s.Height); err != nil {
		return fmt.Errorf("resize window %d: %w", w.id, err)
	}
	w.size = s
	w.needsRedraw = true
	w.needsSync = true
	return nil
}

func (w *Window) clampSize(s geometry.Size) geometry.Size {
	if w.minSize.Width > 0 && s.Width < w.minSize.Width {
		s.Width = w.minSize.Width
	}
	if w.minSize.Height > 0 && s.Height < w.minSize.Height {
		s.Height = w.minSize.Height
	}
	if w.maxSize.Width > 0 && s.Width > w.maxSize.Width {
		s.Width = w.maxSize.Width
	}
	if w.maxSize.Height > 0 && s.Height > w.maxSize.Height {
		s.Height = w.maxSize.Height
	}
	return s
}

// Rect returns the window's rectangle in global coordinates.
func (w *Window) Rect() geometry.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return geometry.Rect{X: w.pos.X, Y: w.pos.Y, Width: w.size.Width, Height: w.size.Height}
}

// SetRect moves and resizes in one call, used by the layout helpers.
func (w *Window) SetRect(r geometry.Rect) error {
	if err := w.SetSize(geometry.Size{Width: r.Width, Height: r.Height}); err != nil {
		return err
	}
	w.SetPosition(geometry.Point{X: r.X, Y: r.Y})
	return nil
}

// Opacity returns the window opacity in [0,1].
func (w *Window) Opacity() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opacity
}

// SetOpacity sets the window opacity, clamped to [0,1].
func (w *Window) SetOpacity(o float64) {
	if o < 0 {
		o = 0
	} else if o > 1 {
		o = 1
	}
	w.mu.Lock()
	w.opacity = o
	w.needsRedraw = true
	surf := w.surf
	w.mu.Unlock()
	if surf != nil {
		surf.MarkDamaged()
	}
}

// State returns the current lifecycle state.
func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Focused reports whether this window holds focus. Focus is assigned
// exclusively through Registry.Focus, never directly.
func (w *Window) Focused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

func (w *Window) setFocused(focused bool) {
	w.mu.Lock()
	w.focused = focused
	w.needsRedraw = true
	w.mu.Unlock()
}

// Visible reports whether the window participates in composition.
// Minimized windows keep their visible flag but are not composed.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible && w.state != StateMinimized
}

// Desktop reports whether this is a desktop-type window, which the
// layout helpers leave alone.
func (w *Window) Desktop() bool {
	return w.desktop
}

// Surface returns the window's owned pixel surface, or nil once the
// window has been destroyed. The surface's lifetime is bound to the
// window; callers must not retain it past destruction.
func (w *Window) Surface() *surface.Surface {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surf
}

// Parent returns the parent window ID, or 0 when the window is
// top-level.
func (w *Window) Parent() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.parent
}

// Children returns a copy of the ordered child ID list.
func (w *Window) Children() []uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]uint32, len(w.children))
	copy(out, w.children)
	return out
}

func (w *Window) setParent(id uint32) {
	w.mu.Lock()
	w.parent = id
	w.needsSync = true
	w.mu.Unlock()
}

func (w *Window) addChild(id uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.children {
		if c == id {
			return
		}
	}
	w.children = append(w.children, id)
	w.needsSync = true
}

func (w *Window) removeChild(id uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, c := range w.children {
		if c == id {
			w.children = append(w.children[:i], w.children[i+1:]...)
			w.needsSync = true
			return
		}
	}
}

// ConsumeRedraw returns and clears the needs-redraw flag. The
// compositor calls this at most once per frame.
func (w *Window) ConsumeRedraw() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := w.needsRedraw
	w.needsRedraw = false
	return v
}

// ConsumeSync returns and clears the needs-registry-sync flag. The
// registry's per-frame update consumes it.
func (w *Window) ConsumeSync() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := w.needsSync
	w.needsSync = false
	return v
}

// transition moves the window to a new lifecycle state if the current
// state is one of the allowed sources. Re-entering the current state is
// a no-op, which makes every transition idempotent.
func (w *Window) transition(to State, from ...State) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == to {
		return nil
	}
	for _, f := range from {
		if w.state == f {
			w.state = to
			w.needsRedraw = true
			w.needsSync = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidState, w.state, to)
}

// Show makes the window visible in its normal state.
func (w *Window) Show() error {
	err := w.transition(StateNormal, StateHidden, StateMinimized, StateMaximized, StateFullscreen)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
	return nil
}

// Hide removes the window from composition without destroying it.
func (w *Window) Hide() error {
	err := w.transition(StateHidden, StateNormal, StateMinimized, StateMaximized, StateFullscreen)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
	return nil
}

// Minimize iconifies the window.
func (w *Window) Minimize() error {
	return w.transition(StateMinimized, StateNormal, StateMaximized, StateFullscreen)
}

// Maximize expands the window.
func (w *Window) Maximize() error {
	return w.transition(StateMaximized, StateNormal, StateMinimized)
}

// Restore returns the window to its normal state.
func (w *Window) Restore() error {
	return w.transition(StateNormal, StateMinimized, StateMaximized, StateFullscreen)
}

// Fullscreen switches the window to fullscreen from normal.
func (w *Window) Fullscreen() error {
	return w.transition(StateFullscreen, StateNormal)
}

// Unfullscreen leaves fullscreen back to normal.
func (w *Window) Unfullscreen() error {
	return w.transition(StateNormal, StateFullscreen)
}

// Close stops presenting the window. It does not free any resources;
// the owner is expected to follow up with Registry.Destroy. Separating
// "stop presenting" from "deallocate" lets a closing animation or a
// destroy from another call site land in the same frame without racing.
func (w *Window) Close() error {
	w.mu.Lock()
	w.state = StateHidden
	w.visible = false
	w.needsRedraw = true
	w.needsSync = true
	w.mu.Unlock()
	return nil
}
