package wm

import (
	"fmt"
	"sync"

	"github.com/prismwm/prism/internal/geometry"
	"github.com/prismwm/prism/internal/layout"
	"github.com/prismwm/prism/internal/logger"
	"github.com/prismwm/prism/internal/surface"
)

// Options describes a window to create.
type Options struct {
	Title    string
	Position geometry.Point
	Size     geometry.Size
	MinSize  geometry.Size
	MaxSize  geometry.Size
	Opacity  float64
	State    State
	Visible  bool
	Desktop  bool
	Focused  bool
	Format   surface.Format
	Parent   uint32
}

// DefaultOptions returns the options applied when a caller passes the
// zero value for a field.
func DefaultOptions() Options {
	return Options{
		Title:   "untitled",
		Size:    geometry.Size{Width: 640, Height: 480},
		Opacity: 1.0,
		State:   StateNormal,
		Visible: true,
	}
}

// Registry owns every window: it assigns IDs, tracks front-to-back
// z-order, and holds the focus reference. Its own lock guards the
// z-order and focus structures; each window carries its own lock, so a
// slow producer for one window never blocks registry operations on
// another.
type Registry struct {
	mu       sync.RWMutex
	windows  map[uint32]*Window
	zorder   []uint32 // front first
	focused  uint32   // 0 = no focused window
	nextID   uint32
	workarea geometry.Rect
	columns  int
	gap      int32
}

// NewRegistry creates an empty registry managing the given workarea.
// columns fixes the tile grid column count (0 = auto).
func NewRegistry(workarea geometry.Rect, columns int, gap int32) *Registry {
	return &Registry{
		windows:  make(map[uint32]*Window),
		nextID:   1,
		workarea: workarea,
		columns:  columns,
		gap:      gap,
	}
}

// Workarea returns the area layout helpers distribute windows over.
func (r *Registry) Workarea() geometry.Rect {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workarea
}

// Create allocates a window and its surface, assigns the next ID and
// inserts it at the front of the z-order. The first window created, or
// any window with Options.Focused set, receives focus.
func (r *Registry) Create(opts Options) (uint32, error) {
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}
	if opts.State != StateHidden {
		opts.Visible = true
	}

	surf, err := surface.New(opts.Size.Width, opts.Size.Height, opts.Format)
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	win := &Window{
		id:      id,
		title:   opts.Title,
		pos:     opts.Position,
		size:    opts.Size,
		minSize: opts.MinSize,
		maxSize: opts.MaxSize,
		opacity: opts.Opacity,
		state:   opts.State,
		visible: opts.Visible,
		desktop: opts.Desktop,
		surf:    surf,
	}
	if win.opacity <= 0 {
		win.opacity = 1.0
	}

	if opts.Parent != 0 {
		if parent, ok := r.windows[opts.Parent]; ok {
			win.parent = opts.Parent
			parent.addChild(id)
		}
	}

	r.windows[id] = win
	r.zorder = append([]uint32{id}, r.zorder...)

	if opts.Focused || len(r.windows) == 1 {
		r.focusLocked(id)
	}

	logger.Debug("window created", "id", id, "title", win.title, "size", fmt.Sprintf("%dx%d", opts.Size.Width, opts.Size.Height))
	return id, nil
}

// Destroy removes a window from the registry, detaches it from its
// parent and children, clears focus if it held it, and frees its
// surface. The window's own lock is acquired before teardown so a
// producer mid-write finishes its copy first.
func (r *Registry) Destroy(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	win, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("destroy %d: %w", id, ErrWindowNotFound)
	}

	if parentID := win.Parent(); parentID != 0 {
		if parent, ok := r.windows[parentID]; ok {
			parent.removeChild(id)
		}
	}
	for _, childID := range win.Children() {
		if child, ok := r.windows[childID]; ok {
			child.setParent(0)
		}
	}

	if r.focused == id {
		r.focused = 0
	}

	delete(r.windows, id)
	for i, zid := range r.zorder {
		if zid == id {
			r.zorder = append(r.zorder[:i], r.zorder[i+1:]...)
			break
		}
	}

	// Hold the window lock across the final teardown; destruction must
	// not race a producer that still holds a reference.
	win.mu.Lock()
	win.surf = nil
	win.mu.Unlock()

	logger.Debug("window destroyed", "id", id)
	return nil
}

// Get returns the window with the given ID.
func (r *Registry) Get(id uint32) (*Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	win, ok := r.windows[id]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return win, nil
}

// Windows returns all windows in z-order, frontmost first.
func (r *Registry) Windows() []*Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Window, 0, len(r.zorder))
	for _, id := range r.zorder {
		out = append(out, r.windows[id])
	}
	return out
}

// Len returns the number of live windows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// WindowAt returns the frontmost visible window whose rect contains p.
func (r *Registry) WindowAt(p geometry.Point) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.zorder {
		win := r.windows[id]
		if win.Visible() && win.Rect().Contains(p) {
			return id, true
		}
	}
	return 0, false
}

// Focused returns the focused window ID, or 0 when no window holds
// focus.
func (r *Registry) Focused() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focused
}

// Focus gives a window exclusive focus and raises it to the front.
func (r *Registry) Focus(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return fmt.Errorf("focus %d: %w", id, ErrWindowNotFound)
	}
	r.focusLocked(id)
	return nil
}

func (r *Registry) focusLocked(id uint32) {
	if r.focused == id {
		return
	}
	if prev, ok := r.windows[r.focused]; ok {
		prev.setFocused(false)
	}
	r.focused = id
	r.windows[id].setFocused(true)
	r.raiseLocked(id)
}

// Raise moves a window to the front of the z-order.
func (r *Registry) Raise(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return fmt.Errorf("raise %d: %w", id, ErrWindowNotFound)
	}
	r.raiseLocked(id)
	return nil
}

func (r *Registry) raiseLocked(id uint32) {
	for i, zid := range r.zorder {
		if zid == id {
			r.zorder = append(r.zorder[:i], r.zorder[i+1:]...)
			r.zorder = append([]uint32{id}, r.zorder...)
			return
		}
	}
}

// Lower moves a window to the back of the z-order.
func (r *Registry) Lower(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return fmt.Errorf("lower %d: %w", id, ErrWindowNotFound)
	}
	for i, zid := range r.zorder {
		if zid == id {
			r.zorder = append(r.zorder[:i], r.zorder[i+1:]...)
			r.zorder = append(r.zorder, id)
			return nil
		}
	}
	return nil
}

// SetParent re-links a window under a new parent, keeping both sides of
// the relation consistent. parentID 0 detaches the window.
func (r *Registry) SetParent(id, parentID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	win, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("set parent of %d: %w", id, ErrWindowNotFound)
	}
	if parentID != 0 {
		if _, ok := r.windows[parentID]; !ok {
			return fmt.Errorf("set parent to %d: %w", parentID, ErrWindowNotFound)
		}
	}

	if old := win.Parent(); old != 0 {
		if oldParent, ok := r.windows[old]; ok {
			oldParent.removeChild(id)
		}
	}
	win.setParent(parentID)
	if parentID != 0 {
		r.windows[parentID].addChild(id)
	}
	return nil
}

// layoutTargets returns non-desktop windows back-to-front, so the
// oldest window gets the first layout slot.
func (r *Registry) layoutTargets() []*Window {
	var wins []*Window
	for i := len(r.zorder) - 1; i >= 0; i-- {
		win := r.windows[r.zorder[i]]
		if !win.Desktop() {
			wins = append(wins, win)
		}
	}
	return wins
}

// Tile restores all non-desktop windows and arranges them in the
// configured fixed-column grid from the workarea's top-left.
func (r *Registry) Tile() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wins := r.layoutTargets()
	rects := layout.Grid(len(wins), r.workarea, r.columns, r.gap)
	if rects == nil && len(wins) > 0 {
		return fmt.Errorf("tile: workarea %dx%d too small for %d windows",
			r.workarea.Width, r.workarea.Height, len(wins))
	}
	for i, win := range wins {
		if err := win.Restore(); err != nil {
			logger.Warn("tile: restore failed", "id", win.ID(), "err", err)
			continue
		}
		if err := win.SetRect(rects[i]); err != nil {
			logger.Warn("tile: resize failed", "id", win.ID(), "err", err)
		}
	}
	return nil
}

// Cascade restores all non-desktop windows and staggers them
// diagonally from the workarea's top-left.
func (r *Registry) Cascade() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wins := r.layoutTargets()
	size := geometry.Size{
		Width:  r.workarea.Width * 6 / 10,
		Height: r.workarea.Height * 6 / 10,
	}
	rects := layout.Cascade(len(wins), r.workarea, size)
	for i, win := range wins {
		if err := win.Restore(); err != nil {
			logger.Warn("cascade: restore failed", "id", win.ID(), "err", err)
			continue
		}
		if err := win.SetRect(rects[i]); err != nil {
			logger.Warn("cascade: resize failed", "id", win.ID(), "err", err)
		}
	}
	return nil
}

// MinimizeAll iconifies every non-desktop window.
func (r *Registry) MinimizeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, win := range r.layoutTargets() {
		if err := win.Minimize(); err != nil {
			logger.Debug("minimize all: skipped", "id", win.ID(), "err", err)
		}
	}
}

// RestoreAll returns every non-desktop window to its normal state.
func (r *Registry) RestoreAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, win := range r.layoutTargets() {
		if err := win.Restore(); err != nil {
			logger.Debug("restore all: skipped", "id", win.ID(), "err", err)
		}
	}
}

// Update runs the per-frame registry sync: it consumes each window's
// needs-sync flag. Stacking and focus are maintained eagerly, so
// consuming the flag is all the sync there is today.
func (r *Registry) Update() int {
	synced := 0
	for _, win := range r.Windows() {
		if win.ConsumeSync() {
			synced++
		}
	}
	return synced
}
