// Package snapshot captures and restores window layouts. A snapshot is
// plain yaml holding title, geometry and state per window; restoring
// replays registry create and setter calls, so no window content is
// persisted.
package snapshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prismwm/prism/internal/geometry"
	"github.com/prismwm/prism/internal/wm"
)

// Window is one window's persisted layout.
type Window struct {
	Title   string  `yaml:"title"`
	X       int32   `yaml:"x"`
	Y       int32   `yaml:"y"`
	Width   int32   `yaml:"width"`
	Height  int32   `yaml:"height"`
	Opacity float64 `yaml:"opacity"`
	State   string  `yaml:"state"`
	Visible bool    `yaml:"visible"`
	Desktop bool    `yaml:"desktop,omitempty"`
	Focused bool    `yaml:"focused,omitempty"`
}

// Layout is a full window layout, windows listed back-to-front so a
// replayed restore reproduces the z-order.
type Layout struct {
	Windows []Window `yaml:"windows"`
}

// Capture records the registry's current layout.
func Capture(reg *wm.Registry) *Layout {
	wins := reg.Windows()
	layout := &Layout{Windows: make([]Window, 0, len(wins))}
	for i := len(wins) - 1; i >= 0; i-- {
		win := wins[i]
		rect := win.Rect()
		layout.Windows = append(layout.Windows, Window{
			Title:   win.Title(),
			X:       rect.X,
			Y:       rect.Y,
			Width:   rect.Width,
			Height:  rect.Height,
			Opacity: win.Opacity(),
			State:   win.State().String(),
			Visible: win.Visible(),
			Desktop: win.Desktop(),
			Focused: win.Focused(),
		})
	}
	return layout
}

// Restore replays a layout into the registry as fresh windows.
func Restore(reg *wm.Registry, layout *Layout) error {
	var focusID uint32
	for _, snap := range layout.Windows {
		state, err := wm.ParseState(snap.State)
		if err != nil {
			return fmt.Errorf("restore %q: %w", snap.Title, err)
		}
		id, err := reg.Create(wm.Options{
			Title:    snap.Title,
			Position: geometry.Point{X: snap.X, Y: snap.Y},
			Size:     geometry.Size{Width: snap.Width, Height: snap.Height},
			Opacity:  snap.Opacity,
			State:    state,
			Visible:  snap.Visible,
			Desktop:  snap.Desktop,
		})
		if err != nil {
			return fmt.Errorf("restore %q: %w", snap.Title, err)
		}
		if snap.Focused {
			focusID = id
		}
	}
	if focusID != 0 {
		if err := reg.Focus(focusID); err != nil {
			return fmt.Errorf("restore focus: %w", err)
		}
	}
	return nil
}

// Save writes a layout to disk.
func Save(path string, layout *Layout) error {
	data, err := yaml.Marshal(layout)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// Load reads a layout from disk.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	layout := &Layout{}
	if err := yaml.Unmarshal(data, layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return layout, nil
}
