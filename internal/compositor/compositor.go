// Package compositor runs the frame pipeline: begin a frame, compose
// damaged windows in z-order into the target image, apply the effect
// stack, and present the result.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/prismwm/prism/internal/display"
	"github.com/prismwm/prism/internal/logger"
	"github.com/prismwm/prism/internal/pacer"
	"github.com/prismwm/prism/internal/wm"
)

var (
	// ErrInvalidState is returned when a pipeline call arrives out of
	// order, e.g. Present before any frame was composed.
	ErrInvalidState = errors.New("invalid compositor state")

	// ErrEffectNotImplemented marks a declared effect that has no
	// concrete implementation. It surfaces in the per-frame effect
	// status, never as a silent success.
	ErrEffectNotImplemented = errors.New("effect not implemented")
)

// State is the compositor pipeline state.
type State int

const (
	StateIdle State = iota
	StateComposing
)

// EffectResult records one effect's outcome for the most recent frame.
type EffectResult struct {
	Kind        EffectKind
	Applied     bool
	Unsupported bool
	Err         error
}

// Stats are the derived frame statistics.
type Stats struct {
	FrameCount       uint64
	CurrentFPS       float64
	AverageFrameTime time.Duration
	DrawCalls        int
	SkippedWindows   int
}

type effectEntry struct {
	impl    Effect
	enabled bool
	params  []float64
}

// Compositor composes the registry's windows into presenter targets.
// One loop thread drives the pipeline; the configuration and stats
// methods are safe to call from other goroutines.
type Compositor struct {
	mu sync.Mutex

	registry  *wm.Registry
	presenter display.Presenter
	caps      display.Capabilities
	pacer     *pacer.Pacer

	background color.RGBA
	effects    map[EffectKind]*effectEntry

	state      State
	target     *image.RGBA
	pending    *image.RGBA
	frameStart time.Time

	frameCount uint64
	drawCalls  int
	skipped    int
	lastStatus []EffectResult
}

// New creates a compositor over the given registry and presenter.
func New(registry *wm.Registry, presenter display.Presenter, caps display.Capabilities, p *pacer.Pacer) *Compositor {
	effects := make(map[EffectKind]*effectEntry, len(effectOrder))
	for _, kind := range effectOrder {
		effects[kind] = &effectEntry{impl: newEffect(kind), params: defaultParams(kind)}
	}
	return &Compositor{
		registry:   registry,
		presenter:  presenter,
		caps:       caps,
		pacer:      p,
		background: color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
		effects:    effects,
	}
}

// SetBackground sets the frame clear color.
func (c *Compositor) SetBackground(bg color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = bg
}

// EnableEffect toggles an effect. Enabling an effect the capability
// flags rule out is rejected: glow needs an HDR-capable output.
func (c *Compositor) EnableEffect(kind EffectKind, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.effects[kind]
	if !ok {
		return fmt.Errorf("enable %v: unknown effect", kind)
	}
	if enabled && kind == EffectGlow && !c.caps.HDR {
		return fmt.Errorf("enable %v: output is not HDR capable", kind)
	}
	entry.enabled = enabled
	return nil
}

// IsEffectEnabled reports whether an effect is enabled.
func (c *Compositor) IsEffectEnabled(kind EffectKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.effects[kind]
	return ok && entry.enabled
}

// SetEffectParameters replaces an effect's parameter list. An empty
// list restores the effect's documented defaults.
func (c *Compositor) SetEffectParameters(kind EffectKind, params []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.effects[kind]
	if !ok {
		return fmt.Errorf("set parameters of %v: unknown effect", kind)
	}
	if len(params) == 0 {
		entry.params = defaultParams(kind)
		return nil
	}
	entry.params = append([]float64(nil), params...)
	return nil
}

// Begin starts a frame: it records the frame-start timestamp, acquires
// and clears the target image, and moves to Composing.
func (c *Compositor) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateComposing {
		return fmt.Errorf("begin composition: %w: already composing", ErrInvalidState)
	}

	target, err := c.presenter.AcquireTarget()
	if err != nil {
		return fmt.Errorf("acquire target: %w", err)
	}

	c.frameStart = time.Now()
	c.target = target
	draw.Draw(target, target.Bounds(), &image.Uniform{C: c.background}, image.Point{}, draw.Src)
	c.state = StateComposing
	return nil
}

// Compose draws every visible window back-to-front into the target,
// blended by opacity and scaled to its rect, then applies the enabled
// effects in their declared order. A window that fails to draw is
// skipped and counted, never fatal to the frame.
func (c *Compositor) Compose() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateComposing {
		return fmt.Errorf("compose frame: %w: not composing", ErrInvalidState)
	}

	c.drawCalls = 0
	c.skipped = 0

	windows := c.registry.Windows()
	for i := len(windows) - 1; i >= 0; i-- {
		win := windows[i]
		if !win.Visible() {
			continue
		}
		if err := c.drawWindow(win); err != nil {
			c.skipped++
			logger.Warn("window skipped this frame", "id", win.ID(), "err", err)
			continue
		}
		c.drawCalls++
	}

	c.lastStatus = c.lastStatus[:0]
	for _, kind := range effectOrder {
		entry := c.effects[kind]
		if !entry.enabled {
			continue
		}
		result := EffectResult{Kind: kind}
		if err := entry.impl.Apply(c.target, entry.params); err != nil {
			result.Err = err
			if errors.Is(err, ErrEffectNotImplemented) {
				result.Unsupported = true
			}
		} else {
			result.Applied = true
			c.drawCalls++
		}
		c.lastStatus = append(c.lastStatus, result)
	}
	return nil
}

// drawWindow copies one window's surface into the target. The surface
// lock is held only inside Snapshot, for the duration of the copy.
func (c *Compositor) drawWindow(win *wm.Window) error {
	surf := win.Surface()
	if surf == nil {
		return fmt.Errorf("window %d has no surface", win.ID())
	}

	src := surf.Snapshot()
	rect := win.Rect()
	dstRect := rect.Image().Intersect(c.target.Bounds())
	if dstRect.Empty() {
		// Off-screen windows still consume their damage.
		surf.ClearDamage()
		win.ConsumeRedraw()
		return nil
	}

	opacity := win.Opacity()
	srcBounds := src.Bounds()

	if srcBounds.Dx() == int(rect.Width) && srcBounds.Dy() == int(rect.Height) && opacity >= 1.0 {
		offset := image.Pt(dstRect.Min.X-int(rect.X), dstRect.Min.Y-int(rect.Y))
		draw.Draw(c.target, dstRect, src, offset, draw.Over)
	} else {
		scaled := src
		if srcBounds.Dx() != int(rect.Width) || srcBounds.Dy() != int(rect.Height) {
			scaled = image.NewRGBA(image.Rect(0, 0, int(rect.Width), int(rect.Height)))
			xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, srcBounds, xdraw.Src, nil)
		}
		offset := image.Pt(dstRect.Min.X-int(rect.X), dstRect.Min.Y-int(rect.Y))
		if opacity >= 1.0 {
			draw.Draw(c.target, dstRect, scaled, offset, draw.Over)
		} else {
			mask := image.NewUniform(color.Alpha{A: uint8(opacity * 0xff)})
			draw.DrawMask(c.target, dstRect, scaled, offset, mask, image.Point{}, draw.Over)
		}
	}

	surf.ClearDamage()
	win.ConsumeRedraw()
	return nil
}

// End finishes composition and returns the pipeline to Idle with the
// composed frame pending for Present.
func (c *Compositor) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateComposing {
		return fmt.Errorf("end composition: %w: not composing", ErrInvalidState)
	}
	c.pending = c.target
	c.target = nil
	c.state = StateIdle
	return nil
}

// Present hands the finished frame to the presenter, bumps the frame
// counter and records the measured frame duration. It fails with
// ErrInvalidState when no composed frame is pending.
func (c *Compositor) Present() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateComposing {
		return fmt.Errorf("present frame: %w: still composing", ErrInvalidState)
	}
	if c.pending == nil {
		return fmt.Errorf("present frame: %w: no composed frame", ErrInvalidState)
	}

	if err := c.presenter.Present(c.pending); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	c.pending = nil
	c.frameCount++
	c.pacer.RecordFrame(time.Since(c.frameStart))
	return nil
}

// FrameStart returns the timestamp Begin recorded for the current
// frame.
func (c *Compositor) FrameStart() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameStart
}

// LastEffectStatus returns the effect outcomes of the most recent
// Compose call, in application order.
func (c *Compositor) LastEffectStatus() []EffectResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EffectResult, len(c.lastStatus))
	copy(out, c.lastStatus)
	return out
}

// Stats returns the accumulated frame statistics.
func (c *Compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		FrameCount:       c.frameCount,
		CurrentFPS:       c.pacer.CurrentFPS(),
		AverageFrameTime: c.pacer.AverageFrameTime(),
		DrawCalls:        c.drawCalls,
		SkippedWindows:   c.skipped,
	}
}
