package compositor

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismwm/prism/internal/display"
	"github.com/prismwm/prism/internal/geometry"
	"github.com/prismwm/prism/internal/pacer"
	"github.com/prismwm/prism/internal/wm"
)

func newTestCompositor(t *testing.T, caps display.Capabilities) (*Compositor, *wm.Registry) {
	t.Helper()
	pres, err := display.New(display.Options{Backend: "null", Width: 320, Height: 240})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pres.Close() })

	reg := wm.NewRegistry(geometry.Rect{Width: 320, Height: 240}, 0, 0)
	return New(reg, pres, caps, pacer.New(16*time.Millisecond)), reg
}

func runFrame(t *testing.T, c *Compositor) {
	t.Helper()
	require.NoError(t, c.Begin())
	require.NoError(t, c.Compose())
	require.NoError(t, c.End())
	require.NoError(t, c.Present())
}

func TestPipelineOrderingErrors(t *testing.T) {
	c, _ := newTestCompositor(t, display.Capabilities{})

	// Nothing composed yet.
	assert.ErrorIs(t, c.Compose(), ErrInvalidState)
	assert.ErrorIs(t, c.End(), ErrInvalidState)
	assert.ErrorIs(t, c.Present(), ErrInvalidState)

	require.NoError(t, c.Begin())
	assert.ErrorIs(t, c.Begin(), ErrInvalidState, "begin while composing must fail")
	assert.ErrorIs(t, c.Present(), ErrInvalidState, "present while composing must fail")

	require.NoError(t, c.Compose())
	require.NoError(t, c.End())
	require.NoError(t, c.Present())

	// The pending frame is consumed exactly once.
	assert.ErrorIs(t, c.Present(), ErrInvalidState)
}

func TestFullFrameBumpsCounters(t *testing.T) {
	c, reg := newTestCompositor(t, display.Capabilities{})
	_, err := reg.Create(wm.Options{Size: geometry.Size{Width: 100, Height: 100}})
	require.NoError(t, err)

	runFrame(t, c)
	runFrame(t, c)

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.FrameCount)
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 0, stats.SkippedWindows)
	assert.Greater(t, stats.CurrentFPS, 0.0)
}

func TestComposeClearsDamage(t *testing.T) {
	c, reg := newTestCompositor(t, display.Capabilities{})
	id, err := reg.Create(wm.Options{Size: geometry.Size{Width: 64, Height: 64}})
	require.NoError(t, err)
	win, err := reg.Get(id)
	require.NoError(t, err)

	surf := win.Surface()
	require.NotNil(t, surf)
	surf.MarkDamaged()
	require.True(t, surf.Damaged())

	runFrame(t, c)

	assert.False(t, surf.Damaged(), "composition must consume surface damage")
	assert.False(t, win.ConsumeRedraw(), "composition must consume the redraw flag")
	assert.False(t, surf.Damaged(), "composition itself must not introduce damage")
}

func TestComposeConsumesOffscreenDamage(t *testing.T) {
	c, reg := newTestCompositor(t, display.Capabilities{})
	id, err := reg.Create(wm.Options{
		Position: geometry.Point{X: 5000, Y: 5000},
		Size:     geometry.Size{Width: 64, Height: 64},
	})
	require.NoError(t, err)
	win, _ := reg.Get(id)
	win.Surface().MarkDamaged()

	runFrame(t, c)

	assert.False(t, win.Surface().Damaged(), "off-screen windows still consume damage")
	stats := c.Stats()
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 0, stats.SkippedWindows)
}

func TestHiddenWindowsAreNotDrawn(t *testing.T) {
	c, reg := newTestCompositor(t, display.Capabilities{})
	id, err := reg.Create(wm.Options{Size: geometry.Size{Width: 64, Height: 64}})
	require.NoError(t, err)
	win, _ := reg.Get(id)
	require.NoError(t, win.Hide())

	runFrame(t, c)

	stats := c.Stats()
	assert.Equal(t, 0, stats.DrawCalls)
	assert.Equal(t, 0, stats.SkippedWindows)
}

func TestMinimizedWindowsAreNotDrawn(t *testing.T) {
	c, reg := newTestCompositor(t, display.Capabilities{})
	id, err := reg.Create(wm.Options{Size: geometry.Size{Width: 64, Height: 64}})
	require.NoError(t, err)
	win, _ := reg.Get(id)
	require.NoError(t, win.Minimize())

	runFrame(t, c)
	assert.Equal(t, 0, c.Stats().DrawCalls)

	require.NoError(t, win.Restore())
	runFrame(t, c)
	assert.Equal(t, 1, c.Stats().DrawCalls)
}

func TestDestroyedWindowDoesNotFailFrame(t *testing.T) {
	c, reg := newTestCompositor(t, display.Capabilities{})
	keep, err := reg.Create(wm.Options{Size: geometry.Size{Width: 64, Height: 64}})
	require.NoError(t, err)
	_ = keep
	gone, err := reg.Create(wm.Options{Size: geometry.Size{Width: 64, Height: 64}})
	require.NoError(t, err)

	// Hold a stale reference past destruction, as a racing producer
	// would.
	staleWin, err := reg.Get(gone)
	require.NoError(t, err)
	require.NoError(t, reg.Destroy(gone))
	assert.Nil(t, staleWin.Surface())

	runFrame(t, c)

	stats := c.Stats()
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 0, stats.SkippedWindows)
}

func TestEnableGlowRequiresHDR(t *testing.T) {
	c, _ := newTestCompositor(t, display.Capabilities{})
	err := c.EnableEffect(EffectGlow, true)
	require.Error(t, err)
	assert.False(t, c.IsEffectEnabled(EffectGlow))

	hdr, _ := newTestCompositor(t, display.Capabilities{HDR: true})
	require.NoError(t, hdr.EnableEffect(EffectGlow, true))
	assert.True(t, hdr.IsEffectEnabled(EffectGlow))
}

func TestEffectsDisabledByDefault(t *testing.T) {
	c, _ := newTestCompositor(t, display.Capabilities{})
	for _, kind := range effectOrder {
		assert.False(t, c.IsEffectEnabled(kind), "%v enabled by default", kind)
	}
}

func TestUnimplementedEffectSurfacesInStatus(t *testing.T) {
	c, _ := newTestCompositor(t, display.Capabilities{})
	require.NoError(t, c.EnableEffect(EffectBlur, true))
	require.NoError(t, c.EnableEffect(EffectReflection, true))

	runFrame(t, c)

	status := c.LastEffectStatus()
	require.Len(t, status, 2)

	assert.Equal(t, EffectBlur, status[0].Kind)
	assert.True(t, status[0].Applied)
	assert.False(t, status[0].Unsupported)

	assert.Equal(t, EffectReflection, status[1].Kind)
	assert.False(t, status[1].Applied)
	assert.True(t, status[1].Unsupported)
	assert.ErrorIs(t, status[1].Err, ErrEffectNotImplemented)
}

func TestSetEffectParameters(t *testing.T) {
	c, _ := newTestCompositor(t, display.Capabilities{})
	require.NoError(t, c.SetEffectParameters(EffectBlur, []float64{8}))
	require.NoError(t, c.SetEffectParameters(EffectBlur, nil)) // back to defaults
	assert.Error(t, c.SetEffectParameters(EffectKind(99), []float64{1}))
}

func TestBackgroundFillsTarget(t *testing.T) {
	reg := wm.NewRegistry(geometry.Rect{Width: 16, Height: 16}, 0, 0)
	pres := &capturePresenter{target: image.NewRGBA(image.Rect(0, 0, 16, 16))}
	c := New(reg, pres, display.Capabilities{}, pacer.New(0))
	c.SetBackground(color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})

	runFrame(t, c)

	require.NotNil(t, pres.presented)
	got := pres.presented.RGBAAt(8, 8)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, got)
}

func TestOpacityBlendsOverBackground(t *testing.T) {
	reg := wm.NewRegistry(geometry.Rect{Width: 16, Height: 16}, 0, 0)
	pres := &capturePresenter{target: image.NewRGBA(image.Rect(0, 0, 16, 16))}
	c := New(reg, pres, display.Capabilities{}, pacer.New(0))
	c.SetBackground(color.RGBA{A: 0xff})

	id, err := reg.Create(wm.Options{Size: geometry.Size{Width: 16, Height: 16}})
	require.NoError(t, err)
	win, _ := reg.Get(id)
	win.Surface().Fill(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	win.SetOpacity(0.5)

	runFrame(t, c)

	got := pres.presented.RGBAAt(8, 8)
	// A half-opaque white window over black lands near mid-grey.
	assert.InDelta(t, 127, int(got.R), 3)
	assert.Equal(t, uint8(0xff), got.A)
}

// capturePresenter keeps the presented frame for pixel assertions.
type capturePresenter struct {
	target    *image.RGBA
	presented *image.RGBA
}

func (p *capturePresenter) AcquireTarget() (*image.RGBA, error) { return p.target, nil }

func (p *capturePresenter) Present(img *image.RGBA) error {
	p.presented = img
	return nil
}

func (p *capturePresenter) RefreshInterval() time.Duration { return 16 * time.Millisecond }

func (p *capturePresenter) Close() error { return nil }
