// Package display holds the boundary contracts with the driver layer:
// the presenter the compositor hands finished frames to, and the
// hardware capability flags the core consumes without ever probing
// hardware itself.
package display

import (
	"fmt"
	"image"
	"time"

	"github.com/prismwm/prism/internal/logger"
)

// Capabilities are the hardware capability flags supplied by the driver
// layer. The core only reads them to decide whether certain effects are
// legal to enable.
type Capabilities struct {
	HDR             bool
	VariableRefresh bool
}

// Presenter is the driver-side sink for composed frames. The compositor
// acquires a target image, composes into it, and hands it back; the
// handle is opaque to everything above this package.
type Presenter interface {
	// AcquireTarget returns the image the next frame is composed into.
	AcquireTarget() (*image.RGBA, error)

	// Present submits a finished frame for scanout.
	Present(*image.RGBA) error

	// RefreshInterval reports the display's native refresh interval,
	// used as the frame pacing target.
	RefreshInterval() time.Duration

	Close() error
}

// Options selects and configures a presenter backend.
type Options struct {
	Backend   string // "null", "png", or "" for auto
	Width     int32
	Height    int32
	RefreshHz int
	OutputDir string // png backend: directory frames are written to
	FrameCap  int    // png backend: stop writing after this many frames (0 = unlimited)
}

// New creates a presenter, trying the configured backend first and
// falling back to the null presenter, mirroring how display backends
// are probed in order of preference.
func New(opts Options) (Presenter, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("presenter: invalid output size %dx%d", opts.Width, opts.Height)
	}
	if opts.RefreshHz <= 0 {
		opts.RefreshHz = 60
	}

	switch opts.Backend {
	case "png":
		return newPNGPresenter(opts)
	case "null", "":
		return newNullPresenter(opts), nil
	default:
		logger.Warnf("unknown presenter backend %q, falling back to null", opts.Backend)
		return newNullPresenter(opts), nil
	}
}
