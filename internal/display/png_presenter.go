package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prismwm/prism/internal/logger"
)

// pngPresenter writes each presented frame to a numbered PNG under an
// output directory. It exists for debugging and for end-to-end tests
// that want to look at real output.
type pngPresenter struct {
	mu      sync.Mutex
	target  *image.RGBA
	refresh time.Duration
	dir     string
	frame   int
	cap     int
	closed  bool
}

func newPNGPresenter(opts Options) (*pngPresenter, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = "frames"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create frame output dir: %w", err)
	}
	return &pngPresenter{
		target:  image.NewRGBA(image.Rect(0, 0, int(opts.Width), int(opts.Height))),
		refresh: time.Second / time.Duration(opts.RefreshHz),
		dir:     dir,
		cap:     opts.FrameCap,
	}, nil
}

func (p *pngPresenter) AcquireTarget() (*image.RGBA, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("presenter closed")
	}
	return p.target, nil
}

func (p *pngPresenter) Present(img *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("presenter closed")
	}
	if p.cap > 0 && p.frame >= p.cap {
		p.frame++
		return nil
	}

	path := filepath.Join(p.dir, fmt.Sprintf("frame-%06d.png", p.frame))
	p.frame++

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	logger.Debug("frame written", "path", path)
	return nil
}

func (p *pngPresenter) RefreshInterval() time.Duration {
	return p.refresh
}

func (p *pngPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
