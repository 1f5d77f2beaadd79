package display

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// nullPresenter discards frames. It is the terminal fallback backend
// and the presenter tests run against.
type nullPresenter struct {
	mu        sync.Mutex
	target    *image.RGBA
	refresh   time.Duration
	presented uint64
	closed    bool
}

func newNullPresenter(opts Options) *nullPresenter {
	return &nullPresenter{
		target:  image.NewRGBA(image.Rect(0, 0, int(opts.Width), int(opts.Height))),
		refresh: time.Second / time.Duration(opts.RefreshHz),
	}
}

func (p *nullPresenter) AcquireTarget() (*image.RGBA, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("presenter closed")
	}
	return p.target, nil
}

func (p *nullPresenter) Present(img *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("presenter closed")
	}
	p.presented++
	return nil
}

func (p *nullPresenter) RefreshInterval() time.Duration {
	return p.refresh
}

func (p *nullPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
