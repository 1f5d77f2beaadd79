package server

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prismwm/prism/internal/geometry"
	"github.com/prismwm/prism/internal/logger"
	"github.com/prismwm/prism/internal/wm"
)

// PatternProducer animates a moving gradient into demo windows from its
// own goroutines, standing in for real content producers. It follows
// the producer contract exactly: write pixels through the surface,
// never resize except through Window.SetSize.
type PatternProducer struct {
	registry *wm.Registry
	ids      []uint32
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewPatternProducer creates count demo windows in the registry.
func NewPatternProducer(registry *wm.Registry, count int) (*PatternProducer, error) {
	p := &PatternProducer{registry: registry}
	workarea := registry.Workarea()
	for i := 0; i < count; i++ {
		id, err := registry.Create(wm.Options{
			Title: fmt.Sprintf("demo-%d", i+1),
			Position: geometry.Point{
				X: workarea.X + int32(i)*80 + 40,
				Y: workarea.Y + int32(i)*60 + 40,
			},
			Size: geometry.Size{Width: 480, Height: 320},
		})
		if err != nil {
			return nil, fmt.Errorf("create demo window: %w", err)
		}
		p.ids = append(p.ids, id)
	}
	return p, nil
}

// Start launches one producer goroutine per demo window.
func (p *PatternProducer) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i, id := range p.ids {
		p.wg.Add(1)
		go func(idx int, id uint32) {
			defer p.wg.Done()
			p.animate(ctx, idx, id)
		}(i, id)
	}
}

func (p *PatternProducer) animate(ctx context.Context, idx int, id uint32) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	phase := float64(idx) * 1.7
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		win, err := p.registry.Get(id)
		if err != nil {
			// Window was destroyed out from under us; stop producing.
			return
		}
		surf := win.Surface()
		if surf == nil {
			return
		}

		w, h := surf.Width(), surf.Height()
		pix := make([]byte, int(w)*int(h)*4)
		for y := int32(0); y < h; y++ {
			for x := int32(0); x < w; x++ {
				i := (int(y)*int(w) + int(x)) * 4
				pix[i+0] = uint8(128 + 127*math.Sin(float64(x)/37+phase))
				pix[i+1] = uint8(128 + 127*math.Sin(float64(y)/29+phase*1.3))
				pix[i+2] = uint8(128 + 127*math.Sin(float64(x+y)/53+phase*0.7))
				pix[i+3] = 0xff
			}
		}
		if err := surf.Write(0, 0, w, h, pix); err != nil {
			logger.Debugf("demo producer write: %v", err)
		}
		phase += 0.08
	}
}

// Stop cancels the producers and waits for them to exit.
func (p *PatternProducer) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}
