// Package pacer tracks frame timing history and throttles the render
// loop to a target cadence.
package pacer

import (
	"context"
	"sync"
	"time"
)

// historySize bounds the rolling frame-duration window.
const historySize = 60

// Pacer records measured frame durations and derives pacing statistics
// from a bounded rolling window. It is safe for concurrent use; the
// display loop records while status queries read.
type Pacer struct {
	mu      sync.Mutex
	target  time.Duration
	history []time.Duration
	fps     float64
}

// New creates a pacer aiming for the given frame duration.
func New(target time.Duration) *Pacer {
	return &Pacer{
		target:  target,
		history: make([]time.Duration, 0, historySize),
	}
}

// Target returns the target frame duration.
func (p *Pacer) Target() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// SetTarget changes the target frame duration.
func (p *Pacer) SetTarget(target time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
}

// RecordFrame appends a measured frame duration, dropping the oldest
// sample beyond the window bound, and recomputes the instantaneous FPS.
func (p *Pacer) RecordFrame(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.history) == historySize {
		p.history = append(p.history[:0], p.history[1:]...)
	}
	p.history = append(p.history, d)

	if d > 0 {
		p.fps = float64(time.Second) / float64(d)
	} else {
		p.fps = 0
	}
}

// CurrentFPS returns 1/duration of the most recent frame.
func (p *Pacer) CurrentFPS() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fps
}

// AverageFrameTime returns the arithmetic mean of the recorded window.
func (p *Pacer) AverageFrameTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.history) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range p.history {
		sum += d
	}
	return sum / time.Duration(len(p.history))
}

// HistoryLen returns the number of recorded samples.
func (p *Pacer) HistoryLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.history)
}

// Throttle sleeps for target minus elapsed, never a negative duration
// and never busy-waiting. The sleep is cut short when ctx is cancelled,
// which is how shutdown interrupts a paced loop.
func (p *Pacer) Throttle(ctx context.Context, target, elapsed time.Duration) {
	remaining := target - elapsed
	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
