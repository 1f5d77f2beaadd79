// Package server implements the display server: it owns the window
// registry, the compositor, the frame pacer and the control socket, and
// drives the frame loop against the presenter.
package server

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prismwm/prism/internal/compositor"
	"github.com/prismwm/prism/internal/config"
	"github.com/prismwm/prism/internal/display"
	"github.com/prismwm/prism/internal/geometry"
	"github.com/prismwm/prism/internal/ipc"
	"github.com/prismwm/prism/internal/logger"
	"github.com/prismwm/prism/internal/pacer"
	"github.com/prismwm/prism/internal/wm"
)

// Server is the top-level display server.
type Server struct {
	cfg *config.Config

	registry  *wm.Registry
	comp      *compositor.Compositor
	pacer     *pacer.Pacer
	presenter display.Presenter
	tuner     SystemTuner
	sock      *ipc.SocketServer

	frameLimit  bool
	frameTarget time.Duration

	mu      sync.Mutex
	group   *errgroup.Group
	cancel  context.CancelFunc
	running bool
}

// New assembles a display server from configuration. socketPath
// overrides the control socket location when non-empty.
func New(cfg *config.Config, tuner SystemTuner, socketPath string) (*Server, error) {
	presenter, err := display.New(display.Options{
		Backend:   cfg.Display.Backend,
		Width:     cfg.Compositor.Width,
		Height:    cfg.Compositor.Height,
		RefreshHz: cfg.Display.RefreshHz,
		OutputDir: cfg.Display.OutputDir,
		FrameCap:  cfg.Display.FrameCap,
	})
	if err != nil {
		return nil, fmt.Errorf("create presenter: %w", err)
	}

	frameTarget := presenter.RefreshInterval()
	if cfg.Compositor.TargetFPS > 0 {
		frameTarget = time.Second / time.Duration(cfg.Compositor.TargetFPS)
	}

	workarea := geometry.Rect{Width: cfg.Compositor.Width, Height: cfg.Compositor.Height}
	registry := wm.NewRegistry(workarea, cfg.Compositor.TileColumns, cfg.Compositor.TileGap)

	caps := display.Capabilities{
		HDR:             cfg.Display.HDR,
		VariableRefresh: cfg.Display.VariableRefresh,
	}

	p := pacer.New(frameTarget)
	comp := compositor.New(registry, presenter, caps, p)

	if r, g, b, err := config.ParseHexColor(cfg.Compositor.Background); err == nil {
		comp.SetBackground(color.RGBA{R: r, G: g, B: b, A: 0xff})
	} else {
		logger.Warnf("invalid background color: %v", err)
	}

	s := &Server{
		cfg:         cfg,
		registry:    registry,
		comp:        comp,
		pacer:       p,
		presenter:   presenter,
		tuner:       tuner,
		frameLimit:  cfg.Compositor.FrameLimit,
		frameTarget: frameTarget,
	}

	if err := s.applyEffectConfig(); err != nil {
		return nil, err
	}

	sock, err := ipc.NewSocketServer(s, socketPath)
	if err != nil {
		return nil, fmt.Errorf("create control socket: %w", err)
	}
	s.sock = sock

	return s, nil
}

func (s *Server) applyEffectConfig() error {
	for name, ec := range s.cfg.Effects {
		kind, err := compositor.ParseEffectKind(name)
		if err != nil {
			return fmt.Errorf("effects config: %w", err)
		}
		if len(ec.Params) > 0 {
			if err := s.comp.SetEffectParameters(kind, ec.Params); err != nil {
				return fmt.Errorf("effects config: %w", err)
			}
		}
		if ec.Enabled {
			if err := s.comp.EnableEffect(kind, true); err != nil {
				// Capability-gated effects are not fatal at startup.
				logger.Warnf("effect %s not enabled: %v", name, err)
			}
		}
	}
	return nil
}

// Registry returns the window registry.
func (s *Server) Registry() *wm.Registry {
	return s.registry
}

// Compositor returns the compositor.
func (s *Server) Compositor() *compositor.Compositor {
	return s.comp
}

// SocketPath returns the control socket path.
func (s *Server) SocketPath() string {
	return s.sock.SocketPath()
}

// Start initializes the tuner, opens the control socket and starts the
// frame loop. It returns immediately.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if err := s.tuner.Init(ctx); err != nil {
		return fmt.Errorf("tuner init: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.sock.Start(loopCtx); err != nil {
		cancel()
		return fmt.Errorf("start control socket: %w", err)
	}

	group, groupCtx := errgroup.WithContext(loopCtx)
	s.group = group
	group.Go(func() error {
		return s.frameLoop(groupCtx)
	})
	s.running = true

	logger.Info("display server started",
		"output", fmt.Sprintf("%dx%d", s.cfg.Compositor.Width, s.cfg.Compositor.Height),
		"backend", s.cfg.Display.Backend,
		"target", s.frameTarget)
	return nil
}

// frameLoop drives the pipeline until the context is cancelled. A
// cancellation lands between frames: the in-flight frame always
// finishes composing and presenting first.
func (s *Server) frameLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			logger.Debug("frame loop exiting")
			return nil
		default:
		}

		if err := s.tick(ctx); err != nil {
			logger.Errorf("frame loop fatal: %v", err)
			return err
		}
	}
}

// tick composes and presents one frame. Presenter failures are fatal
// and propagate; per-window failures were already absorbed by the
// compositor.
func (s *Server) tick(ctx context.Context) error {
	if err := s.comp.Begin(); err != nil {
		return err
	}
	s.registry.Update()
	if err := s.comp.Compose(); err != nil {
		return err
	}
	if err := s.comp.End(); err != nil {
		return err
	}
	if err := s.comp.Present(); err != nil {
		return err
	}

	if s.frameLimit {
		s.pacer.Throttle(ctx, s.frameTarget, time.Since(s.comp.FrameStart()))
	}
	return nil
}

// Stop shuts the server down: the loop finishes its in-flight frame,
// the control socket closes, and the presenter and tuner are torn down.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	group := s.group
	s.mu.Unlock()

	cancel()
	err := group.Wait()

	s.sock.Stop()
	if cerr := s.presenter.Close(); cerr != nil {
		logger.Errorf("presenter close: %v", cerr)
	}
	if terr := s.tuner.Teardown(); terr != nil {
		logger.Errorf("tuner teardown: %v", terr)
	}

	logger.Info("display server stopped", "frames", s.comp.Stats().FrameCount)
	return err
}
