package server

import (
	"fmt"

	"github.com/prismwm/prism/internal/compositor"
	"github.com/prismwm/prism/internal/ipc"
	"github.com/prismwm/prism/internal/snapshot"
)

// HandleControl dispatches one control-socket message. It runs on the
// socket's connection goroutine; everything it touches is internally
// locked.
func (s *Server) HandleControl(msg *ipc.Message) (*ipc.Message, error) {
	switch msg.Type {
	case ipc.TypeStatus:
		return s.statusReply(), nil

	case ipc.TypeWindows:
		return s.windowsReply(), nil

	case ipc.TypeFocus:
		return okOr(s.registry.Focus(msg.WindowID))

	case ipc.TypeRaise:
		return okOr(s.registry.Raise(msg.WindowID))

	case ipc.TypeLower:
		return okOr(s.registry.Lower(msg.WindowID))

	case ipc.TypeTile:
		return okOr(s.registry.Tile())

	case ipc.TypeCascade:
		return okOr(s.registry.Cascade())

	case ipc.TypeMinimizeAll:
		s.registry.MinimizeAll()
		return ipc.NewOKMessage(), nil

	case ipc.TypeRestoreAll:
		s.registry.RestoreAll()
		return ipc.NewOKMessage(), nil

	case ipc.TypeEffect:
		return s.handleEffect(msg)

	case ipc.TypeSnapshotSave:
		return okOr(snapshot.Save(msg.Path, snapshot.Capture(s.registry)))

	case ipc.TypeSnapshotLoad:
		layout, err := snapshot.Load(msg.Path)
		if err != nil {
			return nil, err
		}
		return okOr(snapshot.Restore(s.registry, layout))

	default:
		return nil, fmt.Errorf("unknown control message type %q", msg.Type)
	}
}

func okOr(err error) (*ipc.Message, error) {
	if err != nil {
		return nil, err
	}
	return ipc.NewOKMessage(), nil
}

func (s *Server) handleEffect(msg *ipc.Message) (*ipc.Message, error) {
	kind, err := compositor.ParseEffectKind(msg.Effect)
	if err != nil {
		return nil, err
	}
	if len(msg.Params) > 0 {
		if err := s.comp.SetEffectParameters(kind, msg.Params); err != nil {
			return nil, err
		}
	}
	if msg.Enable != nil {
		if err := s.comp.EnableEffect(kind, *msg.Enable); err != nil {
			return nil, err
		}
	}
	return ipc.NewOKMessage(), nil
}

func (s *Server) statusReply() *ipc.Message {
	stats := s.comp.Stats()
	status := &ipc.Status{
		FrameCount:       stats.FrameCount,
		CurrentFPS:       stats.CurrentFPS,
		AverageFrameTime: stats.AverageFrameTime,
		DrawCalls:        stats.DrawCalls,
		SkippedWindows:   stats.SkippedWindows,
		WindowCount:      s.registry.Len(),
		FocusedWindow:    s.registry.Focused(),
	}
	for _, res := range s.comp.LastEffectStatus() {
		status.Effects = append(status.Effects, ipc.EffectState{
			Name:        res.Kind.String(),
			Enabled:     true,
			Unsupported: res.Unsupported,
		})
	}
	return &ipc.Message{Type: ipc.TypeStatusReply, Status: status}
}

func (s *Server) windowsReply() *ipc.Message {
	var infos []ipc.WindowInfo
	for _, win := range s.registry.Windows() {
		rect := win.Rect()
		infos = append(infos, ipc.WindowInfo{
			ID:      win.ID(),
			Title:   win.Title(),
			X:       rect.X,
			Y:       rect.Y,
			Width:   rect.Width,
			Height:  rect.Height,
			State:   win.State().String(),
			Opacity: win.Opacity(),
			Focused: win.Focused(),
			Visible: win.Visible(),
		})
	}
	return &ipc.Message{Type: ipc.TypeWindowsReply, Windows: infos}
}
