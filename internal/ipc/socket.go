package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/prismwm/prism/internal/logger"
)

// Handler processes one control message and returns the reply.
type Handler interface {
	HandleControl(msg *Message) (*Message, error)
}

// SocketServer accepts control connections on a unix socket.
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    Handler
	wg         sync.WaitGroup
	conns      map[net.Conn]struct{}
	running    bool
}

// NewSocketServer creates a socket server at the default runtime path,
// or at path when non-empty.
func NewSocketServer(handler Handler, path string) (*SocketServer, error) {
	if path == "" {
		var err error
		path, err = DefaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("resolve socket path: %w", err)
		}
	}
	return &SocketServer{socketPath: path, handler: handler, conns: make(map[net.Conn]struct{})}, nil
}

// DefaultSocketPath returns the per-user control socket location.
func DefaultSocketPath() (string, error) {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "prism", "control.sock"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".prism", "control.sock"), nil
}

// SocketPath returns the path the server listens on.
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

// Start begins accepting connections. It returns immediately; the
// accept loop runs until Stop or context cancellation.
func (s *SocketServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	logger.Debug("control socket listening", "path", s.socketPath)
	return nil
}

func (s *SocketServer) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Errorf("control socket accept: %v", err)
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

func (s *SocketServer) serveConn(conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	for {
		msg, err := ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debugf("control connection read: %v", err)
			}
			return
		}

		reply, err := s.handler.HandleControl(msg)
		if err != nil {
			reply = NewErrorMessage(err)
		}
		if reply == nil {
			reply = NewOKMessage()
		}
		if err := WriteMessage(conn, reply); err != nil {
			logger.Debugf("control connection write: %v", err)
			return
		}
	}
}

// Stop closes the listener and waits for in-flight connections.
func (s *SocketServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	listener := s.listener
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	s.wg.Wait()
	_ = os.RemoveAll(s.socketPath)
}
