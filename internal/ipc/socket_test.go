package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler replies to status requests and rejects everything else.
type echoHandler struct{}

func (echoHandler) HandleControl(msg *Message) (*Message, error) {
	switch msg.Type {
	case TypeStatus:
		return &Message{
			Type:   TypeStatusReply,
			Status: &Status{FrameCount: 42, WindowCount: 3},
		}, nil
	case TypeTile:
		return NewOKMessage(), nil
	default:
		return nil, errors.New("unsupported")
	}
}

func startTestServer(t *testing.T) *SocketServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "control.sock")
	srv, err := NewSocketServer(echoHandler{}, path)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(srv.Stop)
	return srv
}

func TestClientServerRoundTrip(t *testing.T) {
	srv := startTestServer(t)

	client, err := Dial(srv.SocketPath())
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Send(&Message{Type: TypeStatus})
	require.NoError(t, err)
	assert.Equal(t, TypeStatusReply, reply.Type)
	require.NotNil(t, reply.Status)
	assert.Equal(t, uint64(42), reply.Status.FrameCount)
	assert.Equal(t, 3, reply.Status.WindowCount)
}

func TestMultipleRequestsOnOneConnection(t *testing.T) {
	srv := startTestServer(t)

	client, err := Dial(srv.SocketPath())
	require.NoError(t, err)
	defer client.Close()

	for i := 0; i < 3; i++ {
		reply, err := client.Send(&Message{Type: TypeTile})
		require.NoError(t, err)
		assert.Equal(t, TypeOK, reply.Type)
	}
}

func TestHandlerErrorBecomesErrorReply(t *testing.T) {
	srv := startTestServer(t)

	client, err := Dial(srv.SocketPath())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Send(&Message{Type: TypeFocus, WindowID: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestStopRemovesSocketFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	srv, err := NewSocketServer(echoHandler{}, path)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))

	_, err = os.Stat(path)
	require.NoError(t, err, "socket file must exist while running")

	srv.Stop()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket file must be removed on stop")
}

func TestContextCancellationStopsServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	srv, err := NewSocketServer(echoHandler{}, path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	cancel()

	// Stop is idempotent; calling it after cancellation must not hang.
	srv.Stop()
	_, err = Dial(path)
	assert.Error(t, err, "dial must fail once the server is down")
}

func TestStartReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0600))

	srv, err := NewSocketServer(echoHandler{}, path)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	client, err := Dial(path)
	require.NoError(t, err)
	defer client.Close()
	reply, err := client.Send(&Message{Type: TypeTile})
	require.NoError(t, err)
	assert.Equal(t, TypeOK, reply.Type)
}
