package ipc

import (
	"fmt"
	"net"
	"time"
)

// Client is a one-shot control connection used by the CLI subcommands.
type Client struct {
	conn net.Conn
}

// Dial connects to the daemon's control socket. An empty path uses the
// default runtime location.
func Dial(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = DefaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("resolve socket path: %w", err)
		}
	}
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to compositor at %s: %w (is the daemon running?)", path, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes a request and reads the reply. Replies of TypeError are
// surfaced as errors.
func (c *Client) Send(msg *Message) (*Message, error) {
	if err := c.conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return nil, err
	}
	if err := WriteMessage(c.conn, msg); err != nil {
		return nil, err
	}
	reply, err := ReadMessage(c.conn)
	if err != nil {
		return nil, err
	}
	if reply.Type == TypeError {
		return nil, fmt.Errorf("compositor: %s", reply.Error)
	}
	return reply, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
