// Package ipc implements the compositor's control socket: a unix
// socket carrying length-prefixed JSON messages. The CLI subcommands
// use it to query and steer a running daemon. This is daemon control
// surface only; window content never crosses it.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// MessageType discriminates control messages.
type MessageType string

const (
	TypeStatus        MessageType = "status"
	TypeWindows       MessageType = "windows"
	TypeFocus         MessageType = "focus"
	TypeRaise         MessageType = "raise"
	TypeLower         MessageType = "lower"
	TypeTile          MessageType = "tile"
	TypeCascade       MessageType = "cascade"
	TypeMinimizeAll   MessageType = "minimize_all"
	TypeRestoreAll    MessageType = "restore_all"
	TypeEffect        MessageType = "effect"
	TypeSnapshotSave  MessageType = "snapshot_save"
	TypeSnapshotLoad  MessageType = "snapshot_load"
	TypeOK            MessageType = "ok"
	TypeStatusReply   MessageType = "status_reply"
	TypeWindowsReply  MessageType = "windows_reply"
	TypeError         MessageType = "error"
)

// Status is the daemon status payload.
type Status struct {
	FrameCount       uint64        `json:"frame_count"`
	CurrentFPS       float64       `json:"current_fps"`
	AverageFrameTime time.Duration `json:"average_frame_time"`
	DrawCalls        int           `json:"draw_calls"`
	SkippedWindows   int           `json:"skipped_windows"`
	WindowCount      int           `json:"window_count"`
	FocusedWindow    uint32        `json:"focused_window"`
	Effects          []EffectState `json:"effects,omitempty"`
}

// EffectState reports one effect's configuration and last outcome.
type EffectState struct {
	Name        string    `json:"name"`
	Enabled     bool      `json:"enabled"`
	Params      []float64 `json:"params,omitempty"`
	Unsupported bool      `json:"unsupported,omitempty"`
}

// WindowInfo is the per-window listing payload.
type WindowInfo struct {
	ID      uint32  `json:"id"`
	Title   string  `json:"title"`
	X       int32   `json:"x"`
	Y       int32   `json:"y"`
	Width   int32   `json:"width"`
	Height  int32   `json:"height"`
	State   string  `json:"state"`
	Opacity float64 `json:"opacity"`
	Focused bool    `json:"focused"`
	Visible bool    `json:"visible"`
}

// Message is one control frame in either direction.
type Message struct {
	Type     MessageType  `json:"type"`
	WindowID uint32       `json:"window_id,omitempty"`
	Path     string       `json:"path,omitempty"`
	Effect   string       `json:"effect,omitempty"`
	Enable   *bool        `json:"enable,omitempty"`
	Params   []float64    `json:"params,omitempty"`
	Status   *Status      `json:"status,omitempty"`
	Windows  []WindowInfo `json:"windows,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// NewErrorMessage wraps an error for the wire.
func NewErrorMessage(err error) *Message {
	return &Message{Type: TypeError, Error: err.Error()}
}

// NewOKMessage acknowledges a command with no payload.
func NewOKMessage() *Message {
	return &Message{Type: TypeOK}
}

// maxMessageSize bounds a single control frame. Window listings are the
// largest payload and stay far below this.
const maxMessageSize = 1 << 20

// WriteMessage frames and writes one message: 4-byte big-endian length
// followed by the JSON payload.
func WriteMessage(w io.Writer, msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if len(payload) > maxMessageSize {
		return fmt.Errorf("message too large: %d bytes", len(payload))
	}
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("write message length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write message payload: %w", err)
	}
	return nil
}

// ReadMessage reads one framed message.
func ReadMessage(r io.Reader) (*Message, error) {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(length[:])
	if size > maxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read message payload: %w", err)
	}
	msg := &Message{}
	if err := json.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return msg, nil
}
