// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scythe504/undercover-backend/internal"
)

var ErrConnClosed = errors.New("recording conn closed")

// Frame is one outbound message as a client would see it.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RecordingConn implements internal.Conn and keeps every frame written to it.
type RecordingConn struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func NewRecordingConn() *RecordingConn {
	return &RecordingConn{}
}

func (c *RecordingConn) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *RecordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *RecordingConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *RecordingConn) Frames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *RecordingConn) Types() []string {
	frames := c.Frames()
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func (c *RecordingConn) OfType(typ string) []Frame {
	var out []Frame
	for _, f := range c.Frames() {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

// Reset forgets recorded frames.
func (c *RecordingConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// Last decodes the most recent frame of typ into T.
func Last[T any](t testing.TB, c *RecordingConn, typ string) T {
	t.Helper()
	frames := c.OfType(typ)
	require.NotEmpty(t, frames, "no %q frame recorded", typ)
	return Decode[T](t, frames[len(frames)-1])
}

func Decode[T any](t testing.TB, f Frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v), "decode %q frame", f.Type)
	return v
}

var _ internal.Conn = (*RecordingConn)(nil)
