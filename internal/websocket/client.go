package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
)

var (
	ErrClientClosed   = errors.New("client connection closed")
	ErrSendQueueFull  = errors.New("client send queue full")
	errMalformedFrame = errors.New("malformed frame")
)

// client is one websocket session. It implements internal.Conn: frames are
// encoded when queued, so the payload reflects room state at that moment.
type client struct {
	id      string
	conn    *websocket.Conn
	gateway *Gateway
	logger  *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// room is the code of the room this session sits in. Read pump only.
	room string
}

var _ internal.Conn = (*client)(nil)

func newClient(id string, conn *websocket.Conn, g *Gateway) *client {
	buf := g.cfg.SendBuffer
	if buf <= 0 {
		buf = 64
	}
	return &client{
		id:      id,
		conn:    conn,
		gateway: g,
		logger:  g.logger.With(zap.String("player", id)),
		send:    make(chan []byte, buf),
		done:    make(chan struct{}),
	}
}

// WriteJSON queues v without blocking. A full queue closes the session.
func (c *client) WriteJSON(v any) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case c.send <- b:
		return nil
	default:
		c.logger.Warn("send queue full, closing connection")
		_ = c.Close()
		return ErrSendQueueFull
	}
}

// Close stops the write pump, which closes the socket and ends the read pump.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		_ = c.Close()
		_ = c.conn.Close()
	}()

	cfg := c.gateway.cfg
	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(cfg.MaxMessageSize)
	}
	if cfg.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		})
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			c.logger.Debug("dropping frame", zap.Error(errors.Join(errMalformedFrame, err)))
			continue
		}
		c.gateway.dispatch(c, msg)
	}
}

func (c *client) writePump() {
	cfg := c.gateway.cfg
	var ping <-chan time.Time
	if period := cfg.PingPeriod(); period > 0 {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer c.conn.Close()

	for {
		select {
		case b := <-c.send:
			c.setWriteDeadline()
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.logger.Warn("websocket write failed", zap.Error(err))
				_ = c.Close()
				return
			}
		case <-ping:
			c.setWriteDeadline()
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			c.setWriteDeadline()
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *client) setWriteDeadline() {
	if wait := c.gateway.cfg.WriteWait; wait > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wait))
	}
}
