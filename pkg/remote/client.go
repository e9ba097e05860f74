package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vtree/pkg/vdom"
)

type client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	send chan encoded
	done chan struct{}
	once sync.Once

	// minSeq is the sequence of the last reset written; older batches are
	// already reflected in it.
	minSeq uint64
}

// ServeWS upgrades the request and serves one client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(h.cfg.MaxMessageSize)

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan encoded, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}
	if !h.register(c) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.cfg.WriteTimeout))
		conn.Close()
		return
	}
	c.logger = h.logger.With("client", c.id, "remote_addr", r.RemoteAddr)
	defer h.unregister(c)
	c.logger.Info("client connected")

	// Registered first so no batch after the snapshot is missed.
	if err := c.writeSnapshot(); err != nil {
		c.logger.Error("initial snapshot failed", "error", err)
		c.shutdown()
		conn.Close()
		return
	}

	go c.writeLoop()
	c.readLoop(r.Context())
	c.logger.Info("client disconnected")
}

func (c *client) writeSnapshot() error {
	src := c.hub.source()
	if src == nil {
		return nil
	}
	frame, err := encodeBatch(src.Snapshot())
	if err != nil {
		return err
	}
	c.minSeq = frame.seq
	c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, frame.data)
}

// enqueue reports false when the client's queue is full.
func (c *client) enqueue(frame encoded) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

func (c *client) readLoop(ctx context.Context) {
	defer c.shutdown()

	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))

		var in Inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			c.logger.Warn("frame decode error", "error", err)
			c.reply(encodeError("invalid frame"))
			continue
		}

		switch in.Type {
		case FrameEvent:
			c.handleEvent(ctx, in)
		case FrameResync:
			c.handleResync()
		default:
			c.logger.Warn("unknown frame type", "type", in.Type)
			c.reply(encodeError("unknown frame type " + in.Type))
		}
	}
}

func (c *client) handleEvent(ctx context.Context, in Inbound) {
	src := c.hub.source()
	if src == nil || in.Event == "" {
		return
	}
	ev := &vdom.Event{Name: in.Event, Target: in.Target, Payload: in.Payload}
	if err := src.Send(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("event rejected", "event", in.Event, "error", err)
		c.reply(encodeError("event rejected"))
	}
}

func (c *client) handleResync() {
	src := c.hub.source()
	if src == nil {
		return
	}
	frame, err := encodeBatch(src.Snapshot())
	if err != nil {
		c.logger.Error("resync encode failed", "error", err)
		return
	}
	if !c.enqueue(frame) {
		c.logger.Warn("resync dropped, queue full")
	}
}

func (c *client) reply(data []byte) {
	c.enqueue(encoded{data: data})
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(c.hub.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			switch {
			case frame.seq == 0:
				// not a batch
			case frame.reset:
				c.minSeq = frame.seq
			case frame.seq <= c.minSeq:
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame.data); err != nil {
				c.logger.Error("write error", "error", err)
				c.shutdown()
				return
			}

		case <-ticker.C:
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.hub.cfg.WriteTimeout))
			if err != nil {
				c.shutdown()
				return
			}

		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.hub.cfg.WriteTimeout))
			return
		}
	}
}
