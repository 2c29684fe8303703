package socket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
)

const maxFrameSize = 4096

// Client is one websocket connection. rooms is guarded by the hub lock.
type Client struct {
	ID     string
	UserID int64

	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool
}

// NewClient wraps conn for userID. It is not routable until registered.
func (h *Hub) NewClient(conn *websocket.Conn, userID int64) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.opts.SendBuffer),
		rooms:  make(map[string]bool),
	}
}

// Serve registers c, pumps frames in both directions and blocks until the
// connection closes. onOpen runs once c is routable; onClose runs after it
// has left the hub. Either may be nil.
func (c *Client) Serve(ctx context.Context, validator *FrameValidator, onOpen, onClose func()) {
	c.hub.Register(c)
	if onOpen != nil {
		onOpen()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump(ctx, validator)

	c.hub.Unregister(c)
	<-done
	if onClose != nil {
		onClose()
	}
}

func (c *Client) readPump(ctx context.Context, validator *FrameValidator) {
	defer c.conn.Close()

	opts := c.hub.opts
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Info("socket: client disconnected", "client_id", c.ID, "user_id", c.UserID, "err", err)
			}
			return
		}

		frame, err := validator.Parse(ctx, raw)
		if err != nil {
			c.sendError(err.Error())
			continue
		}
		c.handle(frame)
	}
}

func (c *Client) handle(f ClientFrame) {
	switch f.Event {
	case ActionJoin:
		c.hub.Join(c, f.Room)
	case ActionLeave:
		c.hub.Leave(c, f.Room)
	case notify.EventTypingStart, notify.EventTypingStop:
		data, _ := json.Marshal(map[string]any{"userId": c.UserID, "room": f.Room})
		c.hub.EmitToRoom(f.Room, notify.Message{Name: f.Event, Data: data}, c.ID)
	}
}

func (c *Client) sendError(msg string) {
	data, _ := json.Marshal(map[string]string{"message": msg})
	b, _ := json.Marshal(notify.Message{Name: "error", Data: data})

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.ID]; ok {
		c.hub.trySend(c, b)
	}
}

func (c *Client) writePump() {
	opts := c.hub.opts
	ticker := time.NewTicker(opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
