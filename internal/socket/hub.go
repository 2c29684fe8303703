// Package socket is the room-based websocket transport. Every authenticated
// client sits in its own user:{id} room; question and conversation rooms are
// joined on request and carry ephemeral typing signals.
package socket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MayankGitHub86/solvehub-sub000/internal/metrics"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
)

type Options struct {
	SendBuffer int
	WriteWait  time.Duration
	PongWait   time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	return o
}

// Hub owns the connected clients and their room memberships.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	opts    Options
	logger  *slog.Logger
}

var _ notify.Transport = (*Hub)(nil)

func NewHub(opts Options, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// UserRoom is the private room of one user.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// QuestionRoom is joined by clients viewing a question.
func QuestionRoom(questionID int64) string {
	return fmt.Sprintf("question:%d", questionID)
}

func (h *Hub) Name() string { return "socket" }

// Deliver sends m to the target user's room, or to every client when m is a
// broadcast.
func (h *Hub) Deliver(m notify.Message) int {
	b, err := json.Marshal(m)
	if err != nil {
		h.logger.Error("socket: encode frame", "event", m.Name, "err", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if m.Broadcast() {
		n := 0
		for _, c := range h.clients {
			if h.trySend(c, b) {
				n++
			}
		}
		return n
	}
	return h.emitLocked(UserRoom(m.TargetUserID), b, "")
}

// EmitToRoom sends m to every member of room except the client with id except.
func (h *Hub) EmitToRoom(room string, m notify.Message, except string) int {
	b, err := json.Marshal(m)
	if err != nil {
		h.logger.Error("socket: encode frame", "event", m.Name, "err", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	n := h.emitLocked(room, b, except)
	if n > 0 {
		metrics.EventsDelivered.WithLabelValues(h.Name(), m.Name).Add(float64(n))
	}
	return n
}

func (h *Hub) emitLocked(room string, b []byte, except string) int {
	n := 0
	for id, c := range h.rooms[room] {
		if id == except {
			continue
		}
		if h.trySend(c, b) {
			n++
		}
	}
	return n
}

func (h *Hub) trySend(c *Client, b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		metrics.EventsDropped.WithLabelValues(h.Name()).Inc()
		h.logger.Warn("socket: send buffer full, dropping frame", "client_id", c.ID, "user_id", c.UserID)
		return false
	}
}

// Register adds c to the hub and to its user room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.joinLocked(c, UserRoom(c.UserID))
	h.mu.Unlock()
	metrics.Connections.WithLabelValues(h.Name()).Inc()
}

// Unregister removes c from every room and closes its send buffer.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	close(c.send)
	h.mu.Unlock()
	metrics.Connections.WithLabelValues(h.Name()).Dec()
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; ok {
		h.joinLocked(c, room)
	}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c
	c.rooms[room] = true
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// Len reports connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize reports the members of room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
