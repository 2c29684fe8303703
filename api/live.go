package api

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/MayankGitHub86/solvehub-sub000/internal/auth"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/internal/socket"
)

// Presence is satisfied by presence.Registry.
type Presence interface {
	Register(ctx context.Context, userID int64, connID string)
	Unregister(ctx context.Context, userID int64)
	IsOnline(userID int64) bool
	OnlineCount() int
	Online() []int64
}

// LiveHandler serves the realtime channels: the websocket room transport, the
// server-sent event stream, and presence reads.
type LiveHandler struct {
	tokens    *auth.Tokens
	hub       *socket.Hub
	upgrader  *websocket.Upgrader
	validator *socket.FrameValidator
	streams   *notify.Streams
	presence  Presence
}

func NewLiveHandler(tokens *auth.Tokens, hub *socket.Hub, upgrader *websocket.Upgrader, validator *socket.FrameValidator, streams *notify.Streams, presence Presence) *LiveHandler {
	return &LiveHandler{
		tokens:    tokens,
		hub:       hub,
		upgrader:  upgrader,
		validator: validator,
		streams:   streams,
		presence:  presence,
	}
}

// connectToken reads the token from ?token= or the Authorization header;
// browsers cannot set headers on websocket or EventSource requests.
func connectToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return bearerToken(r)
}

// Socket upgrades an authenticated request to a websocket. The user is marked
// online while it stays open; presence keeps one entry per user, so closing
// any of the user's sockets marks them offline.
func (h *LiveHandler) Socket(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.Parse(connectToken(r))
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.Warn("websocket upgrade failed", slog.Int64("user_id", userID), slog.Any("err", err))
		return
	}

	client := h.hub.NewClient(conn, userID)
	client.Serve(r.Context(), h.validator, func() {
		h.presence.Register(r.Context(), userID, client.ID)
		logger.Info("socket connected", slog.Int64("user_id", userID), slog.String("conn_id", client.ID))
	}, func() {
		h.presence.Unregister(context.Background(), userID)
		logger.Info("socket disconnected", slog.Int64("user_id", userID), slog.String("conn_id", client.ID))
	})
}

// Events serves the server-sent event stream. A valid token routes the user's
// own events to the stream; without one only broadcasts arrive.
func (h *LiveHandler) Events(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if t := connectToken(r); t != "" {
		id, err := h.tokens.Parse(t)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		userID = id
	}

	h.streams.Serve(w, r, userID)
}

type onlineResponse struct {
	Count int     `json:"count"`
	Users []int64 `json:"users"`
}

func (h *LiveHandler) OnlineCount(w http.ResponseWriter, r *http.Request) {
	users := h.presence.Online()
	writeJSON(w, http.StatusOK, onlineResponse{Count: len(users), Users: users})
}

func (h *LiveHandler) IsOnline(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "online": h.presence.IsOnline(userID)})
}
