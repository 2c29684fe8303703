// Package presence tracks which users hold a live socket.
//
// The registry keeps one connection id per user: a second tab overwrites the
// first, so OnlineCount counts users rather than connections.
package presence

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/MayankGitHub86/solvehub-sub000/internal/metrics"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
)

// Notifier is satisfied by notify.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event)
}

type Registry struct {
	mu       sync.RWMutex
	conns    map[int64]string
	notifier Notifier
	logger   *slog.Logger
}

func NewRegistry(notifier Notifier, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{conns: make(map[int64]string), notifier: notifier, logger: logger}
}

// Register records connID as the user's connection, replacing any previous one.
func (r *Registry) Register(ctx context.Context, userID int64, connID string) {
	r.mu.Lock()
	r.conns[userID] = connID
	n := len(r.conns)
	r.mu.Unlock()

	r.logger.Debug("presence: register", "user_id", userID, "conn_id", connID, "online", n)
	r.broadcast(ctx, n)
}

// Unregister drops the user regardless of which connection is current.
func (r *Registry) Unregister(ctx context.Context, userID int64) {
	r.mu.Lock()
	delete(r.conns, userID)
	n := len(r.conns)
	r.mu.Unlock()

	r.logger.Debug("presence: unregister", "user_id", userID, "online", n)
	r.broadcast(ctx, n)
}

func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Online lists online user ids in ascending order.
func (r *Registry) Online() []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) broadcast(ctx context.Context, n int) {
	metrics.OnlineUsers.Set(float64(n))
	if r.notifier == nil {
		return
	}
	r.notifier.Notify(ctx, notify.Event{Name: notify.EventOnlineCount, Data: map[string]int{"count": n}})
}
