package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MayankGitHub86/solvehub-sub000/internal/metrics"
)

// Streams is the event-stream transport: a flat set of long-lived responses,
// each tagged with the user it belongs to (0 for anonymous).
type Streams struct {
	mu        sync.RWMutex
	streams   map[string]*stream
	buffer    int
	heartbeat time.Duration
	logger    *slog.Logger
}

type stream struct {
	id     string
	userID int64
	send   chan Message
}

func NewStreams(buffer int, heartbeat time.Duration, logger *slog.Logger) *Streams {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Streams{streams: make(map[string]*stream), buffer: buffer, heartbeat: heartbeat, logger: logger}
}

func (s *Streams) Name() string { return "stream" }

// Deliver queues m on every matching stream. A stream whose buffer is full
// misses the message.
func (s *Streams) Deliver(m Message) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, st := range s.streams {
		if !m.Broadcast() && st.userID != m.TargetUserID {
			continue
		}
		select {
		case st.send <- m:
			n++
		default:
			metrics.EventsDropped.WithLabelValues(s.Name()).Inc()
		}
	}
	return n
}

// Len reports the number of attached streams.
func (s *Streams) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}

func (s *Streams) attach(userID int64) *stream {
	st := &stream{id: uuid.NewString(), userID: userID, send: make(chan Message, s.buffer)}
	s.mu.Lock()
	s.streams[st.id] = st
	s.mu.Unlock()
	metrics.Connections.WithLabelValues(s.Name()).Inc()
	return st
}

func (s *Streams) detach(st *stream) {
	s.mu.Lock()
	delete(s.streams, st.id)
	s.mu.Unlock()
	metrics.Connections.WithLabelValues(s.Name()).Dec()
}

// Serve holds the response open and writes every message routed to this
// stream until the client goes away. The first frame is always a health event.
func (s *Streams) Serve(w http.ResponseWriter, r *http.Request, userID int64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	st := s.attach(userID)
	defer s.detach(st)

	health, _ := json.Marshal(map[string]any{
		"status":       "connected",
		"connectionId": st.id,
		"timestamp":    time.Now().UnixMilli(),
	})
	if err := writeFrame(w, Message{Name: EventHealth, Data: health}); err != nil {
		return
	}
	flusher.Flush()

	var tick <-chan time.Time
	if s.heartbeat > 0 {
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case m := <-st.send:
			if err := writeFrame(w, m); err != nil {
				s.logger.Debug("stream write failed", "stream_id", st.id, "err", err)
				return
			}
			flusher.Flush()
		case <-tick:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, m Message) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", m.Name, m.Data)
	return err
}
