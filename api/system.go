package api

import (
	"context"
	"net/http"
	"time"

	"log/slog"
)

// Pinger reports whether a backing store is reachable; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// LiveStats exposes connection counters for the health payload.
type LiveStats interface {
	OnlineCount() int
}

type SystemHandler struct {
	db   Pinger
	live LiveStats
}

func NewSystemHandler(db Pinger, live LiveStats) *SystemHandler {
	return &SystemHandler{db: db, live: live}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Online  int    `json:"online"`
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: "solvehub"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.Error("health: database ping failed", slog.Any("err", err))
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if h.live != nil {
		resp.Online = h.live.OnlineCount()
	}

	writeJSON(w, status, resp)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version, "buildTime": buildTime})
	}
}
