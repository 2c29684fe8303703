package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gorilla/mux"

	"github.com/MayankGitHub86/solvehub-sub000/internal/achievements"
	"github.com/MayankGitHub86/solvehub-sub000/internal/reputation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("err", err))
	}
}

// writeError maps domain errors to status codes; anything unknown is a 500
// and is logged rather than shown to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reputation.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reputation.ErrNotFound), errors.Is(err, achievements.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reputation.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		logger.Error("request failed", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 || (v == 0 && def > 0) {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// currentUser reads the authenticated id or answers 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}
