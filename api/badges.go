package api

import (
	"context"
	"net/http"

	"github.com/MayankGitHub86/solvehub-sub000/internal/achievements"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// ProgressReader is satisfied by achievements.Evaluator.
type ProgressReader interface {
	Progress(ctx context.Context, userID int64) ([]achievements.Progress, error)
}

type BadgeHandler struct {
	badges   repository.BadgeRepo
	users    repository.UserRepo
	progress ProgressReader
}

func NewBadgeHandler(badges repository.BadgeRepo, users repository.UserRepo, progress ProgressReader) *BadgeHandler {
	return &BadgeHandler{badges: badges, users: users, progress: progress}
}

type earnedBadge struct {
	models.Badge
	EarnedAt int64 `json:"earned_at"`
}

func (h *BadgeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	badges, err := h.badges.ListBadges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if badges == nil {
		badges = []models.Badge{}
	}

	writeJSON(w, http.StatusOK, badges)
}

// UserBadges lists the badges a user has earned, with catalog details.
func (h *BadgeHandler) UserBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	catalog, err := h.badges.ListBadges(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	owned, err := h.badges.ListUserBadges(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	byID := make(map[int64]models.Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}
	out := make([]earnedBadge, 0, len(owned))
	for _, ub := range owned {
		if b, ok := byID[ub.BadgeID]; ok {
			out = append(out, earnedBadge{Badge: b, EarnedAt: ub.EarnedAt})
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *BadgeHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	progress, err := h.progress.Progress(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// Leaderboard returns the top users by points; ?limit= caps the list.
func (h *BadgeHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10, maxPageSize)

	entries, err := h.users.TopByPoints(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
