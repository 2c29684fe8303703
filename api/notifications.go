package api

import (
	"net/http"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type NotificationHandler struct {
	repo repository.NotificationRepo
}

func NewNotificationHandler(repo repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
}

// List returns the caller's notifications, newest first. ?unread=true limits
// the page to unread ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := queryInt(r, "limit", defaultPageSize, maxPageSize)
	offset := queryInt(r, "offset", 0, 0)

	items, err := h.repo.ListNotifications(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	unread, err := h.repo.CountUnread(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}

	writeJSON(w, http.StatusOK, notificationList{Notifications: items, Unread: unread})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.repo.CountUnread(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid notification id", http.StatusBadRequest)
		return
	}

	found, err := h.repo.MarkRead(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.repo.MarkAllRead(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid notification id", http.StatusBadRequest)
		return
	}

	found, err := h.repo.DeleteNotification(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
