package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"log/slog"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/internal/socket"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// Notifier is satisfied by notify.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event)
}

// RoomEmitter is satisfied by socket.Hub.
type RoomEmitter interface {
	EmitToRoom(room string, m notify.Message, except string) int
}

// Rewarder runs the badge check after content is created; *reputation.Service
// satisfies it.
type Rewarder interface {
	Reward(ctx context.Context, userID int64) []models.Badge
}

// ContentStore is the storage surface the content endpoints need.
type ContentStore interface {
	repository.UserRepo
	repository.ContentRepo
}

type ContentHandler struct {
	store    ContentStore
	rewarder Rewarder
	notifier Notifier
	rooms    RoomEmitter
}

func NewContentHandler(store ContentStore, rewarder Rewarder, notifier Notifier, rooms RoomEmitter) *ContentHandler {
	return &ContentHandler{store: store, rewarder: rewarder, notifier: notifier, rooms: rooms}
}

type questionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type answerRequest struct {
	Body string `json:"body"`
}

type commentRequest struct {
	QuestionID *int64 `json:"questionId,omitempty"`
	AnswerID   *int64 `json:"answerId,omitempty"`
	Body       string `json:"body"`
}

type messageRequest struct {
	RecipientID int64  `json:"recipientId"`
	Body        string `json:"body"`
}

func (h *ContentHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	q := models.Question{AuthorID: userID, Title: req.Title, Body: req.Body}
	id, err := h.store.CreateQuestion(ctx, &q)
	if err != nil {
		writeError(w, fmt.Errorf("create question: %w", err))
		return
	}
	q.ID = id

	h.notifier.Notify(ctx, notify.Event{
		Type:    notify.TypeQuestionNew,
		Title:   "New question",
		Message: q.Title,
		Link:    fmt.Sprintf("/questions/%d", id),
		Data:    map[string]any{"questionId": id, "title": q.Title, "authorId": userID},
	})
	h.rewarder.Reward(ctx, userID)

	writeJSON(w, http.StatusCreated, q)
}

func (h *ContentHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid question id", http.StatusBadRequest)
		return
	}

	q, err := h.store.GetQuestion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if q == nil {
		http.Error(w, "Question not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// CreateAnswer posts an answer, pushes it to everyone viewing the question and
// notifies the question author.
func (h *ContentHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	questionID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid question id", http.StatusBadRequest)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	q, err := h.store.GetQuestion(ctx, questionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if q == nil {
		http.Error(w, "Question not found", http.StatusNotFound)
		return
	}

	a := models.Answer{QuestionID: questionID, AuthorID: userID, Body: req.Body}
	id, err := h.store.CreateAnswer(ctx, &a)
	if err != nil {
		writeError(w, fmt.Errorf("create answer: %w", err))
		return
	}
	a.ID = id

	h.emitToQuestion(questionID, notify.Event{Name: notify.EventAnswerNew, Data: a})
	if q.AuthorID != userID {
		h.notifier.Notify(ctx, notify.Event{
			Type:         notify.TypeAnswerNew,
			TargetUserID: q.AuthorID,
			Title:        "New answer",
			Message:      fmt.Sprintf("Your question %q has a new answer", q.Title),
			Link:         fmt.Sprintf("/questions/%d", questionID),
			Data:         map[string]any{"questionId": questionID, "answerId": id, "authorId": userID},
		})
	}
	h.rewarder.Reward(ctx, userID)

	writeJSON(w, http.StatusCreated, a)
}

// CreateComment attaches a comment to a question or an answer.
func (h *ContentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if (req.QuestionID == nil) == (req.AnswerID == nil) {
		http.Error(w, "Exactly one of questionId or answerId is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	questionID, parentAuthor, found, err := h.commentParent(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Target not found", http.StatusNotFound)
		return
	}

	c := models.Comment{AuthorID: userID, QuestionID: req.QuestionID, AnswerID: req.AnswerID, Body: req.Body}
	id, err := h.store.CreateComment(ctx, &c)
	if err != nil {
		writeError(w, fmt.Errorf("create comment: %w", err))
		return
	}
	c.ID = id

	h.emitToQuestion(questionID, notify.Event{Name: notify.EventCommentNew, Data: c})
	if parentAuthor != userID {
		h.notifier.Notify(ctx, notify.Event{
			Type:         notify.TypeCommentNew,
			TargetUserID: parentAuthor,
			Title:        "New comment",
			Message:      "Someone commented on your post",
			Link:         fmt.Sprintf("/questions/%d", questionID),
			Data:         map[string]any{"questionId": questionID, "commentId": id, "authorId": userID},
		})
	}
	h.rewarder.Reward(ctx, userID)

	writeJSON(w, http.StatusCreated, c)
}

// commentParent resolves the question a comment belongs to and the author of
// the commented post.
func (h *ContentHandler) commentParent(ctx context.Context, req commentRequest) (questionID, author int64, found bool, err error) {
	if req.QuestionID != nil {
		q, err := h.store.GetQuestion(ctx, *req.QuestionID)
		if err != nil || q == nil {
			return 0, 0, false, err
		}
		return q.ID, q.AuthorID, true, nil
	}

	a, err := h.store.GetAnswer(ctx, *req.AnswerID)
	if err != nil || a == nil {
		return 0, 0, false, err
	}
	return a.QuestionID, a.AuthorID, true, nil
}

// SaveQuestion bookmarks a question for the current user.
func (h *ContentHandler) SaveQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	questionID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid question id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	q, err := h.store.GetQuestion(ctx, questionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if q == nil {
		http.Error(w, "Question not found", http.StatusNotFound)
		return
	}

	saved, err := h.store.SaveQuestion(ctx, userID, questionID)
	if err != nil {
		writeError(w, fmt.Errorf("save question: %w", err))
		return
	}
	if saved {
		h.rewarder.Reward(ctx, userID)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

// SendMessage delivers a direct message as a durable notification.
func (h *ContentHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.RecipientID <= 0 || strings.TrimSpace(req.Body) == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if req.RecipientID == userID {
		http.Error(w, "Cannot message yourself", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sender, err := h.store.GetByID(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	recipient, err := h.store.GetByID(ctx, req.RecipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	if sender == nil || recipient == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	h.notifier.Notify(ctx, notify.Event{
		Type:         notify.TypeMessage,
		TargetUserID: recipient.ID,
		Title:        fmt.Sprintf("Message from %s", sender.Name),
		Message:      req.Body,
		Link:         "/messages",
		Data:         map[string]any{"senderId": sender.ID, "senderName": sender.Name},
	})

	w.WriteHeader(http.StatusAccepted)
}

func (h *ContentHandler) emitToQuestion(questionID int64, ev notify.Event) {
	if h.rooms == nil {
		return
	}
	msg, err := ev.Encode()
	if err != nil {
		logger.Error("encode room event", slog.String("event", ev.WireName()), slog.Any("err", err))
		return
	}
	h.rooms.EmitToRoom(socket.QuestionRoom(questionID), msg, "")
}
