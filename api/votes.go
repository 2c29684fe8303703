package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MayankGitHub86/solvehub-sub000/internal/reputation"
)

// Ledger is the reputation surface the HTTP layer drives; *reputation.Service
// satisfies it.
type Ledger interface {
	Cast(ctx context.Context, req reputation.CastRequest) (*reputation.CastResult, error)
	AcceptAnswer(ctx context.Context, actorID, answerID int64) (*reputation.AcceptResult, error)
}

type VoteHandler struct {
	ledger Ledger
}

func NewVoteHandler(ledger Ledger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

// Cast handles POST /v1/votes with {"questionId"|"answerId", "value": 1|-1}.
// Repeating a vote retracts it; the opposite value flips it.
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req reputation.CastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.ActorID = userID

	res, err := h.ledger.Cast(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Accept handles POST /v1/answers/{id}/accept.
func (h *VoteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	answerID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid answer id", http.StatusBadRequest)
		return
	}

	res, err := h.ledger.AcceptAnswer(r.Context(), userID, answerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
