package reputation

import (
	"context"
	"errors"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/metrics"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

type CastRequest struct {
	ActorID    int64  `json:"-"`
	QuestionID *int64 `json:"questionId,omitempty"`
	AnswerID   *int64 `json:"answerId,omitempty"`
	Value      int    `json:"value"`
}

func (r CastRequest) target() (models.Target, error) {
	if (r.QuestionID == nil) == (r.AnswerID == nil) {
		return models.Target{}, fmt.Errorf("%w: exactly one of questionId or answerId is required", ErrInvalidRequest)
	}
	if r.Value != 1 && r.Value != -1 {
		return models.Target{}, fmt.Errorf("%w: value must be 1 or -1", ErrInvalidRequest)
	}

	t := models.Target{Kind: models.TargetQuestion}
	if r.QuestionID != nil {
		t.ID = *r.QuestionID
	} else {
		t.Kind, t.ID = models.TargetAnswer, *r.AnswerID
	}
	if !t.Valid() {
		return models.Target{}, fmt.Errorf("%w: target id must be positive", ErrInvalidRequest)
	}
	return t, nil
}

type CastResult struct {
	Action       Action `json:"action"`
	NewTotal     int64  `json:"newTotal"`
	Upvotes      int64  `json:"upvotes"`
	Downvotes    int64  `json:"downvotes"`
	AuthorID     int64  `json:"authorId"`
	AuthorPoints int64  `json:"authorPoints"`

	target models.Target
	link   string
	value  int
}

// Cast applies a vote as create, flip or retract. The lookup, the vote write
// and the balance change share one transaction.
func (s *Service) Cast(ctx context.Context, req CastRequest) (*CastResult, error) {
	target, err := req.target()
	if err != nil {
		metrics.VoteRejections.WithLabelValues("invalid").Inc()
		return nil, err
	}

	res := &CastResult{target: target, value: req.Value}
	err = s.store.InTx(ctx, func(tx repository.LedgerTx) error {
		return s.apply(ctx, tx, req, res)
	})
	if err != nil {
		metrics.VoteRejections.WithLabelValues(reason(err)).Inc()
		return nil, err
	}
	metrics.VotesTotal.WithLabelValues(string(res.Action)).Inc()
	s.logger.Info("reputation: vote applied", "actor_id", req.ActorID, "target", target.Kind, "target_id", target.ID, "action", res.Action, "author_id", res.AuthorID, "balance", res.AuthorPoints)

	s.afterCast(ctx, req, res)
	return res, nil
}

func (s *Service) apply(ctx context.Context, tx repository.LedgerTx, req CastRequest, res *CastResult) error {
	t := res.target
	author, err := tx.TargetAuthor(ctx, t)
	if err != nil {
		return fmt.Errorf("load %s %d: %w", t.Kind, t.ID, err)
	}
	if author == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, t.Kind, t.ID)
	}
	if author == req.ActorID {
		return fmt.Errorf("%w: cannot vote on own content", ErrForbidden)
	}

	res.link = fmt.Sprintf("/questions/%d", t.ID)
	if t.Kind == models.TargetAnswer {
		a, err := tx.GetAnswer(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("load answer %d: %w", t.ID, err)
		}
		if a != nil {
			res.link = fmt.Sprintf("/questions/%d#answer-%d", a.QuestionID, a.ID)
		}
	}

	existing, err := tx.FindVote(ctx, req.ActorID, t)
	if err != nil {
		return fmt.Errorf("find vote: %w", err)
	}

	var delta int64
	switch {
	case existing == nil:
		v := &models.Vote{UserID: req.ActorID, Value: req.Value}
		if t.Kind == models.TargetQuestion {
			v.QuestionID = &t.ID
		} else {
			v.AnswerID = &t.ID
		}
		if _, err := tx.CreateVote(ctx, v); err != nil {
			return fmt.Errorf("create vote: %w", err)
		}
		delta = int64(req.Value) * Weight
		res.Action = ActionCreated
	case existing.Value == req.Value:
		if err := tx.DeleteVote(ctx, existing.ID); err != nil {
			return fmt.Errorf("delete vote: %w", err)
		}
		delta = -int64(req.Value) * Weight
		res.Action = ActionRemoved
	default:
		if err := tx.UpdateVoteValue(ctx, existing.ID, req.Value); err != nil {
			return fmt.Errorf("update vote: %w", err)
		}
		delta = int64(req.Value-existing.Value) * Weight
		res.Action = ActionUpdated
	}

	balance, err := tx.IncrementPoints(ctx, author, delta)
	if err != nil {
		return err
	}
	tally, err := tx.VoteTally(ctx, t)
	if err != nil {
		return fmt.Errorf("tally votes: %w", err)
	}

	res.AuthorID = author
	res.AuthorPoints = balance
	res.Upvotes = tally.Upvotes
	res.Downvotes = tally.Downvotes
	res.NewTotal = tally.Score()
	return nil
}

func (s *Service) afterCast(ctx context.Context, req CastRequest, res *CastResult) {
	if len(s.checkBadges(ctx, res.AuthorID)) > 0 {
		if points, ok := s.balance(ctx, res.AuthorID); ok {
			res.AuthorPoints = points
		}
	}

	if res.Action != ActionRemoved {
		verb := "upvoted"
		if req.Value < 0 {
			verb = "downvoted"
		}
		s.notify(ctx, notify.Event{
			Type:         notify.TypeVoteReceived,
			TargetUserID: res.AuthorID,
			Title:        "New vote",
			Message:      fmt.Sprintf("Someone %s your %s", verb, res.target.Kind),
			Link:         res.link,
			Data:         map[string]any{"targetType": res.target.Kind, "targetId": res.target.ID, "value": req.Value},
		})
	}

	s.announceBalance(ctx, res.AuthorID, res.AuthorPoints)
	s.notify(ctx, notify.Event{
		Name: notify.EventVoteUpdate,
		Data: map[string]any{
			"targetType": res.target.Kind,
			"targetId":   res.target.ID,
			"upvotes":    res.Upvotes,
			"downvotes":  res.Downvotes,
			"score":      res.NewTotal,
		},
	})

	// positive votes cast count toward the voter's own badges
	if res.Action != ActionRemoved && req.Value > 0 {
		s.Reward(ctx, req.ActorID)
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	}
	return "error"
}
