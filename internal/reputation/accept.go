package reputation

import (
	"context"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

type AcceptResult struct {
	AnswerID         int64          `json:"answerId"`
	QuestionID       int64          `json:"questionId"`
	PreviousAnswerID int64          `json:"previousAnswerId,omitempty"`
	AuthorID         int64          `json:"authorId"`
	AuthorPoints     int64          `json:"authorPoints"`
	Changed          bool           `json:"changed"`
	Badges           []models.Badge `json:"badges,omitempty"`

	previousAuthor int64
	previousPoints int64
	bonusPaid      bool
}

// AcceptAnswer marks answerID as the accepted answer of its question. Only the
// question author may accept. Switching to another answer moves the bonus;
// accepting the current answer again changes nothing. Authors accepting their
// own answer earn no bonus.
func (s *Service) AcceptAnswer(ctx context.Context, actorID, answerID int64) (*AcceptResult, error) {
	if actorID <= 0 || answerID <= 0 {
		return nil, fmt.Errorf("%w: answer id must be positive", ErrInvalidRequest)
	}

	res := &AcceptResult{AnswerID: answerID}
	err := s.store.InTx(ctx, func(tx repository.LedgerTx) error {
		return s.accept(ctx, tx, actorID, res)
	})
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		return res, nil
	}
	s.logger.Info("reputation: answer accepted", "question_id", res.QuestionID, "answer_id", res.AnswerID, "previous_answer_id", res.PreviousAnswerID, "author_id", res.AuthorID)

	s.afterAccept(ctx, actorID, res)
	return res, nil
}

func (s *Service) accept(ctx context.Context, tx repository.LedgerTx, actorID int64, res *AcceptResult) error {
	a, err := tx.GetAnswer(ctx, res.AnswerID)
	if err != nil {
		return fmt.Errorf("load answer %d: %w", res.AnswerID, err)
	}
	if a == nil {
		return fmt.Errorf("%w: answer %d", ErrNotFound, res.AnswerID)
	}
	q, err := tx.GetQuestion(ctx, a.QuestionID)
	if err != nil {
		return fmt.Errorf("load question %d: %w", a.QuestionID, err)
	}
	if q == nil {
		return fmt.Errorf("%w: question %d", ErrNotFound, a.QuestionID)
	}
	if q.AuthorID != actorID {
		return fmt.Errorf("%w: only the question author can accept an answer", ErrForbidden)
	}

	res.QuestionID = q.ID
	res.AuthorID = a.AuthorID
	if a.IsAccepted {
		return nil
	}

	prev, err := tx.GetAcceptedAnswer(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("load accepted answer: %w", err)
	}
	if prev != nil {
		if err := tx.SetAccepted(ctx, prev.ID, false); err != nil {
			return fmt.Errorf("unaccept answer %d: %w", prev.ID, err)
		}
		res.PreviousAnswerID = prev.ID
		if prev.AuthorID != q.AuthorID {
			balance, err := tx.IncrementPoints(ctx, prev.AuthorID, -AcceptBonus)
			if err != nil {
				return err
			}
			res.previousAuthor, res.previousPoints = prev.AuthorID, balance
		}
	}

	if err := tx.SetAccepted(ctx, a.ID, true); err != nil {
		return fmt.Errorf("accept answer %d: %w", a.ID, err)
	}
	if a.AuthorID != q.AuthorID {
		balance, err := tx.IncrementPoints(ctx, a.AuthorID, AcceptBonus)
		if err != nil {
			return err
		}
		res.AuthorPoints = balance
		res.bonusPaid = true
	}

	res.Changed = true
	return nil
}

func (s *Service) afterAccept(ctx context.Context, actorID int64, res *AcceptResult) {
	link := fmt.Sprintf("/questions/%d#answer-%d", res.QuestionID, res.AnswerID)

	if res.previousAuthor != 0 && res.previousAuthor != res.AuthorID {
		s.announceBalance(ctx, res.previousAuthor, res.previousPoints)
	}

	if !res.bonusPaid {
		return
	}

	res.Badges = s.checkBadges(ctx, res.AuthorID)
	if len(res.Badges) > 0 {
		if points, ok := s.balance(ctx, res.AuthorID); ok {
			res.AuthorPoints = points
		}
	}

	s.notify(ctx, notify.Event{
		Type:         notify.TypeAnswerAccepted,
		TargetUserID: res.AuthorID,
		Title:        "Answer accepted",
		Message:      fmt.Sprintf("Your answer was accepted (+%d points)", AcceptBonus),
		Link:         link,
		Data:         map[string]int64{"questionId": res.QuestionID, "answerId": res.AnswerID, "acceptedBy": actorID},
		Durable:      true,
	})
	s.announceBalance(ctx, res.AuthorID, res.AuthorPoints)
}
