// Package achievements awards badges from statistics recomputed on every call.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MayankGitHub86/solvehub-sub000/internal/metrics"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

var ErrUserNotFound = errors.New("user not found")

// Store is the storage surface the evaluator reads and writes.
type Store interface {
	repository.StatsRepo
	repository.BadgeRepo
}

type Evaluator struct {
	store  Store
	logger *slog.Logger
}

func NewEvaluator(store Store, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{store: store, logger: logger}
}

// Progress is one badge as seen by a user.
type Progress struct {
	Badge    models.Badge `json:"badge"`
	Earned   bool         `json:"earned"`
	Current  int64        `json:"current"`
	Required int64        `json:"required"`
	Progress int          `json:"progress"`
}

// CheckAndAward grants every unearned badge whose rule now holds and returns
// the newly granted ones. Rewards feed back into the balance so point rules
// settle within one call. It never fails: errors are logged and yield nil.
func (e *Evaluator) CheckAndAward(ctx context.Context, userID int64) []models.Badge {
	stats, err := e.store.GetUserStatistics(ctx, userID)
	if err != nil {
		e.logger.Error("achievements: load statistics", "user_id", userID, "err", err)
		return nil
	}
	if stats == nil {
		e.logger.Warn("achievements: user not found", "user_id", userID)
		return nil
	}

	catalog, earned, err := e.load(ctx, userID)
	if err != nil {
		e.logger.Error("achievements: load badges", "user_id", userID, "err", err)
		return nil
	}

	var awarded []models.Badge
	for changed := true; changed; {
		changed = false
		for _, b := range catalog {
			if earned[b.ID] || !RuleOf(b).Satisfied(*stats) {
				continue
			}

			balance, err := e.store.InsertUserBadge(ctx, userID, b.ID, b.Points)
			if err != nil {
				// lost a race with a concurrent award, or storage failed
				e.logger.Warn("achievements: award badge", "user_id", userID, "badge", b.Name, "err", err)
				earned[b.ID] = true
				continue
			}

			earned[b.ID] = true
			stats.PointBalance = balance
			awarded = append(awarded, b)
			changed = true
			metrics.BadgesAwarded.WithLabelValues(b.Name).Inc()
			e.logger.Info("achievements: badge awarded", "user_id", userID, "badge", b.Name, "reward", b.Points, "balance", balance)
		}
	}

	return awarded
}

// Progress reports every badge for the user; earned badges always show 100.
func (e *Evaluator) Progress(ctx context.Context, userID int64) ([]Progress, error) {
	stats, err := e.store.GetUserStatistics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	if stats == nil {
		return nil, ErrUserNotFound
	}

	catalog, earned, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Progress, 0, len(catalog))
	for _, b := range catalog {
		rule := RuleOf(b)
		p := Progress{
			Badge:    b,
			Earned:   earned[b.ID],
			Current:  rule.Current(*stats),
			Required: rule.Threshold,
		}
		if p.Earned {
			p.Progress = 100
		} else {
			p.Progress = rule.Percent(*stats)
		}
		out = append(out, p)
	}
	return out, nil
}

func (e *Evaluator) load(ctx context.Context, userID int64) ([]models.Badge, map[int64]bool, error) {
	catalog, err := e.store.ListBadges(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list badges: %w", err)
	}
	owned, err := e.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list user badges: %w", err)
	}

	earned := make(map[int64]bool, len(owned))
	for _, ub := range owned {
		earned[ub.BadgeID] = true
	}
	return catalog, earned, nil
}
