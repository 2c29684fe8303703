// Package reputation owns every change to a user's point balance: votes,
// accepted answers, and the badge rewards they trigger.
package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

const (
	// Weight is the point value of one vote.
	Weight = 5
	// AcceptBonus is credited to the author of an accepted answer.
	AcceptBonus = 15
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
)

// Notifier is satisfied by notify.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event)
}

// BadgeChecker is satisfied by achievements.Evaluator.
type BadgeChecker interface {
	CheckAndAward(ctx context.Context, userID int64) []models.Badge
}

type Service struct {
	store    repository.Store
	badges   BadgeChecker
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store repository.Store, badges BadgeChecker, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, badges: badges, notifier: notifier, logger: logger}
}

// Reward runs the badge check for userID and announces anything granted,
// followed by the user's refreshed balance.
func (s *Service) Reward(ctx context.Context, userID int64) []models.Badge {
	awarded := s.checkBadges(ctx, userID)
	if len(awarded) > 0 {
		if points, ok := s.balance(ctx, userID); ok {
			s.announceBalance(ctx, userID, points)
		}
	}
	return awarded
}

// checkBadges awards and notifies badges without touching balance events.
func (s *Service) checkBadges(ctx context.Context, userID int64) []models.Badge {
	if s.badges == nil {
		return nil
	}
	awarded := s.badges.CheckAndAward(ctx, userID)
	for _, b := range awarded {
		s.notify(ctx, notify.Event{
			Type:         notify.TypeBadge,
			TargetUserID: userID,
			Title:        "Badge earned",
			Message:      fmt.Sprintf("You earned the %s badge (+%d points)", b.Name, b.Points),
			Link:         "/badges",
			Data:         map[string]any{"badgeId": b.ID, "name": b.Name, "icon": b.Icon, "points": b.Points},
		})
	}
	return awarded
}

func (s *Service) balance(ctx context.Context, userID int64) (int64, bool) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil || u == nil {
		s.logger.Warn("reputation: reload balance", "user_id", userID, "err", err)
		return 0, false
	}
	return u.Points, true
}

// announceBalance broadcasts the user's absolute balance and the ranking
// change. Clients match points:update on userId.
func (s *Service) announceBalance(ctx context.Context, userID, points int64) {
	data := map[string]int64{"userId": userID, "points": points}
	s.notify(ctx, notify.Event{Type: notify.TypePointsUpdate, Data: data})
	s.notify(ctx, notify.Event{Type: notify.TypeLeaderboardUpdate, Data: data})
}

func (s *Service) notify(ctx context.Context, ev notify.Event) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, ev)
	}
}
