package repository

import (
	"context"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups return (nil, nil) when the row does not exist.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	TopByPoints(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// PointsRepo is the only write path for a user's point balance.
type PointsRepo interface {
	// IncrementPoints atomically adds delta (which may be negative) and returns the new balance.
	IncrementPoints(ctx context.Context, userID, delta int64) (int64, error)
}

type ContentRepo interface {
	CreateQuestion(ctx context.Context, q *models.Question) (int64, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	CreateAnswer(ctx context.Context, a *models.Answer) (int64, error)
	GetAnswer(ctx context.Context, id int64) (*models.Answer, error)
	GetAcceptedAnswer(ctx context.Context, questionID int64) (*models.Answer, error)
	SetAccepted(ctx context.Context, answerID int64, accepted bool) error
	CreateComment(ctx context.Context, c *models.Comment) (int64, error)
	// SaveQuestion bookmarks a question; it reports false when it was already saved.
	SaveQuestion(ctx context.Context, userID, questionID int64) (bool, error)
}

type VoteRepo interface {
	// TargetAuthor returns the author of the question or answer, or 0 when it does not exist.
	TargetAuthor(ctx context.Context, t models.Target) (int64, error)
	FindVote(ctx context.Context, userID int64, t models.Target) (*models.Vote, error)
	CreateVote(ctx context.Context, v *models.Vote) (int64, error)
	UpdateVoteValue(ctx context.Context, id int64, value int) error
	DeleteVote(ctx context.Context, id int64) error
	VoteTally(ctx context.Context, t models.Target) (models.Tally, error)
}

type BadgeRepo interface {
	UpsertBadge(ctx context.Context, b *models.Badge) (int64, error)
	ListBadges(ctx context.Context) ([]models.Badge, error)
	ListUserBadges(ctx context.Context, userID int64) ([]models.UserBadge, error)
	// InsertUserBadge records the award and adds reward to the user's balance in one
	// transaction, returning the new balance.
	InsertUserBadge(ctx context.Context, userID, badgeID, reward int64) (int64, error)
}

type StatsRepo interface {
	// GetUserStatistics recomputes the counters from source rows; nil when the user is missing.
	GetUserStatistics(ctx context.Context, userID int64) (*models.UserStatistics, error)
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	DeleteNotification(ctx context.Context, userID, id int64) (bool, error)
}

// LedgerTx is the store surface available inside a ledger transaction.
type LedgerTx interface {
	VoteRepo
	PointsRepo
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	GetAnswer(ctx context.Context, id int64) (*models.Answer, error)
	GetAcceptedAnswer(ctx context.Context, questionID int64) (*models.Answer, error)
	SetAccepted(ctx context.Context, answerID int64, accepted bool) error
}

// Ledger serializes read-check-write sequences on votes and balances.
type Ledger interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// Store is everything the service layer needs from storage.
type Store interface {
	UserRepo
	PointsRepo
	ContentRepo
	VoteRepo
	BadgeRepo
	StatsRepo
	NotificationRepo
	Ledger
}

// JobQueue persists background jobs for the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
}
