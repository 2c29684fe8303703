package models

import (
	"encoding/json"
	"time"
)

// Domain models matching the database schema in db/migrations/0001_init.sql

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Points       int64  `json:"points" db:"points"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"-" db:"password_hash"`
}

type Question struct {
	ID       int64  `json:"id" db:"id"`
	AuthorID int64  `json:"author_id" db:"author_id"`
	Title    string `json:"title" db:"title"`
	Body     string `json:"body" db:"body"`
	Created  int64  `json:"created" db:"created"`
}

type Answer struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"question_id" db:"question_id"`
	AuthorID   int64  `json:"author_id" db:"author_id"`
	Body       string `json:"body" db:"body"`
	IsAccepted bool   `json:"is_accepted" db:"is_accepted"`
	Created    int64  `json:"created" db:"created"`
}

type Comment struct {
	ID         int64  `json:"id" db:"id"`
	AuthorID   int64  `json:"author_id" db:"author_id"`
	QuestionID *int64 `json:"question_id,omitempty" db:"question_id"`
	AnswerID   *int64 `json:"answer_id,omitempty" db:"answer_id"`
	Body       string `json:"body" db:"body"`
	Created    int64  `json:"created" db:"created"`
}

// TargetKind names the kind of content a vote points at.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
)

// Target identifies a single votable item.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int64      `json:"id"`
}

func (t Target) Valid() bool {
	return (t.Kind == TargetQuestion || t.Kind == TargetAnswer) && t.ID > 0
}

type Vote struct {
	ID         int64  `json:"id" db:"id"`
	UserID     int64  `json:"user_id" db:"user_id"`
	QuestionID *int64 `json:"question_id,omitempty" db:"question_id"`
	AnswerID   *int64 `json:"answer_id,omitempty" db:"answer_id"`
	Value      int    `json:"value" db:"value"`
	Created    int64  `json:"created" db:"created"`
	Updated    int64  `json:"updated" db:"updated"`
}

// Tally is the aggregate of the votes currently stored for one target.
type Tally struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// Score is the net vote value of the target.
func (t Tally) Score() int64 {
	return t.Upvotes - t.Downvotes
}

// RuleKind is the statistic a badge threshold is measured against.
type RuleKind string

const (
	RuleQuestionCount     RuleKind = "question_count"
	RuleAnswerCount       RuleKind = "answer_count"
	RuleAcceptedAnswers   RuleKind = "accepted_answers"
	RuleUpvotesReceived   RuleKind = "upvotes_received"
	RuleSavedQuestions    RuleKind = "saved_questions"
	RuleCommentCount      RuleKind = "comment_count"
	RulePositiveVotesCast RuleKind = "positive_votes_cast"
	RulePointBalance      RuleKind = "point_balance"
)

type Badge struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Icon        string   `json:"icon" db:"icon"`
	Points      int64    `json:"points" db:"points"`
	Category    string   `json:"category" db:"category"`
	RuleKind    RuleKind `json:"rule_kind" db:"rule_kind"`
	Threshold   int64    `json:"threshold" db:"threshold"`
}

type UserBadge struct {
	UserID   int64 `json:"user_id" db:"user_id"`
	BadgeID  int64 `json:"badge_id" db:"badge_id"`
	EarnedAt int64 `json:"earned_at" db:"earned_at"`
}

// UserStatistics is a point-in-time snapshot of the counters badge rules read.
type UserStatistics struct {
	QuestionCount       int64 `json:"question_count"`
	AnswerCount         int64 `json:"answer_count"`
	AcceptedAnswerCount int64 `json:"accepted_answer_count"`
	UpvotesReceived     int64 `json:"upvotes_received"`
	SavedCount          int64 `json:"saved_count"`
	CommentCount        int64 `json:"comment_count"`
	PositiveVotesCast   int64 `json:"positive_votes_cast"`
	PointBalance        int64 `json:"point_balance"`
}

// Notification is the durable record kept for offline retrieval.
type Notification struct {
	ID       int64           `json:"id" db:"id"`
	UserID   int64           `json:"user_id" db:"user_id"`
	Type     string          `json:"type" db:"type"`
	Title    string          `json:"title" db:"title"`
	Message  string          `json:"message" db:"message"`
	Link     string          `json:"link,omitempty" db:"link"`
	Metadata json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	Read     bool            `json:"read" db:"read"`
	Created  int64           `json:"created" db:"created"`
}

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}
