// Package notify fans events out to live transports and records the durable
// subset for offline retrieval.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

type Type string

const (
	TypeQuestionNew       Type = "question-new"
	TypeAnswerNew         Type = "answer-new"
	TypeAnswerAccepted    Type = "answer-accepted"
	TypeVoteReceived      Type = "vote-received"
	TypeCommentNew        Type = "comment-new"
	TypeMention           Type = "mention"
	TypeBadge             Type = "badge"
	TypeMessage           Type = "message"
	TypeFollow            Type = "follow"
	TypePointsUpdate      Type = "points-update"
	TypeLeaderboardUpdate Type = "leaderboard-update"
	TypeHealth            Type = "health"
)

// Wire event names.
const (
	EventPointsUpdate      = "points:update"
	EventLeaderboardUpdate = "leaderboard:update"
	EventVoteUpdate        = "vote:update"
	EventAnswerNew         = "answer:new"
	EventCommentNew        = "comment:new"
	EventNotification      = "notification"
	EventOnlineCount       = "online:count"
	EventTypingStart       = "typing:start"
	EventTypingStop        = "typing:stop"
	EventHealth            = "health"
)

// Event is one discrete state change. TargetUserID 0 means broadcast.
type Event struct {
	Type         Type
	Name         string // overrides the wire name derived from Type
	Title        string
	Message      string
	Link         string
	Data         any
	TargetUserID int64
	Durable      bool
}

// Message is an encoded event ready for a transport.
type Message struct {
	Name         string          `json:"event"`
	Data         json.RawMessage `json:"data"`
	TargetUserID int64           `json:"-"`
}

func (m Message) Broadcast() bool {
	return m.TargetUserID == 0
}

// WireName is the event name clients listen for.
func (e Event) WireName() string {
	if e.Name != "" {
		return e.Name
	}
	switch e.Type {
	case TypePointsUpdate:
		return EventPointsUpdate
	case TypeLeaderboardUpdate:
		return EventLeaderboardUpdate
	case TypeHealth:
		return EventHealth
	}
	return EventNotification
}

type envelope struct {
	Type      Type   `json:"type"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Encode renders the event. Named state events carry Data as the payload;
// everything delivered as "notification" is wrapped with its type and text.
func (e Event) Encode() (Message, error) {
	name := e.WireName()

	var payload any = e.Data
	if name == EventNotification {
		payload = envelope{
			Type:      e.Type,
			Title:     e.Title,
			Message:   e.Message,
			Link:      e.Link,
			Data:      e.Data,
			Timestamp: time.Now().UnixMilli(),
		}
	}
	if payload == nil {
		payload = struct{}{}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s event: %w", name, err)
	}

	return Message{Name: name, Data: b, TargetUserID: e.TargetUserID}, nil
}

// Record converts the event into the row kept for offline retrieval.
func (e Event) Record() (*models.Notification, error) {
	n := &models.Notification{
		UserID:  e.TargetUserID,
		Type:    string(e.Type),
		Title:   e.Title,
		Message: e.Message,
		Link:    e.Link,
	}
	if e.Data != nil {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		n.Metadata = b
	}
	if n.Title == "" {
		n.Title = string(e.Type)
	}
	return n, nil
}
