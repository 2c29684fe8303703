package mock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// Store is an in-memory repository.Store for tests. InTx serializes callers and
// restores the previous state when fn returns an error.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	// Injected failures.
	StatsErr        error
	NotificationErr error
	BadgeErr        error
	UserErr         error
}

var _ repository.Store = (*Store)(nil)
var _ repository.LedgerTx = (*Store)(nil)

type savedKey struct{ user, question int64 }

type state struct {
	nextID        int64
	users         map[int64]models.User
	questions     map[int64]models.Question
	answers       map[int64]models.Answer
	comments      []models.Comment
	saved         map[savedKey]bool
	votes         map[int64]models.Vote
	badges        []models.Badge
	userBadges    []models.UserBadge
	notifications map[int64]models.Notification
}

func (s state) clone() state {
	c := s
	c.users = make(map[int64]models.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.questions = make(map[int64]models.Question, len(s.questions))
	for k, v := range s.questions {
		c.questions[k] = v
	}
	c.answers = make(map[int64]models.Answer, len(s.answers))
	for k, v := range s.answers {
		c.answers[k] = v
	}
	c.comments = append([]models.Comment(nil), s.comments...)
	c.saved = make(map[savedKey]bool, len(s.saved))
	for k, v := range s.saved {
		c.saved[k] = v
	}
	c.votes = make(map[int64]models.Vote, len(s.votes))
	for k, v := range s.votes {
		c.votes[k] = v
	}
	c.badges = append([]models.Badge(nil), s.badges...)
	c.userBadges = append([]models.UserBadge(nil), s.userBadges...)
	c.notifications = make(map[int64]models.Notification, len(s.notifications))
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	return c
}

func NewStore() *Store {
	return &Store{st: state{}.clone()}
}

func (m *Store) id() int64 {
	m.st.nextID++
	return m.st.nextID
}

func (m *Store) InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// Users

func (m *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UserErr != nil {
		return 0, m.UserErr
	}
	for _, existing := range m.st.users {
		if existing.Email == u.Email {
			return 0, errors.New("UNIQUE constraint failed: users.email")
		}
	}
	c := *u
	c.ID = m.id()
	c.Updated = time.Now().UnixMilli()
	m.st.users[c.ID] = c
	return c.ID, nil
}

// AddUser is a test shortcut that creates a user with a starting balance.
func (m *Store) AddUser(name string, points int64) int64 {
	id, _ := m.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com", Points: points})
	return id
}

func (m *Store) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	u, ok := m.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	for _, u := range m.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Store) TopByPoints(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LeaderboardEntry, 0, len(m.st.users))
	for _, u := range m.st.users {
		out = append(out, models.LeaderboardEntry{UserID: u.ID, Name: u.Name, Points: u.Points})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Store) IncrementPoints(ctx context.Context, userID, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incrementLocked(userID, delta)
}

func (m *Store) incrementLocked(userID, delta int64) (int64, error) {
	u, ok := m.st.users[userID]
	if !ok {
		return 0, fmt.Errorf("increment points: user %d not found", userID)
	}
	u.Points += delta
	m.st.users[userID] = u
	return u.Points, nil
}

// Content

func (m *Store) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.users[q.AuthorID]; !ok {
		return 0, errors.New("FOREIGN KEY constraint failed")
	}
	c := *q
	c.ID = m.id()
	c.Created = time.Now().UnixMilli()
	m.st.questions[c.ID] = c
	return c.ID, nil
}

func (m *Store) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.st.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (m *Store) CreateAnswer(ctx context.Context, a *models.Answer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.questions[a.QuestionID]; !ok {
		return 0, errors.New("FOREIGN KEY constraint failed")
	}
	c := *a
	c.ID = m.id()
	c.Created = time.Now().UnixMilli()
	m.st.answers[c.ID] = c
	return c.ID, nil
}

func (m *Store) GetAnswer(ctx context.Context, id int64) (*models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.st.answers[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Store) GetAcceptedAnswer(ctx context.Context, questionID int64) (*models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.st.answers {
		if a.QuestionID == questionID && a.IsAccepted {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *Store) SetAccepted(ctx context.Context, answerID int64, accepted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.st.answers[answerID]
	if !ok {
		return fmt.Errorf("answer %d not found", answerID)
	}
	a.IsAccepted = accepted
	m.st.answers[answerID] = a
	return nil
}

func (m *Store) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	if (c.QuestionID == nil) == (c.AnswerID == nil) {
		return 0, errors.New("CHECK constraint failed: comments")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := *c
	cc.ID = m.id()
	cc.Created = time.Now().UnixMilli()
	m.st.comments = append(m.st.comments, cc)
	return cc.ID, nil
}

func (m *Store) SaveQuestion(ctx context.Context, userID, questionID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := savedKey{userID, questionID}
	if m.st.saved[k] {
		return false, nil
	}
	m.st.saved[k] = true
	return true, nil
}

// Votes

func (m *Store) TargetAuthor(ctx context.Context, t models.Target) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch t.Kind {
	case models.TargetQuestion:
		return m.st.questions[t.ID].AuthorID, nil
	case models.TargetAnswer:
		return m.st.answers[t.ID].AuthorID, nil
	}
	return 0, fmt.Errorf("unknown target kind %q", t.Kind)
}

func matches(v models.Vote, t models.Target) bool {
	switch t.Kind {
	case models.TargetQuestion:
		return v.QuestionID != nil && *v.QuestionID == t.ID
	case models.TargetAnswer:
		return v.AnswerID != nil && *v.AnswerID == t.ID
	}
	return false
}

func (m *Store) FindVote(ctx context.Context, userID int64, t models.Target) (*models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.st.votes {
		if v.UserID == userID && matches(v, t) {
			return &v, nil
		}
	}
	return nil, nil
}

func (m *Store) CreateVote(ctx context.Context, v *models.Vote) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.Value != 1 && v.Value != -1 {
		return 0, errors.New("CHECK constraint failed: votes.value")
	}
	for _, existing := range m.st.votes {
		if existing.UserID != v.UserID {
			continue
		}
		if (v.QuestionID != nil && existing.QuestionID != nil && *v.QuestionID == *existing.QuestionID) ||
			(v.AnswerID != nil && existing.AnswerID != nil && *v.AnswerID == *existing.AnswerID) {
			return 0, errors.New("UNIQUE constraint failed: votes")
		}
	}
	c := *v
	c.ID = m.id()
	c.Created = time.Now().UnixMilli()
	c.Updated = c.Created
	m.st.votes[c.ID] = c
	return c.ID, nil
}

func (m *Store) UpdateVoteValue(ctx context.Context, id int64, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.st.votes[id]
	if !ok {
		return fmt.Errorf("vote %d not found", id)
	}
	v.Value = value
	v.Updated = time.Now().UnixMilli()
	m.st.votes[id] = v
	return nil
}

func (m *Store) DeleteVote(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.st.votes, id)
	return nil
}

func (m *Store) VoteTally(ctx context.Context, t models.Target) (models.Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tally models.Tally
	for _, v := range m.st.votes {
		if !matches(v, t) {
			continue
		}
		if v.Value > 0 {
			tally.Upvotes++
		} else {
			tally.Downvotes++
		}
	}
	return tally, nil
}

// VoteCount reports how many vote rows exist.
func (m *Store) VoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.votes)
}

// Badges

func (m *Store) UpsertBadge(ctx context.Context, b *models.Badge) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.st.badges {
		if existing.Name == b.Name {
			c := *b
			c.ID = existing.ID
			m.st.badges[i] = c
			return c.ID, nil
		}
	}
	c := *b
	c.ID = m.id()
	m.st.badges = append(m.st.badges, c)
	return c.ID, nil
}

func (m *Store) ListBadges(ctx context.Context) ([]models.Badge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BadgeErr != nil {
		return nil, m.BadgeErr
	}
	return append([]models.Badge(nil), m.st.badges...), nil
}

func (m *Store) ListUserBadges(ctx context.Context, userID int64) ([]models.UserBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BadgeErr != nil {
		return nil, m.BadgeErr
	}
	var out []models.UserBadge
	for _, ub := range m.st.userBadges {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out, nil
}

func (m *Store) InsertUserBadge(ctx context.Context, userID, badgeID, reward int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ub := range m.st.userBadges {
		if ub.UserID == userID && ub.BadgeID == badgeID {
			return 0, errors.New("UNIQUE constraint failed: user_badges")
		}
	}
	balance, err := m.incrementLocked(userID, reward)
	if err != nil {
		return 0, err
	}
	m.st.userBadges = append(m.st.userBadges, models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: time.Now().UnixMilli()})
	return balance, nil
}

// Statistics

func (m *Store) GetUserStatistics(ctx context.Context, userID int64) (*models.UserStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	u, ok := m.st.users[userID]
	if !ok {
		return nil, nil
	}

	s := &models.UserStatistics{PointBalance: u.Points}
	for _, q := range m.st.questions {
		if q.AuthorID == userID {
			s.QuestionCount++
		}
	}
	for _, a := range m.st.answers {
		if a.AuthorID != userID {
			continue
		}
		s.AnswerCount++
		if a.IsAccepted {
			s.AcceptedAnswerCount++
		}
	}
	for _, v := range m.st.votes {
		if v.UserID == userID && v.Value > 0 {
			s.PositiveVotesCast++
		}
		if v.AnswerID != nil && v.Value > 0 && m.st.answers[*v.AnswerID].AuthorID == userID {
			s.UpvotesReceived++
		}
	}
	for k := range m.st.saved {
		if k.user == userID {
			s.SavedCount++
		}
	}
	for _, c := range m.st.comments {
		if c.AuthorID == userID {
			s.CommentCount++
		}
	}
	return s, nil
}

// Notifications

func (m *Store) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NotificationErr != nil {
		return 0, m.NotificationErr
	}
	c := *n
	c.ID = m.id()
	c.Created = time.Now().UnixMilli()
	m.st.notifications[c.ID] = c
	return c.ID, nil
}

func (m *Store) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NotificationErr != nil {
		return nil, m.NotificationErr
	}
	var out []models.Notification
	for _, n := range m.st.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Store) CountUnread(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.st.notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, nil
}

func (m *Store) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.st.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	m.st.notifications[id] = n
	return true, nil
}

func (m *Store) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, n := range m.st.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			m.st.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (m *Store) DeleteNotification(ctx context.Context, userID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.st.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(m.st.notifications, id)
	return true, nil
}
