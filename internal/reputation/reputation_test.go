package reputation_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbfs "github.com/MayankGitHub86/solvehub-sub000/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/achievements"
	"github.com/MayankGitHub86/solvehub-sub000/internal/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/internal/repository/sqlite"
	"github.com/MayankGitHub86/solvehub-sub000/internal/reputation"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository/mock"
)

type sink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *sink) Notify(ctx context.Context, ev notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *sink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *sink) named(name string) []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notify.Event
	for _, ev := range s.events {
		if ev.WireName() == name {
			out = append(out, ev)
		}
	}
	return out
}

func (s *sink) typed(t notify.Type) []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notify.Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	store *mock.Store
	svc   *reputation.Service
	sink  *sink
}

// newFixture runs without a badge evaluator so balances only reflect votes.
func newFixture(t *testing.T, withBadges bool) *fixture {
	t.Helper()
	store := mock.NewStore()
	s := &sink{}
	var badges reputation.BadgeChecker
	if withBadges {
		require.NoError(t, achievements.SeedCatalog(context.Background(), store))
		badges = achievements.NewEvaluator(store, nil)
	}
	return &fixture{store: store, svc: reputation.NewService(store, badges, s, nil), sink: s}
}

func (f *fixture) points(t *testing.T, userID int64) int64 {
	t.Helper()
	u, err := f.store.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Points
}

func (f *fixture) question(t *testing.T, author int64) int64 {
	t.Helper()
	id, err := f.store.CreateQuestion(context.Background(), &models.Question{AuthorID: author, Title: "q"})
	require.NoError(t, err)
	return id
}

func (f *fixture) answer(t *testing.T, questionID, author int64) int64 {
	t.Helper()
	id, err := f.store.CreateAnswer(context.Background(), &models.Answer{QuestionID: questionID, AuthorID: author, Body: "a"})
	require.NoError(t, err)
	return id
}

func onQuestion(actor, id int64, value int) reputation.CastRequest {
	return reputation.CastRequest{ActorID: actor, QuestionID: &id, Value: value}
}

func TestCast_FirstUpvoteThenToggle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	x := f.store.AddUser("x", 0)
	y := f.store.AddUser("y", 0)
	q := f.question(t, x)

	res, err := f.svc.Cast(ctx, onQuestion(y, q, 1))
	require.NoError(t, err)
	assert.Equal(t, reputation.ActionCreated, res.Action)
	assert.Equal(t, int64(1), res.NewTotal)
	assert.Equal(t, int64(5), res.AuthorPoints)
	assert.Equal(t, int64(5), f.points(t, x))

	received := f.sink.typed(notify.TypeVoteReceived)
	require.Len(t, received, 1)
	assert.Equal(t, x, received[0].TargetUserID)

	points := f.sink.named("points:update")
	require.Len(t, points, 1)
	assert.Zero(t, points[0].TargetUserID, "balance changes reach every client")
	assert.Equal(t, map[string]int64{"userId": x, "points": 5}, points[0].Data)

	board := f.sink.named("leaderboard:update")
	require.Len(t, board, 1)
	assert.Zero(t, board[0].TargetUserID)

	f.sink.reset()
	res, err = f.svc.Cast(ctx, onQuestion(y, q, 1))
	require.NoError(t, err)
	assert.Equal(t, reputation.ActionRemoved, res.Action)
	assert.Equal(t, int64(0), res.NewTotal)
	assert.Equal(t, int64(0), f.points(t, x))
	assert.Empty(t, f.sink.typed(notify.TypeVoteReceived), "retract is silent to the author")
	assert.Len(t, f.sink.named("points:update"), 1)
	assert.Len(t, f.sink.named("leaderboard:update"), 1)

	tallies := f.sink.named("vote:update")
	require.Len(t, tallies, 1)
	assert.Equal(t, int64(0), tallies[0].Data.(map[string]any)["score"])
	assert.Equal(t, 0, f.store.VoteCount())
}

func TestCast_FlipDelta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	author := f.store.AddUser("author", 0)
	voter := f.store.AddUser("voter", 0)
	q := f.question(t, author)
	a := f.answer(t, q, author)

	_, err := f.svc.Cast(ctx, reputation.CastRequest{ActorID: voter, AnswerID: &a, Value: 1})
	require.NoError(t, err)
	afterFirst := f.points(t, author)

	res, err := f.svc.Cast(ctx, reputation.CastRequest{ActorID: voter, AnswerID: &a, Value: -1})
	require.NoError(t, err)
	assert.Equal(t, reputation.ActionUpdated, res.Action)
	assert.Equal(t, afterFirst-2*reputation.Weight, f.points(t, author))
	assert.Equal(t, int64(0), res.Upvotes)
	assert.Equal(t, int64(1), res.Downvotes)
	assert.Len(t, f.sink.typed(notify.TypeVoteReceived), 2)
	assert.Equal(t, 1, f.store.VoteCount())
}

func TestCast_Symmetry(t *testing.T) {
	ctx := context.Background()
	for _, value := range []int{1, -1} {
		f := newFixture(t, false)
		author := f.store.AddUser("author", 40)
		voter := f.store.AddUser("voter", 0)
		q := f.question(t, author)

		_, err := f.svc.Cast(ctx, onQuestion(voter, q, value))
		require.NoError(t, err)
		_, err = f.svc.Cast(ctx, onQuestion(voter, q, value))
		require.NoError(t, err)
		assert.Equal(t, int64(40), f.points(t, author), "value %d", value)
	}
}

func TestCast_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	author := f.store.AddUser("author", 10)
	q := f.question(t, author)
	a := f.answer(t, q, author)
	missing := int64(999)
	zero := int64(0)

	tests := []struct {
		name string
		req  reputation.CastRequest
		want error
	}{
		{"no target", reputation.CastRequest{ActorID: 2, Value: 1}, reputation.ErrInvalidRequest},
		{"both targets", reputation.CastRequest{ActorID: 2, QuestionID: &q, AnswerID: &a, Value: 1}, reputation.ErrInvalidRequest},
		{"bad value", onQuestion(2, q, 2), reputation.ErrInvalidRequest},
		{"zero value", onQuestion(2, q, 0), reputation.ErrInvalidRequest},
		{"zero id", reputation.CastRequest{ActorID: 2, QuestionID: &zero, Value: 1}, reputation.ErrInvalidRequest},
		{"missing question", onQuestion(2, missing, 1), reputation.ErrNotFound},
		{"missing answer", reputation.CastRequest{ActorID: 2, AnswerID: &missing, Value: 1}, reputation.ErrNotFound},
		{"own question", onQuestion(author, q, 1), reputation.ErrForbidden},
		{"own answer", reputation.CastRequest{ActorID: author, AnswerID: &a, Value: -1}, reputation.ErrForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Cast(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Equal(t, int64(10), f.points(t, author))
	assert.Equal(t, 0, f.store.VoteCount())
	assert.Empty(t, f.sink.named("points:update"))
}

func TestCast_SequencesKeepOneVote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	author := f.store.AddUser("author", 0)
	voter := f.store.AddUser("voter", 0)
	q := f.question(t, author)

	seq := []int{1, 1, -1, -1, 1, -1, 1, 1, 1}
	for i, v := range seq {
		_, err := f.svc.Cast(ctx, onQuestion(voter, q, v))
		require.NoError(t, err)
		count := f.store.VoteCount()
		require.LessOrEqual(t, count, 1, "step %d", i)

		var want int64
		if count == 1 {
			vote, err := f.store.FindVote(ctx, voter, models.Target{Kind: models.TargetQuestion, ID: q})
			require.NoError(t, err)
			want = int64(vote.Value) * reputation.Weight
		}
		assert.Equal(t, want, f.points(t, author), "step %d", i)
	}
}

func TestCast_ConcurrentSameVoter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	author := f.store.AddUser("author", 0)
	voter := f.store.AddUser("voter", 0)
	q := f.question(t, author)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Cast(ctx, onQuestion(voter, q, 1))
		}()
	}
	wg.Wait()

	// 25 toggles leave exactly one upvote
	assert.Equal(t, 1, f.store.VoteCount())
	assert.Equal(t, int64(reputation.Weight), f.points(t, author))
}

func TestCast_UpvoteCanAwardVoterBadge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	voter := f.store.AddUser("voter", 0)

	for i := 0; i < 10; i++ {
		author := f.store.AddUser("author"+string(rune('a'+i)), 0)
		q := f.question(t, author)
		_, err := f.svc.Cast(ctx, onQuestion(voter, q, 1))
		require.NoError(t, err)
	}

	badges, err := f.store.ListUserBadges(ctx, voter)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, int64(10), f.points(t, voter), "Supporter reward")

	var voterBadge []notify.Event
	for _, ev := range f.sink.typed(notify.TypeBadge) {
		if ev.TargetUserID == voter {
			voterBadge = append(voterBadge, ev)
		}
	}
	assert.Len(t, voterBadge, 1)
}

func TestAcceptAnswer_ProblemSolver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	asker := f.store.AddUser("asker", 0)
	solver := f.store.AddUser("solver", 0)

	for i := 0; i < 9; i++ {
		a := f.answer(t, f.question(t, asker), solver)
		_, err := f.svc.AcceptAnswer(ctx, asker, a)
		require.NoError(t, err)
	}
	before := f.points(t, solver)

	a := f.answer(t, f.question(t, asker), solver)
	res, err := f.svc.AcceptAnswer(ctx, asker, a)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Len(t, res.Badges, 1)
	assert.Equal(t, achievements.BadgeProblemSolver, res.Badges[0].Name)
	assert.Equal(t, before+reputation.AcceptBonus+res.Badges[0].Points, f.points(t, solver))
	assert.Equal(t, f.points(t, solver), res.AuthorPoints)

	accepted := f.sink.typed(notify.TypeAnswerAccepted)
	require.Len(t, accepted, 10)
	assert.True(t, accepted[9].Durable)
	assert.Equal(t, solver, accepted[9].TargetUserID)
}

func TestAcceptAnswer_SwitchMovesBonus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	asker := f.store.AddUser("asker", 0)
	first := f.store.AddUser("first", 0)
	second := f.store.AddUser("second", 0)
	q := f.question(t, asker)
	a1 := f.answer(t, q, first)
	a2 := f.answer(t, q, second)

	_, err := f.svc.AcceptAnswer(ctx, asker, a1)
	require.NoError(t, err)
	assert.Equal(t, int64(reputation.AcceptBonus), f.points(t, first))

	res, err := f.svc.AcceptAnswer(ctx, asker, a1)
	require.NoError(t, err)
	assert.False(t, res.Changed, "accepting twice is a no-op")
	assert.Equal(t, int64(reputation.AcceptBonus), f.points(t, first))

	res, err = f.svc.AcceptAnswer(ctx, asker, a2)
	require.NoError(t, err)
	assert.Equal(t, a1, res.PreviousAnswerID)
	assert.Equal(t, int64(0), f.points(t, first))
	assert.Equal(t, int64(reputation.AcceptBonus), f.points(t, second))

	accepted, err := f.store.GetAcceptedAnswer(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, a2, accepted.ID)
}

func TestAcceptAnswer_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	asker := f.store.AddUser("asker", 0)
	other := f.store.AddUser("other", 0)
	q := f.question(t, asker)
	a := f.answer(t, q, other)

	_, err := f.svc.AcceptAnswer(ctx, other, a)
	assert.ErrorIs(t, err, reputation.ErrForbidden)
	_, err = f.svc.AcceptAnswer(ctx, asker, 999)
	assert.ErrorIs(t, err, reputation.ErrNotFound)
	_, err = f.svc.AcceptAnswer(ctx, asker, 0)
	assert.ErrorIs(t, err, reputation.ErrInvalidRequest)

	// self-answer: accepted but unpaid
	own := f.answer(t, q, asker)
	res, err := f.svc.AcceptAnswer(ctx, asker, own)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(0), f.points(t, asker))
}

func TestCast_SQLiteConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, db.Migrate(ctx, d, dbfs.Migrations))

	repo := sqlite.New(d, nil)
	var store repository.Store = repo
	svc := reputation.NewService(store, nil, nil, nil)

	author, err := repo.CreateUser(ctx, &models.User{Name: "author", Email: "author@example.com"})
	require.NoError(t, err)
	voter, err := repo.CreateUser(ctx, &models.User{Name: "voter", Email: "voter@example.com"})
	require.NoError(t, err)
	q, err := repo.CreateQuestion(ctx, &models.Question{AuthorID: author, Title: "q"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Cast(ctx, onQuestion(voter, q, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	vote, err := repo.FindVote(ctx, voter, models.Target{Kind: models.TargetQuestion, ID: q})
	require.NoError(t, err)
	assert.Nil(t, vote, "an even number of toggles leaves no vote")

	u, err := repo.GetByID(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Points)
}
