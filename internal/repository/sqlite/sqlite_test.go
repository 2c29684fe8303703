package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	dbfs "github.com/MayankGitHub86/solvehub-sub000/db"
	dbpkg "github.com/MayankGitHub86/solvehub-sub000/internal/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/jobs"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	sqlite "github.com/MayankGitHub86/solvehub-sub000/internal/repository/sqlite"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "repo.db"), nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func mustUser(t *testing.T, repo *sqlite.SQLiteRepo, name string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	return id
}

func mustQuestion(t *testing.T, repo *sqlite.SQLiteRepo, author int64) int64 {
	t.Helper()
	id, err := repo.CreateQuestion(context.Background(), &models.Question{AuthorID: author, Title: "How?", Body: "..."})
	if err != nil {
		t.Fatalf("CreateQuestion error: %v", err)
	}
	return id
}

func TestUserCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	got, err := repo.GetByID(ctx, 9999)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing user, got %#v, %v", got, err)
	}

	id := mustUser(t, repo, "alice")

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if byEmail == nil || byEmail.ID != id || byEmail.PasswordHash != "h" {
		t.Fatalf("GetByEmail wrong result: %#v", byEmail)
	}

	if _, err := repo.CreateUser(ctx, &models.User{Name: "dup", Email: "alice@example.com"}); err == nil {
		t.Fatalf("expected unique email violation")
	}
}

func TestIncrementPoints(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	id := mustUser(t, repo, "bob")

	bal, err := repo.IncrementPoints(ctx, id, 5)
	if err != nil {
		t.Fatalf("IncrementPoints error: %v", err)
	}
	if bal != 5 {
		t.Fatalf("expected balance 5, got %d", bal)
	}

	bal, err = repo.IncrementPoints(ctx, id, -10)
	if err != nil {
		t.Fatalf("IncrementPoints error: %v", err)
	}
	if bal != -5 {
		t.Fatalf("expected balance -5, got %d", bal)
	}

	if _, err := repo.IncrementPoints(ctx, 9999, 1); err == nil {
		t.Fatalf("expected error for missing user")
	}

	other := mustUser(t, repo, "carol")
	if _, err := repo.IncrementPoints(ctx, other, 20); err != nil {
		t.Fatalf("IncrementPoints error: %v", err)
	}
	top, err := repo.TopByPoints(ctx, 10)
	if err != nil {
		t.Fatalf("TopByPoints error: %v", err)
	}
	if len(top) != 2 || top[0].UserID != other || top[0].Points != 20 {
		t.Fatalf("unexpected leaderboard: %#v", top)
	}
}

func TestVoteLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	author := mustUser(t, repo, "author")
	voter := mustUser(t, repo, "voter")
	qid := mustQuestion(t, repo, author)
	target := models.Target{Kind: models.TargetQuestion, ID: qid}

	got, err := repo.TargetAuthor(ctx, target)
	if err != nil || got != author {
		t.Fatalf("TargetAuthor: got %d, %v", got, err)
	}
	missing, err := repo.TargetAuthor(ctx, models.Target{Kind: models.TargetAnswer, ID: 404})
	if err != nil || missing != 0 {
		t.Fatalf("expected 0 author for missing answer, got %d, %v", missing, err)
	}

	if v, err := repo.FindVote(ctx, voter, target); err != nil || v != nil {
		t.Fatalf("expected no vote, got %#v, %v", v, err)
	}

	vid, err := repo.CreateVote(ctx, &models.Vote{UserID: voter, QuestionID: &qid, Value: 1})
	if err != nil {
		t.Fatalf("CreateVote error: %v", err)
	}

	v, err := repo.FindVote(ctx, voter, target)
	if err != nil || v == nil || v.ID != vid || v.Value != 1 || v.QuestionID == nil || *v.QuestionID != qid {
		t.Fatalf("FindVote wrong result: %#v, %v", v, err)
	}

	tally, err := repo.VoteTally(ctx, target)
	if err != nil || tally.Upvotes != 1 || tally.Downvotes != 0 {
		t.Fatalf("unexpected tally %#v, %v", tally, err)
	}

	if err := repo.UpdateVoteValue(ctx, vid, -1); err != nil {
		t.Fatalf("UpdateVoteValue error: %v", err)
	}
	tally, _ = repo.VoteTally(ctx, target)
	if tally.Score() != -1 {
		t.Fatalf("expected score -1 after flip, got %d", tally.Score())
	}

	if err := repo.DeleteVote(ctx, vid); err != nil {
		t.Fatalf("DeleteVote error: %v", err)
	}
	if v, _ := repo.FindVote(ctx, voter, target); v != nil {
		t.Fatalf("expected vote removed, got %#v", v)
	}
}

func TestInTx_RollsBack(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	id := mustUser(t, repo, "dave")

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx repository.LedgerTx) error {
		if _, err := tx.IncrementPoints(ctx, id, 50); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	u, _ := repo.GetByID(ctx, id)
	if u.Points != 0 {
		t.Fatalf("expected rollback to keep points at 0, got %d", u.Points)
	}
}

func TestBadges(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "erin")

	b := &models.Badge{Name: "First Question", Description: "d", Icon: "i", Points: 10, Category: "participation", RuleKind: models.RuleQuestionCount, Threshold: 1}
	id, err := repo.UpsertBadge(ctx, b)
	if err != nil {
		t.Fatalf("UpsertBadge error: %v", err)
	}
	b.Points = 15
	id2, err := repo.UpsertBadge(ctx, b)
	if err != nil || id2 != id {
		t.Fatalf("expected upsert to keep id %d, got %d, %v", id, id2, err)
	}

	all, err := repo.ListBadges(ctx)
	if err != nil || len(all) != 1 || all[0].Points != 15 || all[0].RuleKind != models.RuleQuestionCount {
		t.Fatalf("unexpected badges %#v, %v", all, err)
	}

	bal, err := repo.InsertUserBadge(ctx, uid, id, 15)
	if err != nil || bal != 15 {
		t.Fatalf("InsertUserBadge: balance %d, %v", bal, err)
	}
	if _, err := repo.InsertUserBadge(ctx, uid, id, 15); err == nil {
		t.Fatalf("expected duplicate user badge to fail")
	}

	u, _ := repo.GetByID(ctx, uid)
	if u.Points != 15 {
		t.Fatalf("failed duplicate award must not change balance, got %d", u.Points)
	}

	ubs, err := repo.ListUserBadges(ctx, uid)
	if err != nil || len(ubs) != 1 || ubs[0].BadgeID != id {
		t.Fatalf("unexpected user badges %#v, %v", ubs, err)
	}
}

func TestGetUserStatistics(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	asker := mustUser(t, repo, "asker")
	helper := mustUser(t, repo, "helper")

	qid := mustQuestion(t, repo, asker)
	aid, err := repo.CreateAnswer(ctx, &models.Answer{QuestionID: qid, AuthorID: helper, Body: "try this"})
	if err != nil {
		t.Fatalf("CreateAnswer error: %v", err)
	}
	if err := repo.SetAccepted(ctx, aid, true); err != nil {
		t.Fatalf("SetAccepted error: %v", err)
	}
	if _, err := repo.CreateVote(ctx, &models.Vote{UserID: asker, AnswerID: &aid, Value: 1}); err != nil {
		t.Fatalf("CreateVote error: %v", err)
	}
	if _, err := repo.CreateComment(ctx, &models.Comment{AuthorID: helper, QuestionID: &qid, Body: "c"}); err != nil {
		t.Fatalf("CreateComment error: %v", err)
	}
	if _, err := repo.CreateComment(ctx, &models.Comment{AuthorID: helper, Body: "orphan"}); err == nil {
		t.Fatalf("expected comment without target to fail")
	}
	saved, err := repo.SaveQuestion(ctx, helper, qid)
	if err != nil || !saved {
		t.Fatalf("SaveQuestion: %v, %v", saved, err)
	}
	saved, _ = repo.SaveQuestion(ctx, helper, qid)
	if saved {
		t.Fatalf("second save must report false")
	}

	accepted, err := repo.GetAcceptedAnswer(ctx, qid)
	if err != nil || accepted == nil || accepted.ID != aid || !accepted.IsAccepted {
		t.Fatalf("GetAcceptedAnswer: %#v, %v", accepted, err)
	}

	s, err := repo.GetUserStatistics(ctx, helper)
	if err != nil || s == nil {
		t.Fatalf("GetUserStatistics: %#v, %v", s, err)
	}
	want := models.UserStatistics{AnswerCount: 1, AcceptedAnswerCount: 1, UpvotesReceived: 1, SavedCount: 1, CommentCount: 1}
	if *s != want {
		t.Fatalf("unexpected stats: got %#v want %#v", *s, want)
	}

	s, _ = repo.GetUserStatistics(ctx, asker)
	if s.QuestionCount != 1 || s.PositiveVotesCast != 1 {
		t.Fatalf("unexpected asker stats: %#v", s)
	}

	if s, err := repo.GetUserStatistics(ctx, 404); err != nil || s != nil {
		t.Fatalf("expected nil stats for missing user, got %#v, %v", s, err)
	}
}

func TestNotifications(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "frank")
	other := mustUser(t, repo, "gina")

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateNotification(ctx, &models.Notification{UserID: uid, Type: "message", Title: "New message", Message: "hi", Metadata: []byte(`{"from":2}`)}); err != nil {
			t.Fatalf("CreateNotification error: %v", err)
		}
	}

	list, err := repo.ListNotifications(ctx, uid, false, 10, 0)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListNotifications: %d, %v", len(list), err)
	}
	if string(list[0].Metadata) != `{"from":2}` {
		t.Fatalf("metadata not preserved: %s", list[0].Metadata)
	}

	ok, err := repo.MarkRead(ctx, other, list[0].ID)
	if err != nil || ok {
		t.Fatalf("another user must not mark the notification read")
	}
	ok, err = repo.MarkRead(ctx, uid, list[0].ID)
	if err != nil || !ok {
		t.Fatalf("MarkRead: %v, %v", ok, err)
	}

	unread, _ := repo.CountUnread(ctx, uid)
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}
	onlyUnread, _ := repo.ListNotifications(ctx, uid, true, 10, 0)
	if len(onlyUnread) != 2 {
		t.Fatalf("expected 2 unread rows, got %d", len(onlyUnread))
	}

	n, err := repo.MarkAllRead(ctx, uid)
	if err != nil || n != 2 {
		t.Fatalf("MarkAllRead: %d, %v", n, err)
	}

	deleted, err := repo.DeleteNotification(ctx, uid, list[1].ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteNotification: %v, %v", deleted, err)
	}
	list, _ = repo.ListNotifications(ctx, uid, false, 10, 0)
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications after delete, got %d", len(list))
	}
}

func TestJobQueue(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if j, err := repo.FetchNext(ctx); err != nil || j != nil {
		t.Fatalf("expected empty queue, got %#v, %v", j, err)
	}

	id, err := repo.Enqueue(ctx, &models.BackgroundJob{Type: "notification.persist", Payload: []byte(`{"user_id":1}`), Priority: 10})
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	j, err := repo.FetchNext(ctx)
	if err != nil || j == nil || j.ID != id || j.Status != jobs.StatusRunning || j.MaxAttempts != 5 {
		t.Fatalf("FetchNext: %#v, %v", j, err)
	}
	if again, _ := repo.FetchNext(ctx); again != nil {
		t.Fatalf("claimed job must not be fetched twice")
	}

	// a job scheduled for retry is claimable again
	j.Status = jobs.StatusRetry
	j.Attempts = 1
	if err := repo.UpdateJob(ctx, j); err != nil {
		t.Fatalf("UpdateJob error: %v", err)
	}
	retried, err := repo.FetchNext(ctx)
	if err != nil || retried == nil || retried.ID != id || retried.Status != jobs.StatusRunning {
		t.Fatalf("FetchNext after retry: %#v, %v", retried, err)
	}

	j.Attempts = 5
	j.LastError = "boom"
	if err := repo.MoveToDeadLetter(ctx, j); err != nil {
		t.Fatalf("MoveToDeadLetter error: %v", err)
	}
	n, err := repo.CountDeadLetters(ctx, "notification.persist")
	if err != nil || n != 1 {
		t.Fatalf("CountDeadLetters: %d, %v", n, err)
	}
}
