package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

// targetColumn maps a vote target to the votes column that references it.
func targetColumn(t models.Target) (string, error) {
	switch t.Kind {
	case models.TargetQuestion:
		return "question_id", nil
	case models.TargetAnswer:
		return "answer_id", nil
	default:
		return "", fmt.Errorf("unknown vote target kind %q", t.Kind)
	}
}

func (r *SQLiteRepo) TargetAuthor(ctx context.Context, t models.Target) (int64, error) {
	var query string
	switch t.Kind {
	case models.TargetQuestion:
		query = `SELECT author_id FROM questions WHERE id = ?`
	case models.TargetAnswer:
		query = `SELECT author_id FROM answers WHERE id = ?`
	default:
		return 0, fmt.Errorf("unknown vote target kind %q", t.Kind)
	}

	var author int64
	if err := r.q.QueryRowContext(ctx, query, t.ID).Scan(&author); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return author, nil
}

func (r *SQLiteRepo) FindVote(ctx context.Context, userID int64, t models.Target) (*models.Vote, error) {
	col, err := targetColumn(t)
	if err != nil {
		return nil, err
	}

	row := r.q.QueryRowContext(ctx, `SELECT id, user_id, question_id, answer_id, value, created, updated FROM votes WHERE user_id = ? AND `+col+` = ?`, userID, t.ID)
	var v models.Vote
	var qid, aid sql.NullInt64
	if err := row.Scan(&v.ID, &v.UserID, &qid, &aid, &v.Value, &v.Created, &v.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	v.QuestionID = ptrInt(qid)
	v.AnswerID = ptrInt(aid)

	return &v, nil
}

func (r *SQLiteRepo) CreateVote(ctx context.Context, v *models.Vote) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("vote is nil")
	}

	ts := now()
	res, err := r.q.ExecContext(ctx, `INSERT INTO votes (user_id, question_id, answer_id, value, created, updated) VALUES (?, ?, ?, ?, ?, ?)`, v.UserID, nullInt(v.QuestionID), nullInt(v.AnswerID), v.Value, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) UpdateVoteValue(ctx context.Context, id int64, value int) error {
	_, err := r.q.ExecContext(ctx, `UPDATE votes SET value = ?, updated = ? WHERE id = ?`, value, now(), id)
	return err
}

func (r *SQLiteRepo) DeleteVote(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) VoteTally(ctx context.Context, t models.Target) (models.Tally, error) {
	col, err := targetColumn(t)
	if err != nil {
		return models.Tally{}, err
	}

	var tally models.Tally
	row := r.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(CASE WHEN value > 0 THEN 1 ELSE 0 END), 0), COALESCE(SUM(CASE WHEN value < 0 THEN 1 ELSE 0 END), 0) FROM votes WHERE `+col+` = ?`, t.ID)
	if err := row.Scan(&tally.Upvotes, &tally.Downvotes); err != nil {
		return models.Tally{}, err
	}

	return tally, nil
}
