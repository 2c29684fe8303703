package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

func (r *SQLiteRepo) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("question is nil")
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO questions (author_id, title, body, created) VALUES (?, ?, ?, ?)`, q.AuthorID, q.Title, q.Body, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, author_id, title, body, created FROM questions WHERE id = ?`, id)
	var q models.Question
	if err := row.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Body, &q.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &q, nil
}

func (r *SQLiteRepo) CreateAnswer(ctx context.Context, a *models.Answer) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("answer is nil")
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO answers (question_id, author_id, body, is_accepted, created) VALUES (?, ?, ?, 0, ?)`, a.QuestionID, a.AuthorID, a.Body, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

const answerColumns = `id, question_id, author_id, body, is_accepted, created`

func scanAnswer(row *sql.Row) (*models.Answer, error) {
	var a models.Answer
	if err := row.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Body, &a.IsAccepted, &a.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &a, nil
}

func (r *SQLiteRepo) GetAnswer(ctx context.Context, id int64) (*models.Answer, error) {
	return scanAnswer(r.q.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetAcceptedAnswer(ctx context.Context, questionID int64) (*models.Answer, error) {
	return scanAnswer(r.q.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE question_id = ? AND is_accepted = 1 LIMIT 1`, questionID))
}

func (r *SQLiteRepo) SetAccepted(ctx context.Context, answerID int64, accepted bool) error {
	_, err := r.q.ExecContext(ctx, `UPDATE answers SET is_accepted = ? WHERE id = ?`, accepted, answerID)
	return err
}

func (r *SQLiteRepo) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("comment is nil")
	}
	if (c.QuestionID == nil) == (c.AnswerID == nil) {
		return 0, fmt.Errorf("comment needs exactly one of question_id or answer_id")
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO comments (author_id, question_id, answer_id, body, created) VALUES (?, ?, ?, ?, ?)`, c.AuthorID, nullInt(c.QuestionID), nullInt(c.AnswerID), c.Body, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) SaveQuestion(ctx context.Context, userID, questionID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO saved_questions (user_id, question_id, created) VALUES (?, ?, ?)`, userID, questionID, now())
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
