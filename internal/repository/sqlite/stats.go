package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

// statsQuery derives every badge counter from source rows in one round trip.
const statsQuery = `
SELECT
    (SELECT COUNT(*) FROM questions WHERE author_id = u.id),
    (SELECT COUNT(*) FROM answers WHERE author_id = u.id),
    (SELECT COUNT(*) FROM answers WHERE author_id = u.id AND is_accepted = 1),
    (SELECT COUNT(*) FROM votes v JOIN answers a ON v.answer_id = a.id WHERE a.author_id = u.id AND v.value > 0),
    (SELECT COUNT(*) FROM saved_questions WHERE user_id = u.id),
    (SELECT COUNT(*) FROM comments WHERE author_id = u.id),
    (SELECT COUNT(*) FROM votes WHERE user_id = u.id AND value > 0),
    u.points
FROM users u WHERE u.id = ?`

func (r *SQLiteRepo) GetUserStatistics(ctx context.Context, userID int64) (*models.UserStatistics, error) {
	var s models.UserStatistics
	row := r.q.QueryRowContext(ctx, statsQuery, userID)
	if err := row.Scan(&s.QuestionCount, &s.AnswerCount, &s.AcceptedAnswerCount, &s.UpvotesReceived, &s.SavedCount, &s.CommentCount, &s.PositiveVotesCast, &s.PointBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &s, nil
}
