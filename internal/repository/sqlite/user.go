package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO users (name, email, password_hash, points, updated) VALUES (?, ?, ?, ?, ?)`, u.Name, u.Email, u.PasswordHash, u.Points, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, name, email, points, updated, password_hash FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, name, email, points, updated, password_hash FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var pw sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Points, &u.Updated, &pw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		u.PasswordHash = pw.String
	}

	return &u, nil
}

// IncrementPoints applies delta in a single UPDATE so concurrent writers never
// lose an increment.
func (r *SQLiteRepo) IncrementPoints(ctx context.Context, userID, delta int64) (int64, error) {
	var balance int64
	row := r.q.QueryRowContext(ctx, `UPDATE users SET points = points + ?, updated = ? WHERE id = ? RETURNING points`, delta, now(), userID)
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("increment points: user %d not found", userID)
		}
		return 0, fmt.Errorf("increment points: %w", err)
	}

	return balance, nil
}

func (r *SQLiteRepo) TopByPoints(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.q.QueryContext(ctx, `SELECT id, name, points FROM users ORDER BY points DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Points); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
