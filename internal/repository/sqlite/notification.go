package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

func (r *SQLiteRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("notification is nil")
	}

	var meta sql.NullString
	if len(n.Metadata) > 0 {
		meta = sql.NullString{String: string(n.Metadata), Valid: true}
	}

	created := n.Created
	if created == 0 {
		created = now()
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO notifications (user_id, type, title, message, link, metadata, read, created) VALUES (?, ?, ?, ?, ?, ?, 0, ?)`, n.UserID, n.Type, n.Title, n.Message, n.Link, meta, created)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, user_id, type, title, message, link, metadata, read, created FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.q.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var link, meta sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &link, &meta, &n.Read, &n.Created); err != nil {
			return nil, err
		}
		n.Link = link.String
		if meta.Valid && meta.String != "" {
			n.Metadata = []byte(meta.String)
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepo) DeleteNotification(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
