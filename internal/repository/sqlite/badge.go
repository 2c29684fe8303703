package sqlite

import (
	"context"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

// UpsertBadge inserts or refreshes a catalog entry keyed by name.
func (r *SQLiteRepo) UpsertBadge(ctx context.Context, b *models.Badge) (int64, error) {
	if b == nil {
		return 0, fmt.Errorf("badge is nil")
	}

	row := r.q.QueryRowContext(ctx, `INSERT INTO badges (name, description, icon, points, category, rule_kind, threshold) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT(name) DO UPDATE SET description=excluded.description, icon=excluded.icon, points=excluded.points, category=excluded.category, rule_kind=excluded.rule_kind, threshold=excluded.threshold RETURNING id`, b.Name, b.Description, b.Icon, b.Points, b.Category, string(b.RuleKind), b.Threshold)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert badge %s: %w", b.Name, err)
	}

	return id, nil
}

func (r *SQLiteRepo) ListBadges(ctx context.Context) ([]models.Badge, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, description, icon, points, category, rule_kind, threshold FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Badge
	for rows.Next() {
		var b models.Badge
		var kind string
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Points, &b.Category, &kind, &b.Threshold); err != nil {
			return nil, err
		}
		b.RuleKind = models.RuleKind(kind)
		out = append(out, b)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListUserBadges(ctx context.Context, userID int64) ([]models.UserBadge, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT user_id, badge_id, earned_at FROM user_badges WHERE user_id = ? ORDER BY earned_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		if err := rows.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, ub)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) InsertUserBadge(ctx context.Context, userID, badgeID, reward int64) (int64, error) {
	var balance int64
	err := r.withTx(ctx, func(tx *SQLiteRepo) error {
		if _, err := tx.q.ExecContext(ctx, `INSERT INTO user_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`, userID, badgeID, now()); err != nil {
			return fmt.Errorf("insert user badge: %w", err)
		}

		var err error
		balance, err = tx.IncrementPoints(ctx, userID, reward)
		return err
	})

	return balance, err
}
