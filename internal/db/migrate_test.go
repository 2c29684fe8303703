package db_test

import (
	"context"
	"testing"

	dbfs "github.com/MayankGitHub86/solvehub-sub000/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	// Run again to ensure idempotency
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least 1 migration recorded, got %d", count)
	}

	for _, table := range []string{"users", "votes", "badges", "user_badges", "notifications", "jobs"} {
		var name string
		row := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("expected %s table exists: %v", table, err)
		}
	}
}

func TestMigrate_VoteUniqueness(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	stmts := []string{
		`INSERT INTO users (id, name, email, updated) VALUES (1, 'a', 'a@x', 0), (2, 'b', 'b@x', 0)`,
		`INSERT INTO questions (id, author_id, title, created) VALUES (1, 1, 'q', 0)`,
		`INSERT INTO votes (user_id, question_id, value, created, updated) VALUES (2, 1, 1, 0, 0)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(ctx, s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}

	if _, err := d.Exec(ctx, `INSERT INTO votes (user_id, question_id, value, created, updated) VALUES (2, 1, -1, 0, 0)`); err == nil {
		t.Fatalf("expected unique violation for a second vote on the same question")
	}
	if _, err := d.Exec(ctx, `INSERT INTO votes (user_id, question_id, value, created, updated) VALUES (1, 1, 2, 0, 0)`); err == nil {
		t.Fatalf("expected check violation for vote value 2")
	}
}
