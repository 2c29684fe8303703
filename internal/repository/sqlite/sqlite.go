package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/MayankGitHub86/solvehub-sub000/internal/db"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
// A repo bound to a transaction (see InTx) routes every statement through it.
type SQLiteRepo struct {
	conn   *db.DB
	q      db.Querier
	inTx   bool
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.Store = (*SQLiteRepo)(nil)
var _ repository.LedgerTx = (*SQLiteRepo)(nil)
var _ repository.JobQueue = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, q: conn.GetConn(), logger: logger}
}

// InTx runs fn against a repo bound to a single transaction.
func (r *SQLiteRepo) InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	return r.withTx(ctx, func(tx *SQLiteRepo) error { return fn(tx) })
}

func (r *SQLiteRepo) withTx(ctx context.Context, fn func(tx *SQLiteRepo) error) error {
	if r.inTx {
		return fn(r)
	}

	return r.conn.InTx(ctx, func(tx *sql.Tx) error {
		return fn(&SQLiteRepo{conn: r.conn, q: tx, inTx: true, logger: r.logger})
	})
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func ptrInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
