package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MayankGitHub86/solvehub-sub000/internal/jobs"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

// Enqueue inserts a job into the jobs table and returns the new ID
func (r *SQLiteRepo) Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}
	if j.MaxAttempts == 0 {
		j.MaxAttempts = 5
	}
	if j.ScheduledAt.IsZero() {
		j.ScheduledAt = time.Now()
	}

	ts := time.Now().UTC().Unix()
	q := `INSERT INTO jobs(type, payload, status, attempts, max_attempts, priority, scheduled_at, created, updated) VALUES(?,?,?,?,?,?,?,?,?)`
	res, err := r.q.ExecContext(ctx, q, j.Type, string(j.Payload), jobs.StatusQueued, j.Attempts, j.MaxAttempts, j.Priority, j.ScheduledAt.UTC().Unix(), ts, ts)
	if err != nil {
		return 0, fmt.Errorf("enqueue failed: %w", err)
	}

	return res.LastInsertId()
}

// FetchNext claims the next runnable job respecting priority and schedule. The
// claimed row moves to status running so concurrent workers skip it.
func (r *SQLiteRepo) FetchNext(ctx context.Context) (*models.BackgroundJob, error) {
	var job *models.BackgroundJob
	err := r.withTx(ctx, func(tx *SQLiteRepo) error {
		q := `SELECT id, type, payload, status, attempts, max_attempts, priority, scheduled_at, next_try_at, last_error, created, updated FROM jobs WHERE (status = ? OR status = ?) AND (next_try_at IS NULL OR next_try_at <= ?) AND scheduled_at <= ? ORDER BY priority ASC, scheduled_at ASC, id ASC LIMIT 1`
		ts := time.Now().UTC().Unix()

		var (
			payload     sql.NullString
			scheduledAt int64
			nextTry     sql.NullInt64
			lastError   sql.NullString
			created     int64
			updated     int64
		)
		j := &models.BackgroundJob{}
		row := tx.q.QueryRowContext(ctx, q, jobs.StatusQueued, jobs.StatusRetry, ts, ts)
		if err := row.Scan(&j.ID, &j.Type, &payload, &j.Status, &j.Attempts, &j.MaxAttempts, &j.Priority, &scheduledAt, &nextTry, &lastError, &created, &updated); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("fetch next job: %w", err)
		}

		j.ScheduledAt = time.Unix(scheduledAt, 0)
		j.Created = time.Unix(created, 0)
		j.Updated = time.Unix(updated, 0)
		if payload.Valid {
			j.Payload = json.RawMessage(payload.String)
		}
		if nextTry.Valid {
			t := time.Unix(nextTry.Int64, 0)
			j.NextTryAt = &t
		}
		if lastError.Valid {
			j.LastError = lastError.String
		}

		if _, err := tx.q.ExecContext(ctx, `UPDATE jobs SET status = ?, updated = ? WHERE id = ?`, jobs.StatusRunning, ts, j.ID); err != nil {
			return fmt.Errorf("claim job %d: %w", j.ID, err)
		}
		j.Status = jobs.StatusRunning
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// UpdateJob updates attempts, status, next_try_at, last_error
func (r *SQLiteRepo) UpdateJob(ctx context.Context, j *models.BackgroundJob) error {
	var nextTry any
	if j.NextTryAt != nil {
		nextTry = j.NextTryAt.Unix()
	}

	q := `UPDATE jobs SET status = ?, attempts = ?, next_try_at = ?, last_error = ?, updated = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, j.Status, j.Attempts, nextTry, j.LastError, time.Now().UTC().Unix(), j.ID)

	return err
}

// MoveToDeadLetter moves a job to dead_letter_jobs and deletes the original
func (r *SQLiteRepo) MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error {
	return r.withTx(ctx, func(tx *SQLiteRepo) error {
		insert := `INSERT INTO dead_letter_jobs(job_id, type, payload, attempts, last_error, failed_at) VALUES(?,?,?,?,?,?)`
		if _, err := tx.q.ExecContext(ctx, insert, j.ID, j.Type, string(j.Payload), j.Attempts, j.LastError, time.Now().UTC().Unix()); err != nil {
			return err
		}

		_, err := tx.q.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, j.ID)
		return err
	})
}

// CountDeadLetters reports how many jobs of the given type failed permanently.
func (r *SQLiteRepo) CountDeadLetters(ctx context.Context, jobType string) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM dead_letter_jobs WHERE type = ?`, jobType).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
