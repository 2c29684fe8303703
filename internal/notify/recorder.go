package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/jobs"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// PersistJobType is the job that writes a durable notification row.
const PersistJobType = "notification.persist"

// Recorder stores the durable copy of a notification.
type Recorder interface {
	Record(ctx context.Context, n *models.Notification) error
}

// StoreRecorder writes the row synchronously.
type StoreRecorder struct {
	repo repository.NotificationRepo
}

func NewStoreRecorder(repo repository.NotificationRepo) *StoreRecorder {
	return &StoreRecorder{repo: repo}
}

func (r *StoreRecorder) Record(ctx context.Context, n *models.Notification) error {
	_, err := r.repo.CreateNotification(ctx, n)
	return err
}

// Enqueuer is satisfied by jobs.WorkerPool.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

// QueueRecorder defers the write to the worker pool, which retries with
// backoff until the row lands or the job is dead-lettered.
type QueueRecorder struct {
	queue       Enqueuer
	maxAttempts int
}

func NewQueueRecorder(queue Enqueuer, maxAttempts int) *QueueRecorder {
	return &QueueRecorder{queue: queue, maxAttempts: maxAttempts}
}

func (r *QueueRecorder) Record(ctx context.Context, n *models.Notification) error {
	if _, err := r.queue.Enqueue(ctx, PersistJobType, n, 10, r.maxAttempts); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// PersistHandler is the worker-side half of QueueRecorder.
func PersistHandler(repo repository.NotificationRepo) jobs.Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var n models.Notification
		if err := json.Unmarshal(j.Payload, &n); err != nil {
			return fmt.Errorf("decode notification payload: %w", err)
		}
		if n.UserID == 0 {
			return fmt.Errorf("notification payload has no recipient")
		}
		n.ID = 0
		_, err := repo.CreateNotification(ctx, &n)
		return err
	}
}
