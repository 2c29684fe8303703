package jobs

import (
	"context"
	"time"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
)

// Job statuses written back to the queue.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusRetry   = "retry"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Handler is the function that processes a job
type Handler func(ctx context.Context, j *models.BackgroundJob) error

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	max := 5 * time.Minute
	// simple exponential: base 2^attempt seconds, capped
	if attempt > 16 {
		return max
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > max {
		return max
	}
	return d
}
