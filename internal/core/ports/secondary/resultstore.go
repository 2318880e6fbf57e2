package secondary

import (
	"context"
	"time"

	"gitlab.com/codearena.net/internal/domain"
)

// ResultStore is the keyed store of job status polled by callers.
//
// Write-once-terminal invariant: once a job is completed or failed,
// further Complete/Fail calls for that job ID are ignored, so idempotent
// re-delivery can never clobber a valid report with a stale one. Entries
// are evicted after a configured TTL.
type ResultStore interface {
	// MarkPending registers a freshly enqueued job.
	MarkPending(ctx context.Context, jobID string, createdAt time.Time) error

	// MarkRunning records that a worker picked the job up. Ignored once
	// the job is terminal.
	MarkRunning(ctx context.Context, jobID string) error

	// Complete writes the job's report and transitions it to completed.
	Complete(ctx context.Context, jobID string, report *domain.JobReport) error

	// Fail transitions the job to failed with an operator-visible reason.
	Fail(ctx context.Context, jobID string, reason string) error

	// Get returns the current record. errs.JobNotFound when the job ID is
	// unknown or already evicted.
	Get(ctx context.Context, jobID string) (*domain.JobRecord, error)
}
