// Package resultstore implements the ResultStore interface with Redis.
package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

const jobKeyPrefix = "job:"

// ResultStore keeps JSON-encoded job records under prefixed keys with TTL
// eviction. Each jobId is owned by exactly one worker for its lifetime, so
// there is no same-key contention in the common path; the transactional
// check in terminal writes only guards against redelivery races.
type ResultStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      primary.Logger
}

// NewResultStore creates a new Redis result store.
func NewResultStore(redisClient *redis.Client, ttl time.Duration, logger primary.Logger) *ResultStore {
	return &ResultStore{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func jobKey(jobID string) string {
	return fmt.Sprintf("%s%s", jobKeyPrefix, jobID)
}

// MarkPending registers a freshly enqueued job.
func (r *ResultStore) MarkPending(ctx context.Context, jobID string, createdAt time.Time) error {
	record := domain.JobRecord{
		JobID:     jobID,
		Status:    domain.JobStatusPending,
		CreatedAt: createdAt,
	}
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}
	if err := r.redisClient.Set(ctx, jobKey(jobID), recordJSON, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save job record", "jobId", jobID, "error", err)
		return fmt.Errorf("failed to save job record: %w", err)
	}
	return nil
}

// MarkRunning records worker pickup. Ignored once terminal.
func (r *ResultStore) MarkRunning(ctx context.Context, jobID string) error {
	return r.transition(ctx, jobID, func(record *domain.JobRecord) bool {
		record.Status = domain.JobStatusRunning
		return true
	})
}

// Complete writes the report exactly once; later terminal writes for the
// same jobId are ignored so redelivery cannot clobber a valid report.
func (r *ResultStore) Complete(ctx context.Context, jobID string, report *domain.JobReport) error {
	now := time.Now()
	return r.transition(ctx, jobID, func(record *domain.JobRecord) bool {
		record.Status = domain.JobStatusCompleted
		record.Report = report
		record.CompletedAt = &now
		return true
	})
}

// Fail marks the job terminally failed with an operator-visible reason.
func (r *ResultStore) Fail(ctx context.Context, jobID string, reason string) error {
	now := time.Now()
	return r.transition(ctx, jobID, func(record *domain.JobRecord) bool {
		record.Status = domain.JobStatusFailed
		record.FailureReason = reason
		record.CompletedAt = &now
		return true
	})
}

// Get retrieves the current job record.
func (r *ResultStore) Get(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	recordJSON, err := r.redisClient.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errs.JobNotFound
		}
		r.logger.Error("Failed to get job record", "jobId", jobID, "error", err)
		return nil, fmt.Errorf("failed to get job record: %w", err)
	}

	var record domain.JobRecord
	if err := json.Unmarshal(recordJSON, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job record: %w", err)
	}
	return &record, nil
}

// transition applies mutate under a WATCH so a concurrent terminal write
// wins and the losing write is dropped, never applied on top.
func (r *ResultStore) transition(ctx context.Context, jobID string, mutate func(*domain.JobRecord) bool) error {
	key := jobKey(jobID)

	txn := func(tx *redis.Tx) error {
		record := domain.JobRecord{JobID: jobID, CreatedAt: time.Now()}
		recordJSON, err := tx.Get(ctx, key).Bytes()
		switch err {
		case nil:
			if err := json.Unmarshal(recordJSON, &record); err != nil {
				return fmt.Errorf("failed to unmarshal job record: %w", err)
			}
		case redis.Nil:
			// Evicted or never registered: recreate so the terminal state
			// stays observable.
		default:
			return fmt.Errorf("failed to get job record: %w", err)
		}

		if record.Status.IsTerminal() {
			return nil
		}
		if !mutate(&record) {
			return nil
		}

		updated, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal job record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, r.ttl)
			return nil
		})
		return err
	}

	err := r.redisClient.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		// Lost the race; the winning write stands.
		return nil
	}
	if err != nil {
		r.logger.Error("Failed to update job record", "jobId", jobID, "error", err)
		return err
	}
	return nil
}
