// Package worker runs the pool of queue consumers that grade submissions
// and publish their results.
package worker

import (
	"context"
	"sync"
	"time"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/core/services/grader"
	"gitlab.com/codearena.net/internal/domain"
)

// Pool consumes jobs with bounded concurrency. Each worker owns one job at
// a time; pool size bounds the number of concurrent sandbox subprocesses.
// Workers are stateless between jobs.
type Pool struct {
	queue      secondary.JobQueue
	grader     grader.IGraderService
	store      secondary.ResultStore
	archive    secondary.JobArchive
	logger     primary.Logger
	size       int
	maxRetries int
	wg         sync.WaitGroup
}

// NewPool creates a worker pool. archive may be nil.
func NewPool(
	queue secondary.JobQueue,
	graderSvc grader.IGraderService,
	store secondary.ResultStore,
	archive secondary.JobArchive,
	logger primary.Logger,
	size int,
	maxRetries int,
) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		queue:      queue,
		grader:     graderSvc,
		store:      store,
		archive:    archive,
		logger:     logger,
		size:       size,
		maxRetries: maxRetries,
	}
}

// Start opens one delivery stream per worker and begins consuming. It
// returns once all consumers are running; cancel ctx to stop them.
func (p *Pool) Start(ctx context.Context) error {
	for i := 0; i < p.size; i++ {
		deliveries, err := p.queue.Consume(ctx)
		if err != nil {
			return err
		}
		p.wg.Add(1)
		go p.runWorker(ctx, i, deliveries)
	}
	p.logger.Info("Worker pool started", "size", p.size)
	return nil
}

// Wait blocks until every worker goroutine has drained and exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int, deliveries <-chan secondary.Delivery) {
	defer p.wg.Done()
	for delivery := range deliveries {
		p.process(ctx, delivery)
	}
	p.logger.Debug("Worker stopped", "worker", id)
}

// process drives one job to a terminal state. A report with failing tests
// is still a success from the queue's perspective; only infrastructure
// errors take the retry path.
func (p *Pool) process(ctx context.Context, delivery secondary.Delivery) {
	sub := delivery.Submission

	if err := p.store.MarkRunning(ctx, sub.JobID); err != nil {
		p.logger.Warn("Failed to mark job running", "jobId", sub.JobID, "error", err)
	}

	report, err := p.grader.GradeSubmission(ctx, sub)
	if err != nil {
		p.handleInfraFailure(ctx, delivery, err)
		return
	}

	if err := p.store.Complete(ctx, sub.JobID, report); err != nil {
		p.handleInfraFailure(ctx, delivery, err)
		return
	}
	p.archiveRecord(ctx, sub, domain.JobStatusCompleted, report, "")

	if err := delivery.Ack(); err != nil {
		// The store write is idempotent, so redelivery after a lost ack
		// cannot corrupt the result.
		p.logger.Error("Failed to ack job", "jobId", sub.JobID, "error", err)
		return
	}

	p.logger.Info("Job completed",
		"jobId", sub.JobID,
		"passed", report.PassedTests,
		"total", report.TotalTests)
}

// handleInfraFailure applies the bounded-retry policy: republish with an
// incremented retry counter while attempts remain, otherwise quarantine
// the job as terminally failed. Either way the job reaches a terminal or
// requeued state; no silent loss and no unbounded retry loop.
func (p *Pool) handleInfraFailure(ctx context.Context, delivery secondary.Delivery, cause error) {
	sub := delivery.Submission

	if sub.RetryCount < p.maxRetries {
		retry := *sub
		retry.RetryCount++
		if err := p.queue.Publish(ctx, &retry); err == nil {
			p.logger.Warn("Job requeued after infra failure",
				"jobId", sub.JobID,
				"attempt", retry.RetryCount,
				"error", cause)
			if err := delivery.Ack(); err != nil {
				p.logger.Error("Failed to ack requeued job", "jobId", sub.JobID, "error", err)
			}
			return
		}
		p.logger.Error("Failed to republish job, quarantining", "jobId", sub.JobID)
	}

	p.logger.Error("Job failed permanently", "jobId", sub.JobID, "error", cause)
	if err := p.store.Fail(ctx, sub.JobID, cause.Error()); err != nil {
		p.logger.Error("Failed to record job failure", "jobId", sub.JobID, "error", err)
	}
	p.archiveRecord(ctx, sub, domain.JobStatusFailed, nil, cause.Error())

	if err := delivery.Nack(false); err != nil {
		p.logger.Error("Failed to nack job", "jobId", sub.JobID, "error", err)
	}
}

// archiveRecord is best-effort; archive failures never fail the job path.
func (p *Pool) archiveRecord(ctx context.Context, sub *domain.Submission, status domain.JobStatus, report *domain.JobReport, reason string) {
	if p.archive == nil {
		return
	}
	now := time.Now()
	record := &domain.JobRecord{
		JobID:         sub.JobID,
		Status:        status,
		Report:        report,
		FailureReason: reason,
		CreatedAt:     sub.CreatedAt,
		CompletedAt:   &now,
	}
	if err := p.archive.SaveRecord(ctx, record); err != nil {
		p.logger.Warn("Failed to archive job record", "jobId", sub.JobID, "error", err)
	}
}
