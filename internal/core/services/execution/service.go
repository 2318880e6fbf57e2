package execution

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// IExecutionService is the intake surface behind the HTTP layer. It
// accepts submissions, exposes job status, and offers a synchronous
// single-shot run for interactive use.
type IExecutionService interface {
	// SubmitCode validates the submission, registers it as pending and
	// enqueues it. Returns the job ID callers poll with GetJob.
	SubmitCode(ctx context.Context, sub *domain.Submission) (string, error)

	// GetJob returns the current record for a job ID, or
	// errs.JobNotFound when unknown or evicted.
	GetJob(ctx context.Context, jobID string) (*domain.JobRecord, error)

	// RunCode executes one program synchronously, bypassing the queue
	// and the grader. Used for scratchpad runs where no test cases
	// exist yet.
	RunCode(ctx context.Context, code string, language domain.Language, input, entryPoint string) (domain.ExecutionOutcome, error)
}
