package execution

import (
	"context"
	"fmt"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/core/services/harness"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ IExecutionService = (*ExecutionService)(nil)

// ExecutionService implements IExecutionService.
type ExecutionService struct {
	queue   secondary.JobQueue
	store   secondary.ResultStore
	runner  secondary.SandboxRunner
	archive secondary.JobArchive // optional, may be nil
	logger  primary.Logger
}

// NewExecutionService creates a new execution service. archive may be nil
// when no durable backend is configured.
func NewExecutionService(
	queue secondary.JobQueue,
	store secondary.ResultStore,
	runner secondary.SandboxRunner,
	archive secondary.JobArchive,
	logger primary.Logger,
) *ExecutionService {
	return &ExecutionService{
		queue:   queue,
		store:   store,
		runner:  runner,
		archive: archive,
		logger:  logger,
	}
}

// SubmitCode registers the job as pending before publishing so a very
// fast worker can never race a status poll against a missing record.
func (s *ExecutionService) SubmitCode(ctx context.Context, sub *domain.Submission) (string, error) {
	if err := sub.Validate(); err != nil {
		return "", err
	}

	if err := s.store.MarkPending(ctx, sub.JobID, sub.CreatedAt); err != nil {
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.SaveSubmission(ctx, sub); err != nil {
			s.logger.Warn("Failed to archive submission", "jobId", sub.JobID, "error", err)
		}
	}

	if err := s.queue.Publish(ctx, sub); err != nil {
		s.logger.Error("Failed to enqueue submission", "jobId", sub.JobID, "error", err)
		if ferr := s.store.Fail(ctx, sub.JobID, "failed to enqueue job"); ferr != nil {
			s.logger.Error("Failed to mark job failed", "jobId", sub.JobID, "error", ferr)
		}
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info("submission queued",
		"jobId", sub.JobID,
		"language", sub.Language,
		"testCases", len(sub.TestCases))

	return sub.JobID, nil
}

func (s *ExecutionService) GetJob(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	return s.store.Get(ctx, jobID)
}

// RunCode wraps the program when it is harness-shaped, so scratchpad runs
// behave like a single graded case; plain scripts run untouched with the
// input piped to stdin.
func (s *ExecutionService) RunCode(ctx context.Context, code string, language domain.Language, input, entryPoint string) (domain.ExecutionOutcome, error) {
	if code == "" {
		return domain.ExecutionOutcome{}, errs.MissingSourceCode
	}
	lang, ok := domain.ParseLanguage(string(language))
	if !ok {
		return domain.ExecutionOutcome{}, errs.UnsupportedLanguage
	}

	program := code
	if input != "" && harness.Wrappable(code, lang, entryPoint) {
		wrapped, err := harness.Generate(code, lang, entryPoint)
		if err != nil {
			return domain.ExecutionOutcome{}, fmt.Errorf("generate harness: %w", err)
		}
		program = wrapped
	}

	outcome := s.runner.Run(ctx, program, input, lang)
	if outcome.IsInfraFailure() {
		s.logger.Error("Failed to execute code", "language", lang, "error", outcome.InfraError)
		return domain.ExecutionOutcome{}, errs.InternalError
	}
	return outcome, nil
}
