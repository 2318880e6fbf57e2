package grader

import (
	"context"
	"fmt"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/core/services/harness"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ IGraderService = (*GraderService)(nil)

// GraderService implements IGraderService on top of a sandbox runner.
type GraderService struct {
	runner secondary.SandboxRunner
	logger primary.Logger
}

// NewGraderService creates a new grader service.
func NewGraderService(runner secondary.SandboxRunner, logger primary.Logger) *GraderService {
	return &GraderService{
		runner: runner,
		logger: logger,
	}
}

// GradeSubmission detects the submission style once, generates the harness
// once (the generated program is input-invariant), then executes each test
// case in submitted order. The report preserves that order.
func (s *GraderService) GradeSubmission(ctx context.Context, sub *domain.Submission) (*domain.JobReport, error) {
	if len(sub.TestCases) == 0 {
		// Validated at intake; getting here means a caller bypassed it.
		return nil, errs.MissingTestCases
	}

	program := sub.SourceCode
	if harness.Wrappable(sub.SourceCode, sub.Language, sub.EntryPoint) {
		wrapped, err := harness.Generate(sub.SourceCode, sub.Language, sub.EntryPoint)
		if err != nil {
			return nil, fmt.Errorf("generate harness: %w", err)
		}
		program = wrapped
	}

	results := make([]domain.TestResult, 0, len(sub.TestCases))
	passed := 0
	for i, tc := range sub.TestCases {
		outcome := s.runner.Run(ctx, program, tc.Input, sub.Language)
		if outcome.IsInfraFailure() {
			return nil, fmt.Errorf("sandbox failure on test case %d: %s", i+1, outcome.InfraError)
		}

		result := gradeCase(tc, outcome)
		if result.Passed {
			passed++
		}
		results = append(results, result)
	}

	s.logger.Info("submission graded",
		"jobId", sub.JobID,
		"language", sub.Language,
		"passed", passed,
		"total", len(sub.TestCases))

	return &domain.JobReport{
		TotalTests:  len(sub.TestCases),
		PassedTests: passed,
		Results:     results,
		BattleID:    sub.BattleID,
		UserID:      sub.UserID,
	}, nil
}
