package grader

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// IGraderService runs a submission against its ordered test cases and
// produces the aggregate report.
type IGraderService interface {
	// GradeSubmission returns an error only for infrastructure failures;
	// user-code failures of any kind are data inside the report.
	GradeSubmission(ctx context.Context, sub *domain.Submission) (*domain.JobReport, error)
}
