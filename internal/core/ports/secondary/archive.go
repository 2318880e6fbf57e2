package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// JobArchive is the durable, best-effort record of submissions and their
// final outcomes, kept for replay and audit. Archive failures are logged
// and never fail the grading path.
type JobArchive interface {
	SaveSubmission(ctx context.Context, sub *domain.Submission) error
	SaveRecord(ctx context.Context, record *domain.JobRecord) error
	GetRecord(ctx context.Context, jobID string) (*domain.JobRecord, error)
}
