// Package jobarchive contains the PostgreSQL implementation of the
// JobArchive interface: a durable record of submissions and their final
// outcomes for replay and audit.
package jobarchive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

// JobArchive implements the JobArchive interface with PostgreSQL.
type JobArchive struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewJobArchive creates a new PostgreSQL job archive.
func NewJobArchive(db *sqlx.DB, logger primary.Logger) *JobArchive {
	return &JobArchive{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the archive tables when they do not exist yet.
func (r *JobArchive) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS submissions (
			job_id     TEXT PRIMARY KEY,
			language   TEXT NOT NULL,
			code       TEXT NOT NULL,
			test_cases JSONB NOT NULL,
			battle_id  TEXT,
			user_id    TEXT,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS job_records (
			job_id         TEXT PRIMARY KEY,
			status         TEXT NOT NULL,
			report         JSONB,
			failure_reason TEXT,
			created_at     TIMESTAMPTZ NOT NULL,
			completed_at   TIMESTAMPTZ
		);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate job archive: %w", err)
	}
	return nil
}

// SaveSubmission archives the immutable intake payload.
func (r *JobArchive) SaveSubmission(ctx context.Context, sub *domain.Submission) error {
	testCasesJSON, err := json.Marshal(sub.TestCases)
	if err != nil {
		return fmt.Errorf("failed to marshal test cases: %w", err)
	}

	query := `
		INSERT INTO submissions (job_id, language, code, test_cases, battle_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (job_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		sub.JobID,
		sub.Language,
		sub.SourceCode,
		testCasesJSON,
		nullable(sub.BattleID),
		nullable(sub.UserID),
		sub.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to archive submission", "jobId", sub.JobID, "error", err)
		return fmt.Errorf("failed to archive submission: %w", err)
	}
	return nil
}

// SaveRecord archives the terminal outcome. The first terminal write wins,
// mirroring the result store's write-once invariant.
func (r *JobArchive) SaveRecord(ctx context.Context, record *domain.JobRecord) error {
	var reportJSON []byte
	if record.Report != nil {
		var err error
		reportJSON, err = json.Marshal(record.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
	}

	query := `
		INSERT INTO job_records (job_id, status, report, failure_reason, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		record.JobID,
		record.Status,
		reportJSON,
		nullable(record.FailureReason),
		record.CreatedAt,
		record.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to archive job record", "jobId", record.JobID, "error", err)
		return fmt.Errorf("failed to archive job record: %w", err)
	}
	return nil
}

// GetRecord retrieves an archived outcome by job ID.
func (r *JobArchive) GetRecord(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	query := `
		SELECT job_id, status, report, failure_reason, created_at, completed_at
		FROM job_records
		WHERE job_id = $1
	`

	var record domain.JobRecord
	var reportJSON []byte
	var failureReason sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, jobID).Scan(
		&record.JobID,
		&record.Status,
		&reportJSON,
		&failureReason,
		&record.CreatedAt,
		&completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.JobNotFound
		}
		return nil, fmt.Errorf("failed to get job record: %w", err)
	}

	if len(reportJSON) > 0 {
		record.Report = &domain.JobReport{}
		if err := json.Unmarshal(reportJSON, record.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
	}
	if failureReason.Valid {
		record.FailureReason = failureReason.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	return &record, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
