package domain

import "time"

// JobStatus represents the lifecycle state of a grading job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition may leave this state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// TestResult is one test case's grading outcome.
type TestResult struct {
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Error    string `json:"error,omitempty"`
}

// JobReport aggregates the per-case results of a graded submission.
// Results preserve the submitted test-case order for diagnostic replay.
type JobReport struct {
	TotalTests  int          `json:"totalTests"`
	PassedTests int          `json:"passedTests"`
	Results     []TestResult `json:"results"`
	BattleID    string       `json:"battleId,omitempty"`
	UserID      string       `json:"userId,omitempty"`
}

// JobRecord is the result-store view of a job: its status plus, once
// terminal, either the report or the infrastructure failure reason.
type JobRecord struct {
	JobID         string     `json:"jobId"`
	Status        JobStatus  `json:"status"`
	Report        *JobReport `json:"result,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
