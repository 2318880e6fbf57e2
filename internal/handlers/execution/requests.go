package execution

import "gitlab.com/codearena.net/internal/domain"

// ExecuteRequest represents a request to grade a submission.
type ExecuteRequest struct {
	Code       string            `json:"code"`
	Language   string            `json:"language"`
	TestCases  []domain.TestCase `json:"testCases"`
	EntryPoint string            `json:"entryPoint,omitempty"`
	BattleID   string            `json:"battleId,omitempty"`
	UserID     string            `json:"userId,omitempty"`
}

// ExecuteResponse represents a response to an execute request.
type ExecuteResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// RunRequest represents a request to run code once, synchronously.
type RunRequest struct {
	Code       string `json:"code"`
	Language   string `json:"language"`
	Input      string `json:"input,omitempty"`
	EntryPoint string `json:"entryPoint,omitempty"`
}
