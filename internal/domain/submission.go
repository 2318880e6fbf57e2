package domain

import (
	"time"

	"github.com/google/uuid"

	"gitlab.com/codearena.net/internal/static/errs"
)

// TestCase represents one input/expected-output pair. Input is a single
// string, conventionally JSON-encoded when the harness must deserialize
// structured arguments.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Submission represents a code submission to be graded. It is immutable
// once enqueued; RetryCount is the only field the queue layer rewrites
// when it republishes after an infrastructure failure.
type Submission struct {
	JobID      string     `json:"jobId"`
	SourceCode string     `json:"code"`
	Language   Language   `json:"language"`
	TestCases  []TestCase `json:"testCases"`
	// EntryPoint optionally names the function or method to invoke,
	// supplied by the problem catalog. When empty the harness falls back
	// to source-marker detection.
	EntryPoint string    `json:"entryPoint,omitempty"`
	BattleID   string    `json:"battleId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	RetryCount int       `json:"retryCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewSubmission creates a new submission with a generated job ID.
func NewSubmission(code string, language Language, testCases []TestCase) *Submission {
	return &Submission{
		JobID:      uuid.New().String(),
		SourceCode: code,
		Language:   language,
		TestCases:  testCases,
		CreatedAt:  time.Now(),
	}
}

// Validate enforces the intake invariants: source present, language
// supported, at least one test case. The language is stored in its
// normalized form so every consumer downstream of intake sees the same
// identifier the harness and runner key on.
func (s *Submission) Validate() error {
	if s.SourceCode == "" {
		return errs.MissingSourceCode
	}
	lang, ok := ParseLanguage(string(s.Language))
	if !ok {
		return errs.UnsupportedLanguage
	}
	s.Language = lang
	if len(s.TestCases) == 0 {
		return errs.MissingTestCases
	}
	return nil
}
