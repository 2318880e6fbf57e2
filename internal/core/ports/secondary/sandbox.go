package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// SandboxRunner executes one program with one stdin payload in isolation.
//
// Run never returns an error value: everything that happens to the user
// program is a grading fact carried in the outcome, and failures of the
// substrate itself (spawn, filesystem, output overflow) are reported via
// the outcome's InfraError so the worker layer can retry them.
type SandboxRunner interface {
	Run(ctx context.Context, programText, stdin string, language domain.Language) domain.ExecutionOutcome
}
