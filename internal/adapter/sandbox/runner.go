// Package sandbox executes generated programs as subprocesses with bounded
// wall-clock time and bounded output capture. Host-level isolation
// (containers, cgroups) is a deployment concern layered underneath; this
// runner guarantees that its own temp files, timers and buffers are
// leak-free and safe under concurrent workers.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
)

type languageSpec struct {
	bin       string
	extension string
}

// Runner implements secondary.SandboxRunner on top of direct argv
// subprocess invocation. Stdin is piped programmatically; user-controlled
// strings never pass through a shell.
type Runner struct {
	dir       string
	timeout   time.Duration
	maxOutput int
	logger    primary.Logger
	languages map[domain.Language]languageSpec
}

// NewRunner creates a runner for the configured interpreters. Only
// languages named in cfg.SupportedLanguages are registered; unknown names
// are ignored.
func NewRunner(cfg *config.ExecutorConfig, logger primary.Logger) *Runner {
	known := map[domain.Language]languageSpec{
		domain.LanguagePython:     {bin: cfg.PythonBin, extension: "py"},
		domain.LanguageJavaScript: {bin: cfg.NodeBin, extension: "js"},
	}

	languages := make(map[domain.Language]languageSpec, len(known))
	for _, name := range cfg.SupportedLanguages {
		lang, ok := domain.ParseLanguage(name)
		if !ok {
			logger.Warn("Ignoring unknown language in SUPPORTED_LANGUAGES", "language", name)
			continue
		}
		languages[lang] = known[lang]
	}

	return &Runner{
		dir:       cfg.SandboxDir,
		timeout:   cfg.ExecutionTimeout,
		maxOutput: cfg.MaxOutputBytes,
		logger:    logger,
		languages: languages,
	}
}

// Register adds or overrides the interpreter for a language.
func (r *Runner) Register(language domain.Language, bin, extension string) {
	r.languages[language] = languageSpec{bin: bin, extension: extension}
}

// Run executes programText with the given stdin. All failures of the user
// program (non-zero exit, timeout) are grading facts carried in the
// outcome; only failures of the execution substrate set InfraError.
func (r *Runner) Run(ctx context.Context, programText, stdin string, language domain.Language) domain.ExecutionOutcome {
	start := time.Now()

	spec, ok := r.languages[language]
	if !ok {
		return r.infraFailure(start, fmt.Errorf("no interpreter registered for language %q", language))
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return r.infraFailure(start, fmt.Errorf("prepare sandbox dir: %w", err))
	}

	// Unique per invocation so concurrent workers never collide.
	fileName := fmt.Sprintf("code_%d_%s.%s", start.UnixNano(), uuid.NewString()[:8], spec.extension)
	filePath := filepath.Join(r.dir, fileName)
	if err := os.WriteFile(filePath, []byte(programText), 0o600); err != nil {
		return r.infraFailure(start, fmt.Errorf("write program file: %w", err))
	}
	defer os.Remove(filePath)

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, spec.bin, filePath)
	cmd.Stdin = strings.NewReader(stdin)
	stdout := newBoundedBuffer(r.maxOutput)
	stderr := newBoundedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Collect output promptly even if the killed process leaked its pipes
	// to a child.
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if stdout.Overflowed() || stderr.Overflowed() {
		return r.infraFailure(start, fmt.Errorf("output exceeded %d bytes", r.maxOutput))
	}

	if execCtx.Err() == context.DeadlineExceeded {
		return domain.ExecutionOutcome{
			Succeeded: false,
			Stdout:    strings.TrimSpace(stdout.String()),
			Stderr:    fmt.Sprintf("execution timed out after %s", r.timeout),
			ElapsedMs: elapsed,
		}
	}

	if ctx.Err() != nil {
		// The caller withdrew mid-run (shutdown); the kill says nothing
		// about the program, so the job stays retryable.
		return r.infraFailure(start, fmt.Errorf("execution cancelled: %w", ctx.Err()))
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The process could not be spawned at all.
			return r.infraFailure(start, fmt.Errorf("spawn %s: %w", spec.bin, runErr))
		}
		errText := strings.TrimSpace(stderr.String())
		if errText == "" {
			errText = runErr.Error()
		}
		return domain.ExecutionOutcome{
			Succeeded: false,
			Stdout:    strings.TrimSpace(stdout.String()),
			Stderr:    errText,
			ElapsedMs: elapsed,
		}
	}

	return domain.ExecutionOutcome{
		Succeeded: true,
		Stdout:    strings.TrimSpace(stdout.String()),
		Stderr:    strings.TrimSpace(stderr.String()),
		ElapsedMs: elapsed,
	}
}

func (r *Runner) infraFailure(start time.Time, err error) domain.ExecutionOutcome {
	r.logger.Error("sandbox infrastructure failure", "error", err)
	return domain.ExecutionOutcome{
		Succeeded:  false,
		ElapsedMs:  time.Since(start).Milliseconds(),
		InfraError: err.Error(),
	}
}
