package config

import "time"

type ExecutorConfig struct {
	// ExecutionTimeout is the wall-clock ceiling per sandbox invocation.
	ExecutionTimeout time.Duration
	// MaxOutputBytes caps captured stdout/stderr per invocation.
	// Exceeding it is an infrastructure error, not a grading fact.
	MaxOutputBytes int
	// WorkerPoolSize bounds concurrent sandbox subprocesses; tune below
	// host CPU/process-table capacity.
	WorkerPoolSize int
	// SandboxDir is the scratch directory program files are written to.
	SandboxDir string
	// SupportedLanguages restricts which interpreters the runner
	// registers. Names outside the known set are ignored.
	SupportedLanguages []string
	PythonBin          string
	NodeBin            string
}

func NewExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		ExecutionTimeout:   time.Duration(getIntEnv("EXECUTION_TIMEOUT_MS", 10000)) * time.Millisecond,
		MaxOutputBytes:     getIntEnv("MAX_OUTPUT_BYTES", 1<<20),
		WorkerPoolSize:     getIntEnv("WORKER_POOL_SIZE", 4),
		SandboxDir:         getEnv("SANDBOX_DIR", "/tmp/codearena"),
		SupportedLanguages: splitList(getEnv("SUPPORTED_LANGUAGES", "python,javascript")),
		PythonBin:          getEnv("PYTHON_BIN", "python3"),
		NodeBin:            getEnv("NODE_BIN", "node"),
	}
}
