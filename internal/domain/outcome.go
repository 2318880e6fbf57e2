package domain

// ExecutionOutcome is the result of one sandbox invocation.
//
// Succeeded=false with an empty InfraError means the user program ran but
// exited non-zero or produced no output. That is a grading fact, not a
// system fault. InfraError is set only when the sandbox itself could not
// execute the program (spawn failure, filesystem error, output overflow).
type ExecutionOutcome struct {
	Succeeded  bool   `json:"success"`
	Stdout     string `json:"output,omitempty"`
	Stderr     string `json:"error,omitempty"`
	ElapsedMs  int64  `json:"executionTime"`
	InfraError string `json:"-"`
}

// IsInfraFailure reports whether the execution substrate itself failed.
func (o ExecutionOutcome) IsInfraFailure() bool {
	return o.InfraError != ""
}
