package errs

import "errors"

var (
	InternalError       = errors.New("internal error")
	MissingSourceCode   = errors.New("code is required")
	UnsupportedLanguage = errors.New("unsupported language")
	MissingTestCases    = errors.New("at least one test case is required")
	JobNotFound         = errors.New("job not found")
)

// IsValidation reports whether err is an intake validation error that
// should surface synchronously to the caller and never be enqueued.
func IsValidation(err error) bool {
	return errors.Is(err, MissingSourceCode) ||
		errors.Is(err, UnsupportedLanguage) ||
		errors.Is(err, MissingTestCases)
}
