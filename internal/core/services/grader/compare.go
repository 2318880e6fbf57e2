package grader

import (
	"encoding/json"
	"reflect"
	"strings"

	"gitlab.com/codearena.net/internal/domain"
)

// gradeCase applies the equivalence policy: trim both sides; a failed
// execution fails the case regardless of text; byte-equal passes; otherwise
// JSON-equivalence passes. JSON equivalence tolerates key-order and
// whitespace differences ("[0, 1]" vs "[0,1]") across languages.
func gradeCase(tc domain.TestCase, outcome domain.ExecutionOutcome) domain.TestResult {
	actual := strings.TrimSpace(outcome.Stdout)
	expected := strings.TrimSpace(tc.ExpectedOutput)

	result := domain.TestResult{
		Expected: expected,
		Actual:   actual,
	}

	if !outcome.Succeeded {
		result.Error = outcome.Stderr
		if result.Error == "" {
			result.Error = "execution failed"
		}
		return result
	}

	if outcome.Stderr != "" {
		result.Error = outcome.Stderr
	}
	result.Passed = outputsEquivalent(actual, expected)
	return result
}

func outputsEquivalent(actual, expected string) bool {
	if actual == expected {
		return true
	}
	var a, e interface{}
	if json.Unmarshal([]byte(actual), &a) != nil {
		return false
	}
	if json.Unmarshal([]byte(expected), &e) != nil {
		return false
	}
	return reflect.DeepEqual(a, e)
}
