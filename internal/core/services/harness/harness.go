// Package harness turns raw user source into a self-contained runnable
// program speaking the engine's stdin/stdout JSON contract: read one
// JSON-encoded test input from stdin, invoke the user's entry point, print
// the JSON-encoded return value. On any exception the program prints
// {"error": message} and exits non-zero.
//
// Generation is pure string templating and never executes user code.
// Detection failures surface at run time inside the sandbox as graded
// errors, never as generation-time errors.
package harness

import (
	"fmt"
	"regexp"

	"gitlab.com/codearena.net/internal/domain"
)

// Style distinguishes the two supported submission shapes.
type Style int

const (
	// StyleFunction is a bare callable at module scope.
	StyleFunction Style = iota
	// StyleClass is an object-oriented solution template exposing the
	// entry point as a method on the canonical solution class.
	StyleClass
)

var (
	pyClassMarker = regexp.MustCompile(`(?m)^\s*class\s+Solution\b`)
	jsClassMarker = regexp.MustCompile(`(?m)\bclass\s+Solution\b`)

	pyFuncDecl = regexp.MustCompile(`(?m)^def\s+([A-Za-z_]\w*)\s*\(`)
	jsFuncDecl = regexp.MustCompile(`(?m)\bfunction\s+([A-Za-z_$][\w$]*)\s*\(`)
	jsFuncExpr = regexp.MustCompile(`(?m)\b(?:var|let|const)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:function\b|\(|[A-Za-z_$][\w$]*\s*=>)`)

	identifier = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

// DetectStyle classifies source by its structural markers. Best-effort and
// problem-template-dependent; a wrong guess still fails safely at run time.
func DetectStyle(source string, language domain.Language) Style {
	switch language {
	case domain.LanguagePython:
		if pyClassMarker.MatchString(source) {
			return StyleClass
		}
	case domain.LanguageJavaScript:
		if jsClassMarker.MatchString(source) {
			return StyleClass
		}
	}
	return StyleFunction
}

// EntryFunction resolves the function-style entry point name. A non-empty
// declared name from the problem catalog wins; otherwise the first declared
// function in the source is used. Returns "" when nothing is detectable.
func EntryFunction(source string, language domain.Language, declared string) string {
	if identifier.MatchString(declared) {
		return declared
	}
	switch language {
	case domain.LanguagePython:
		if m := pyFuncDecl.FindStringSubmatch(source); m != nil {
			return m[1]
		}
	case domain.LanguageJavaScript:
		if m := jsFuncDecl.FindStringSubmatch(source); m != nil {
			return m[1]
		}
		if m := jsFuncExpr.FindStringSubmatch(source); m != nil {
			return m[1]
		}
	}
	return ""
}

// Wrappable reports whether the source has a recognizable entry point to
// wrap. Submissions without one are run verbatim: they are expected to read
// stdin and print their own output.
func Wrappable(source string, language domain.Language, declared string) bool {
	if DetectStyle(source, language) == StyleClass {
		return true
	}
	return EntryFunction(source, language, declared) != ""
}

// Generate produces the runnable program text for one submission. The
// declared entry point may be empty; the generated program then resolves
// the entry point dynamically and reports resolution failures as graded
// errors. The only generation-time error is an unsupported language.
func Generate(source string, language domain.Language, declared string) (string, error) {
	style := DetectStyle(source, language)
	switch language {
	case domain.LanguagePython:
		if style == StyleClass {
			return wrapPythonClass(source, declared), nil
		}
		return wrapPythonFunction(source, EntryFunction(source, language, declared)), nil
	case domain.LanguageJavaScript:
		if style == StyleClass {
			return wrapJavaScriptClass(source, declared), nil
		}
		return wrapJavaScriptFunction(source, EntryFunction(source, language, declared)), nil
	}
	return "", fmt.Errorf("no harness template for language %q", language)
}
