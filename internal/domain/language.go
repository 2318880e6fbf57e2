package domain

import "strings"

// Language identifies a supported execution runtime.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
)

// ParseLanguage normalizes a raw language identifier. The boolean is false
// when the language is not part of the supported set.
func ParseLanguage(raw string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(raw)))
	switch lang {
	case LanguagePython, LanguageJavaScript:
		return lang, true
	}
	return "", false
}

// SupportedLanguages lists every language the engine can grade.
func SupportedLanguages() []string {
	return []string{string(LanguagePython), string(LanguageJavaScript)}
}
