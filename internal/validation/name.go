package validation

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const MaxGoalNameLength = 100

// NormalizeGoalName trims surrounding space and composes the name to NFC so that
// visually identical names store and measure the same.
func NormalizeGoalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateGoalName checks a normalized goal name: 1-100 characters.
func ValidateGoalName(name string) error {
	trimmed := NormalizeGoalName(name)

	if trimmed == "" {
		return &Error{Field: "name", Message: "name is required"}
	}

	if utf8.RuneCountInString(trimmed) > MaxGoalNameLength {
		return &Error{Field: "name", Message: "name is too long (max 100 characters)"}
	}

	return nil
}
