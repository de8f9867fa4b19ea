// Package email holds email handling helpers shared across the engine.
package email

import (
	"strings"
	"unicode"
)

// Normalize trims whitespace and lower-cases an email address. The normalized
// form is the uniqueness key for person identity across the entire system, so
// every lookup and create must pass through here.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// DeriveNameFromEmail guesses first/last name parts from the local part of an
// email address. Used only as a display fallback when a record predates name
// capture; never written back to the person record.
func DeriveNameFromEmail(addr string) (string, string) {
	localPart := addr
	if at := strings.IndexByte(addr, '@'); at > 0 {
		localPart = addr[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
