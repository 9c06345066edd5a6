package sanitizer

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims and lowercases an address. Malformed input is returned
// trimmed and lowercased so validation can report it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and case-folds a username so that lookups and
// uniqueness do not depend on the case the user typed.
func NormalizeUsername(username string) string {
	// a Caser is stateful, so each call gets its own
	return cases.Fold().String(strings.TrimSpace(username))
}
