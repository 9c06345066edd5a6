package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func ValidUsername(field, value string, minLen int, maxLen int) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			if len(value) < minLen || len(value) > maxLen {
				return false
			}
			if strings.HasPrefix(value, ".") || strings.HasSuffix(value, ".") || strings.Contains(value, "..") {
				return false
			}
			return usernameRegex.MatchString(value)
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("username must be %d-%d characters long and contain only letters, numbers, dots, underscores, and hyphens", minLen, maxLen)},
	}
}
