package validator

import (
	"net/mail"
	"strings"
)

// maxEmailLength is the RFC 5321 path limit.
const maxEmailLength = 254

// ValidEmail accepts a bare address (no display name) whose domain has at
// least one dot and no empty labels.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" || len(value) > maxEmailLength {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}

			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}

			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}

			return true
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}
