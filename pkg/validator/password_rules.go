package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~` + "`" + `]`)

	// Common weak passwords - curated list of frequently compromised passwords
	commonPasswords = map[string]bool{
		"password":      true,
		"123456":        true,
		"password123":   true,
		"admin":         true,
		"qwerty":        true,
		"abc123":        true,
		"letmein":       true,
		"welcome":       true,
		"monkey":        true,
		"1234567890":    true,
		"dragon":        true,
		"sunshine":      true,
		"iloveyou":      true,
		"princess":      true,
		"football":      true,
		"charlie":       true,
		"aa123456":      true,
		"donald":        true,
		"password1":     true,
		"qwerty123":     true,
		"12345678":      true,
		"123456789":     true,
		"1234":          true,
		"12345":         true,
		"123123":        true,
		"111111":        true,
		"000000":        true,
		"qwertyuiop":    true,
		"asdfghjkl":     true,
		"zxcvbnm":       true,
		"qwerty12":      true,
		"qwerty1":       true,
		"password12":    true,
		"password!":     true,
		"Password":      true,
		"Password1":     true,
		"Password123":   true,
		"admin123":      true,
		"administrator": true,
		"root":          true,
		"toor":          true,
		"guest":         true,
		"test":          true,
		"testing":       true,
		"user":          true,
		"login":         true,
		"pass":          true,
		"master":        true,
		"secret":        true,
		"trustno1":      true,
		"baseball":      true,
		"basketball":    true,
		"soccer":        true,
		"hockey":        true,
		"tennis":        true,
		"golf":          true,
		"michael":       true,
		"jennifer":      true,
		"jessica":       true,
		"ashley":        true,
		"sarah":         true,
		"amanda":        true,
		"joshua":        true,
		"matthew":       true,
		"daniel":        true,
		"david":         true,
		"christopher":   true,
		"andrew":        true,
		"superman":      true,
		"batman":        true,
		"spiderman":     true,
		"pokemon":       true,
		"nintendo":      true,
		"windows":       true,
		"computer":      true,
		"internet":      true,
		"google":        true,
		"facebook":      true,
		"twitter":       true,
		"instagram":     true,
		"linkedin":      true,
		"amazon":        true,
		"apple":         true,
		"microsoft":     true,
		"samsung":       true,
		"iphone":        true,
		"android":       true,
		"freedom":       true,
		"america":       true,
		"eagle":         true,
		"flower":        true,
		"spring":        true,
		"summer":        true,
		"winter":        true,
		"autumn":        true,
		"shadow":        true,
		"midnight":      true,
		"silver":        true,
		"golden":        true,
		"diamond":       true,
		"rainbow":       true,
		"chocolate":     true,
		"vanilla":       true,
		"banana":        true,
		"orange":        true,
		"purple":        true,
		"yellow":        true,
		"jordan":        true,
		"hunter":        true,
		"jackson":       true,
		"madison":       true,
		"taylor":        true,
		"hannah":        true,
		"samantha":      true,
		"tyler":         true,
		"nicole":        true,
		"brittany":      true,
		"12341234":      true,
		"1q2w3e4r":      true,
		"1qaz2wsx":      true,
		"zaq12wsx":      true,
		"qazwsx":        true,
		"qazxsw":        true,
		"654321":        true,
		"987654321":     true,
		"abcdef":        true,
		"abcd1234":      true,
		"a1b2c3":        true,
		"123qwe":        true,
		"qwe123":        true,
		"asd123":        true,
		"123asd":        true,
		"zxc123":        true,
		"123zxc":        true,
	})

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

type PasswordStrengthConfig struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigits    bool
	RequireSpecial   bool
	MinCharClasses   int // Minimum number of different character classes required
}

// DefaultPasswordStrength returns the account password policy: 8 to 72 bytes
// from at least two character classes.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      bcryptMaxBytes,
		MinCharClasses: 2,
	}
}

func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < config.MinLength || len(value) > config.MaxLength {
				return false
			}

			hasUpper := uppercaseRegex.MatchString(value)
			hasLower := lowercaseRegex.MatchString(value)
			hasDigit := digitRegex.MatchString(value)
			hasSpecial := specialCharRegex.MatchString(value)

			if config.RequireUppercase && !hasUpper ||
				config.RequireLowercase && !hasLower ||
				config.RequireDigits && !hasDigit ||
				config.RequireSpecial && !hasSpecial {
				return false
			}

			charClasses := 0
			for _, has := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
				if has {
					charClasses++
				}
			}
			return charClasses >= config.MinCharClasses
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("password must be %d-%d characters and mix at least %d character types", config.MinLength, config.MaxLength, config.MinCharClasses)},
	}
}

func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !commonPasswords[strings.ToLower(value)]
		},
		Error: ValidationError{Field: field, Message: "password is too common, please choose a different one"},
	}
}
