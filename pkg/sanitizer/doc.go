// Package sanitizer normalises user input before it is validated or stored.
//
// Helpers are plain string functions that compose with Apply and Compose:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.RemoveControlChars)
//	bio := clean(in.Bio)
//
//	email := sanitizer.NormalizeEmail(in.Email)       // "User@Example.COM " -> "user@example.com"
//	name := sanitizer.NormalizeUsername(in.Username)  // case-folded via golang.org/x/text/cases
package sanitizer
