// Package validator builds declarative input checks.
//
// Every exported rule constructor returns a Rule: a Check func plus the
// ValidationError reported when the check fails. Apply evaluates rules and
// aggregates the failures into ValidationErrors, which implements error and
// matches ErrValidationFailed under errors.Is.
//
//	err := validator.Apply(
//		validator.ValidEmail("email", in.Email),
//		validator.ValidUsername("username", in.Username, 3, 30),
//		validator.StrongPassword("password", in.Password, validator.DefaultPasswordStrength()),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		// render field-level messages
//	}
//
// Rules hold no state and are safe for concurrent use.
package validator
