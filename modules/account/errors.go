package account

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/saddagada1/bella-server-web/handler"
	"github.com/saddagada1/bella-server-web/svc/auth"
)

// Client-facing errors. Authentication failures share one message per flow.
var (
	ErrNotAuthenticated = handler.NewHTTPError(http.StatusUnauthorized, "not_authenticated", "Not Authenticated")
	ErrInvalidLogin     = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "Invalid Email or Password")
	ErrIncorrectPass    = handler.NewHTTPError(http.StatusBadRequest, "incorrect_password", "Incorrect Password")
	ErrTokenInvalid     = handler.NewHTTPError(http.StatusBadRequest, "token_invalid", "Token Invalid or Expired")
	ErrNoAccount        = handler.NewHTTPError(http.StatusNotFound, "not_found", "No Account Found")
	ErrGoogleRejected   = handler.NewHTTPError(http.StatusUnauthorized, "provider_rejected", "Not Authenticated With Google")
	ErrUsernameTaken    = handler.NewHTTPError(http.StatusConflict, "username_taken", "Username Taken")
	ErrEmailInUse       = handler.NewHTTPError(http.StatusConflict, "email_in_use", "Email in Use")
	ErrServiceDown      = handler.NewHTTPError(http.StatusServiceUnavailable, "unavailable", "Service Unavailable, Try Again")
)

// MapError translates auth outcomes into HTTP errors. Dependency failures are
// checked first so a timeout is never reported as a rejected credential.
// Errors it does not recognise are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, auth.ErrUnavailable) {
		return ErrServiceDown
	}

	if dup, ok := auth.AsDuplicateIdentity(err); ok {
		if dup.Field == auth.FieldEmail {
			return ErrEmailInUse.WithDetails(map[string][]string{
				auth.FieldEmail: {ErrEmailInUse.Message},
			})
		}
		return ErrUsernameTaken.WithDetails(map[string][]string{
			auth.FieldUsername: {ErrUsernameTaken.Message},
		})
	}

	var fieldErr *auth.FieldError
	if errors.As(err, &fieldErr) {
		return ErrIncorrectPass.WithDetails(map[string][]string{
			fieldErr.Field: {ErrIncorrectPass.Message},
		})
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredential):
		return ErrInvalidLogin
	case errors.Is(err, auth.ErrExpired), errors.Is(err, auth.ErrMismatch):
		return ErrTokenInvalid
	case errors.Is(err, auth.ErrNotFound):
		return ErrNoAccount
	case errors.Is(err, auth.ErrProviderRejected):
		return ErrGoogleRejected
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrSuperseded),
		errors.Is(err, auth.ErrBadSignature):
		return ErrNotAuthenticated
	}
	return err
}

// guardError narrows a guard rejection to the responses a guard may give.
// Token expiry at a guard is an authentication failure, not a bad OTP.
func guardError(err error) error {
	switch {
	case errors.Is(err, auth.ErrUnavailable):
		return ErrServiceDown
	case errors.Is(err, auth.ErrProviderRejected):
		return ErrGoogleRejected
	default:
		return ErrNotAuthenticated
	}
}

func (m *Module) respondGuardError(w http.ResponseWriter, r *http.Request, err error) {
	// the cause is kept as text only; its sentinels must not reach MapError
	m.errorHandler(handler.NewContext(w, r), fmt.Errorf("%w: %v", guardError(err), err))
}
