package auth

import (
	"errors"
	"fmt"
)

// Authentication decisions. Callers collapse these into one uniform
// client-facing message per flow.
var (
	ErrUnauthenticated   = errors.New("auth: not authenticated")
	ErrInvalidCredential = errors.New("auth: invalid credential")
	ErrBadSignature      = errors.New("auth: bad token signature")
	ErrExpired           = errors.New("auth: expired")
	ErrSuperseded        = errors.New("auth: token superseded")
	ErrMismatch          = errors.New("auth: code mismatch")
	ErrProviderRejected  = errors.New("auth: identity provider rejected")
)

// Lookup and infrastructure outcomes.
var (
	ErrNotFound          = errors.New("auth: user not found")
	ErrUnavailable       = errors.New("auth: dependency unavailable")
	ErrSharedTokenSecret = errors.New("auth: access and refresh secrets must differ")
)

// Identity fields that must be unique across users.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
)

// DuplicateIdentityError reports a unique identity collision on Field.
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("auth: %s already in use", e.Field)
}

// AsDuplicateIdentity unwraps a DuplicateIdentityError from err.
func AsDuplicateIdentity(err error) (*DuplicateIdentityError, bool) {
	var dup *DuplicateIdentityError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}

// IsAuthDecision reports whether err is a rejected credential rather than a
// dependency failure.
func IsAuthDecision(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrSuperseded) ||
		errors.Is(err, ErrMismatch) ||
		errors.Is(err, ErrProviderRejected)
}

// unavailable wraps any store failure that is not a domain outcome.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if _, ok := AsDuplicateIdentity(err); ok {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}
