package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNilResponse indicates a handler returned nil instead of a Response
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error that already knows its status code, machine-readable
// key and client-facing message.
type HTTPError struct {
	Code    int
	Key     string
	Message string
	Details map[string][]string
}

func NewHTTPError(code int, key, message string) HTTPError {
	return HTTPError{Code: code, Key: key, Message: message}
}

func (e HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.Code, e.Key, msg)
}

// WithDetails returns a copy of e carrying field-level messages.
func (e HTTPError) WithDetails(details map[string][]string) HTTPError {
	e.Details = details
	return e
}

// ValidationError maps field names to messages.
type ValidationError map[string][]string

func (v ValidationError) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationError) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(v[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
