package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saddagada1/bella-server-web/pkg/binder"
	"github.com/saddagada1/bella-server-web/pkg/validator"
)

// JSONResponse is the standard JSON response envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
	raw    bool
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(j.status)
	if j.raw {
		return json.NewEncoder(w).Encode(j.body.Data)
	}
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// WithoutEnvelope writes the value itself instead of {"data": value}.
func WithoutEnvelope() JSONOption {
	return func(r *jsonResponse) {
		r.raw = true
	}
}

// JSON creates a JSON response with options
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}

	switch val := v.(type) {
	case JSONResponse:
		r.body = val
	case error:
		r.body.Error = errorToDetail(val, &r.status)
	default:
		r.body.Data = v
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// JSONError creates a JSON error response from an error with options
func JSONError(err error, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusInternalServerError}
	r.body.Error = errorToDetail(err, &r.status)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// errorToDetail maps err to its wire form. Unknown errors become a generic
// 500 so internal messages never reach the client.
func errorToDetail(err error, status *int) *ErrorDetail {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		*status = httpErr.Code
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return &ErrorDetail{Code: httpErr.Key, Message: msg, Details: httpErr.Details}
	}

	var valErr ValidationError
	if errors.As(err, &valErr) {
		*status = http.StatusUnprocessableEntity
		return &ErrorDetail{Code: "validation_error", Message: "Validation failed", Details: valErr}
	}

	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		*status = http.StatusUnprocessableEntity
		details := make(map[string][]string, len(verrs))
		for _, field := range verrs.Fields() {
			details[field] = verrs.Get(field)
		}
		return &ErrorDetail{Code: "validation_error", Message: "Validation failed", Details: details}
	}

	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		*status = http.StatusUnsupportedMediaType
		return &ErrorDetail{Code: "unsupported_media_type", Message: "Expected application/json"}
	case errors.Is(err, binder.ErrRequestTooLarge):
		*status = http.StatusRequestEntityTooLarge
		return &ErrorDetail{Code: "request_too_large", Message: "Request body too large"}
	case errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParsePath):
		*status = http.StatusBadRequest
		return &ErrorDetail{Code: "bad_request", Message: "Malformed request"}
	}

	*status = http.StatusInternalServerError
	return &ErrorDetail{Code: "internal_error", Message: "An error occurred processing your request"}
}
