package handler

import "net/http"

type errorResponse struct {
	err error
}

// Render hands the error back to Wrap so the configured ErrorHandler maps,
// logs and renders it.
func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error returns a Response that routes err through the ErrorHandler.
func Error(err error) Response {
	return errorResponse{err: err}
}
