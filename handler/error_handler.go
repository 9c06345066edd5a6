package handler

import (
	"log/slog"
	"net/http"

	"github.com/saddagada1/bella-server-web/pkg/logger"
)

// ErrorMapper translates domain errors into HTTPError or ValidationError
// values. Errors it returns unchanged fall through to the default mapping.
type ErrorMapper func(error) error

// ErrorHandlerOption configures NewErrorHandler.
type ErrorHandlerOption func(*errorHandlerConfig)

type errorHandlerConfig struct {
	mappers []ErrorMapper
}

// WithErrorMapper registers a mapper; mappers run in registration order.
func WithErrorMapper(m ErrorMapper) ErrorHandlerOption {
	return func(c *errorHandlerConfig) {
		if m != nil {
			c.mappers = append(c.mappers, m)
		}
	}
}

// NewErrorHandler maps an error, logs it with the request's attributes and
// writes the JSON error envelope. Client errors log at WARN, server errors
// at ERROR with the original error attached.
func NewErrorHandler(log *slog.Logger, opts ...ErrorHandlerOption) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	cfg := &errorHandlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx Context, err error) {
		mapped := err
		for _, m := range cfg.mappers {
			mapped = m(mapped)
		}

		resp := &jsonResponse{status: http.StatusInternalServerError}
		resp.body.Error = errorToDetail(mapped, &resp.status)

		level := slog.LevelWarn
		if resp.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", resp.status),
			slog.String("code", resp.body.Error.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error"),
			)
		}
	}
}
