package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/saddagada1/bella-server-web/pkg/logger"
)

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// HealthHandler answers 200 "READY" when every check passes within timeout
// and 503 "NOT_READY" otherwise. With no checks it acts as a liveness probe.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks ...HealthCheck) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					slog.String("check", c.Name),
					logger.Error(err),
					logger.Component("healthcheck"),
				)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
