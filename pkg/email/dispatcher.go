package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saddagada1/bella-server-web/pkg/logger"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher sends emails in the background. Callers never wait for the
// provider and never see its errors; failures are logged.
type Dispatcher struct {
	sender  EmailSender
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithDispatchLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithSendTimeout bounds each provider call.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewDispatcher(sender EmailSender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		log:     logger.Discard(),
		timeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With(logger.Component("email"))
	return d
}

// Dispatch hands params to the sender on a new goroutine. The request context
// only contributes its values: the send outlives request cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, params SendEmailParams) {
	sendCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.ErrorContext(sendCtx, "email sender panicked",
					logger.Error(fmt.Errorf("panic: %v", r)),
					slog.String("tag", params.Tag))
			}
		}()

		ctx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		start := time.Now()
		if err := d.sender.SendEmail(ctx, params); err != nil {
			d.log.ErrorContext(ctx, "failed to send email",
				logger.Error(err),
				slog.String("tag", params.Tag),
				logger.Duration(time.Since(start)))
			return
		}
		d.log.DebugContext(ctx, "email sent",
			slog.String("tag", params.Tag),
			logger.Duration(time.Since(start)))
	}()
}

// Wait blocks until every dispatched email has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
