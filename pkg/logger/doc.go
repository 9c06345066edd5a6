// Package logger builds log/slog loggers for the service and provides
// attribute helpers so log keys stay consistent across packages.
//
// New returns a *slog.Logger whose handler is wrapped by a decorator that
// pulls request scoped values (request id, authenticated user id) out of the
// context on every record:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "bella-server"),
//		logger.WithContextExtractors(requestid.LogExtractor, auth.LogExtractor),
//	)
//	log.InfoContext(ctx, "user registered", logger.UserID(user.ID), logger.Component("account"))
//
// Helpers such as Error and UserID return an empty slog.Attr for nil input,
// which slog drops, so callers never need to guard them.
package logger
