// Package handler turns typed functions into http.HandlerFunc values.
//
// A HandlerFunc receives a Context (the request context plus the request and
// response writer) and a request value filled by the configured binders. It
// returns a Response: JSON for success bodies, Empty for status-only replies,
// or Error to send a failure through the ErrorHandler.
//
//	errs := handler.NewErrorHandler(log, handler.WithErrorMapper(mapAuthErrors))
//
//	r.Post("/auth/login", handler.Wrap(login,
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, LoginRequest](errs),
//	))
//
// Errors are rendered as {"error": {"code", "message", "details"}}. HTTPError
// controls status and message directly; ValidationError and
// validator.ValidationErrors become 422 with field details; binder failures
// become 400, 413 or 415; anything else is a 500 with a generic message.
package handler
