// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reuses a well-formed incoming X-Request-ID header or generates a
// new UUID, stores it in the request context and echoes it in the response.
// LogExtractor plugs the id into loggers built by pkg/logger.
package requestid
