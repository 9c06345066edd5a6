// Package httpserver runs the service's net/http server with graceful
// shutdown and provides the small HTTP utilities shared by every route:
// a readiness handler and a structured request logger.
//
// Run blocks until the context is cancelled, SIGINT/SIGTERM arrives or the
// listener fails, then drains in-flight requests within the shutdown timeout.
package httpserver
