// Package shield provides the HTTP middleware of the slotwatch status
// endpoint: security headers for a JSON-only API, HEAD support and a
// per-request structured log line carrying a trace ID.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.Stack(logger) {
//	    r.Use(mw)
//	}
package shield

import (
	"log/slog"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// Stack returns the middleware applied to the status endpoint, outermost
// first: HeadToGet, SecurityHeaders, TraceID.
func Stack(logger *slog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		TraceID(logger),
	}
}
