// Package shield provides the HTTP middleware stack of the ideaswipe API:
// security headers, JSON body limits, request tracing, HEAD handling and
// per-endpoint rate limiting.
//
// Usage:
//
//	r := chi.NewRouter()
//	stack, rl := shield.DefaultStack(db)
//	rl.StartReloader(done)
//	for _, mw := range stack {
//	    r.Use(mw)
//	}
//	r.Group(func(r chi.Router) {
//	    r.Use(rl.Middleware) // after routing, so the route pattern is known
//	    r.Post("/api/ideas/{id}/swipe", ...)
//	})
package shield

import (
	"database/sql"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// DefaultMaxBody caps JSON request bodies (64 KiB).
const DefaultMaxBody int64 = 64 * 1024

// DefaultStack returns the router-level middleware stack, ordered:
// HeadToGet → SecurityHeaders → MaxBody → TraceID.
// The returned RateLimiter is not part of the stack: it keys buckets on the
// matched route pattern, so it must be mounted inside a route group.
func DefaultStack(db *sql.DB) ([]func(http.Handler) http.Handler, *RateLimiter) {
	rl := NewRateLimiter(db)
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxBody(DefaultMaxBody),
		TraceID,
	}, rl
}
