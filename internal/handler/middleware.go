package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/kdduha/llama-vision/backend/internal/apperr"
	"github.com/rs/zerolog"
)

// Recoverer turns a handler panic into a JSON system error.
func Recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("handler panic")
				writeError(w, logger, apperr.System("Internal server error", fmt.Errorf("panic: %v", rec)).
					WithDetails("panic", fmt.Sprint(rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Throttle bounds in-flight requests to limit and answers the rest with a
// JSON 429. A non-positive limit disables it.
func Throttle(limit int, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		tokens := make(chan struct{}, limit)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case tokens <- struct{}{}:
				defer func() { <-tokens }()
				next.ServeHTTP(w, r)
			default:
				writeError(w, logger, apperr.Busy("Server capacity exceeded"))
			}
		})
	}
}

// Timeout puts a deadline on the request context. It never writes a response
// itself; handlers map the expired context to their own JSON error.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
