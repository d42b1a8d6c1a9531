package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout leaves headroom over the longest completion call
const DefaultRequestTimeout = 150 * time.Second

// timeoutBody is written when a request exceeds its deadline
const timeoutBody = `{"error":"Request timeout"}`

// Timeout creates a middleware that enforces a deadline on request handlers
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		handler := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
