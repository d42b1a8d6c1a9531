package middleware

import (
	"net/http"

	"github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/request"
)

// RequestID propagates X-Request-ID, generating one when the caller sent none
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.SanitizeString(r.Header.Get(request.RequestIDHeader), 64)
		ctx := request.WithRequestID(r.Context(), id)
		w.Header().Set(request.RequestIDHeader, request.RequestID(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
