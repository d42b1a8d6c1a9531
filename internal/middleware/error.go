package middleware

import (
	"net/http"

	"github.com/benvon/board-insights/internal/gateway"
	logpkg "github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/request"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 error envelope
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Panic details stay in the log
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("request_id", request.RequestID(r.Context())),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
					)
					gateway.WriteResponse(w, gateway.Error(http.StatusInternalServerError, "An unexpected error occurred"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
