package middleware

import (
	"net/http"

	logpkg "github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/request"
	"go.uber.org/zap"
)

// Audit logs security-related responses: rejected sessions and oversized bodies
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			var event string
			switch wrapped.status {
			case http.StatusUnauthorized, http.StatusForbidden:
				event = "security_event"
			case http.StatusRequestEntityTooLarge:
				event = "oversized_request"
			default:
				return
			}

			logger.Warn(event,
				zap.String("request_id", request.RequestID(r.Context())),
				zap.Int("status_code", wrapped.status),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			)
		})
	}
}
