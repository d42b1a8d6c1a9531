package middleware

import (
	"fmt"
	"net/http"

	"github.com/benvon/board-insights/internal/gateway"
)

// DefaultMaxRequestSize is the default maximum request body size (6MB, the
// synchronous Lambda payload limit)
const DefaultMaxRequestSize int64 = 6 << 20

// MaxRequestSize rejects request bodies larger than maxBytes
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				gateway.WriteResponse(w, gateway.Error(http.StatusRequestEntityTooLarge,
					fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes)))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
