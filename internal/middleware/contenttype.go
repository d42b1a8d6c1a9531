package middleware

import (
	"mime"
	"net/http"

	"github.com/benvon/board-insights/internal/gateway"
)

// ContentType requires JSON bodies on POST requests
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				gateway.WriteResponse(w, gateway.Error(http.StatusBadRequest, "Content-Type header is required"))
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				gateway.WriteResponse(w, gateway.Error(http.StatusUnsupportedMediaType, "Content-Type must be application/json"))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
