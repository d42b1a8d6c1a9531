package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	Recovery(zap.NewNop())(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRecovery_PanicRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "explicit panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("test panic")
			},
		},
		{
			name: "nil map write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var nilMap map[string]string
				nilMap["key"] = "value"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.ErrorLevel)
			req := httptest.NewRequest(http.MethodPost, "/analysis", nil)
			w := httptest.NewRecorder()

			// Should not panic
			Recovery(zap.New(core))(tt.handler).ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("Expected status 500, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %q", ct)
			}
			if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
				t.Errorf("Expected CORS origin *, got %q", origin)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["error"] != "An unexpected error occurred" {
				t.Errorf("error = %q", body["error"])
			}
			if logs.FilterMessage("panic_recovered").Len() != 1 {
				t.Error("Expected panic to be logged")
			}
		})
	}
}
