package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantRoute     string
	}{
		{
			name:          "compress request",
			method:        http.MethodPost,
			path:          "/compress",
			handlerStatus: http.StatusOK,
			wantRoute:     "/compress",
		},
		{
			name:          "rejected session",
			method:        http.MethodPost,
			path:          "/compress",
			handlerStatus: http.StatusUnauthorized,
			wantRoute:     "/compress",
		},
		{
			name:          "unmatched route",
			method:        http.MethodGet,
			path:          "/notfound",
			handlerStatus: http.StatusNotFound,
			wantRoute:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.InfoLevel)
			router := mux.NewRouter()
			router.Use(Logging(zap.New(core)))
			router.HandleFunc("/compress", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})
			router.NotFoundHandler = Logging(zap.New(core))(http.NotFoundHandler())

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected 1 http_request entry, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("status_code = %v, want %d", fields["status_code"], tt.handlerStatus)
			}
			if fields["route"] != tt.wantRoute {
				t.Errorf("route = %v, want %s", fields["route"], tt.wantRoute)
			}
			if fields["method"] != tt.method {
				t.Errorf("method = %v, want %s", fields["method"], tt.method)
			}
		})
	}
}

func TestStatusRecorder_FirstWriteWins(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rec := newStatusRecorder(w)
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)

	if rec.status != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.status)
	}
}

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantEvent string
	}{
		{status: http.StatusOK},
		{status: http.StatusUnauthorized, wantEvent: "security_event"},
		{status: http.StatusForbidden, wantEvent: "security_event"},
		{status: http.StatusRequestEntityTooLarge, wantEvent: "oversized_request"},
		{status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.WarnLevel)
			handler := Audit(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodPost, "/analysis", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantEvent == "" {
				if logs.Len() != 0 {
					t.Errorf("Expected no audit entries, got %d", logs.Len())
				}
				return
			}
			entries := logs.FilterMessage(tt.wantEvent).All()
			if len(entries) != 1 {
				t.Fatalf("Expected 1 %s entry, got %d", tt.wantEvent, len(entries))
			}
			if ip := entries[0].ContextMap()["ip"]; ip != "203.0.113.9" {
				t.Errorf("ip = %v, want 203.0.113.9", ip)
			}
		})
	}
}
