package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benvon/board-insights/internal/request"
	"go.uber.org/zap"
)

func TestHTTPHandler_RoundTrip(t *testing.T) {
	t.Parallel()

	var seen *Event
	h := HandlerFunc(func(_ context.Context, raw json.RawMessage) (Response, error) {
		evt, err := ParseEvent(raw)
		if err != nil {
			return Error(http.StatusBadRequest, "Invalid request body"), nil
		}
		seen = evt
		if evt.IsPreflight() {
			return Preflight(), nil
		}
		return JSON(http.StatusOK, map[string]string{"echo": string(evt.Payload)}), nil
	})

	srv := HTTPHandler(h, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/analysis", strings.NewReader(`{"task":"analysis"}`))
	req = req.WithContext(request.WithRequestID(req.Context(), "req-7"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if seen == nil || seen.Method != http.MethodPost || seen.RequestID != "req-7" {
		t.Fatalf("unexpected event: %+v", seen)
	}
	if string(seen.Payload) != `{"task":"analysis"}` {
		t.Errorf("payload = %s", seen.Payload)
	}

	pre := httptest.NewRequest(http.MethodOptions, "/analysis", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, pre)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("preflight = %d %q, want 200 empty", rec.Code, rec.Body.String())
	}
}

func TestHTTPHandler_HandlerError(t *testing.T) {
	t.Parallel()

	h := HandlerFunc(func(context.Context, json.RawMessage) (Response, error) {
		return Response{}, errors.New("boom")
	})

	rec := httptest.NewRecorder()
	HTTPHandler(h, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/compress", strings.NewReader("{}")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("body = %q, want it to contain the error", rec.Body.String())
	}
}

func TestEventFromRequest_BinaryBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/compress", strings.NewReader("\xff\xfe"))
	raw, err := EventFromRequest(req)
	if err != nil {
		t.Fatalf("EventFromRequest() error = %v", err)
	}

	var decoded struct {
		IsBase64Encoded bool `json:"isBase64Encoded"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("event is not JSON: %v", err)
	}
	if !decoded.IsBase64Encoded {
		t.Error("expected binary body to be base64 encoded")
	}
}
