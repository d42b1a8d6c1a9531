package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/benvon/board-insights/internal/request"
	"go.uber.org/zap"
)

// Handler processes one raw invocation event
type Handler interface {
	Handle(ctx context.Context, event json.RawMessage) (Response, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, event json.RawMessage) (Response, error)

// Handle calls f(ctx, event)
func (f HandlerFunc) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	return f(ctx, event)
}

// HTTPHandler serves an invocation handler over plain HTTP by wrapping each
// request in a proxy event and writing the proxy response back.
func HTTPHandler(h Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		event, err := EventFromRequest(r)
		if err != nil {
			WriteResponse(w, Error(http.StatusBadRequest, "Invalid request body"))
			return
		}

		resp, err := h.Handle(r.Context(), event)
		if err != nil {
			log.Error("handler_failed",
				zap.String("request_id", request.RequestID(r.Context())),
				zap.Error(err))
			resp = Error(http.StatusInternalServerError, err.Error())
		}
		WriteResponse(w, resp)
	})
}

// EventFromRequest encodes r as an API Gateway proxy event
func EventFromRequest(r *http.Request) (json.RawMessage, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	proxy := events.APIGatewayProxyRequest{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Headers:    headers,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  request.RequestID(r.Context()),
			HTTPMethod: r.Method,
			Identity:   events.APIGatewayRequestIdentity{SourceIP: request.ClientIP(r)},
		},
	}
	if utf8.Valid(body) {
		proxy.Body = string(body)
	} else {
		proxy.Body = base64.StdEncoding.EncodeToString(body)
		proxy.IsBase64Encoded = true
	}

	return json.Marshal(proxy)
}

// WriteResponse writes a proxy response to w
func WriteResponse(w http.ResponseWriter, resp Response) {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	for name, values := range resp.MultiValueHeaders {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err == nil {
			_, _ = w.Write(decoded)
			return
		}
	}
	_, _ = io.WriteString(w, resp.Body)
}
