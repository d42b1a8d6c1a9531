package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/metrics"
	"github.com/benvon/board-insights/internal/request"
	"github.com/benvon/board-insights/internal/services/ai"
	"go.uber.org/zap"
)

// Handler names label logs and metrics
const (
	handlerCompress = "compress"
	handlerAnalysis = "analysis"
)

// withRequestID attaches the gateway request ID, falling back to the Lambda
// invocation ID and then to any ID already on ctx.
func withRequestID(ctx context.Context, evt *gateway.Event) context.Context {
	id := ""
	if evt != nil {
		id = evt.RequestID
	}
	if id == "" {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			id = lc.AwsRequestID
		}
	}
	if id == "" {
		id = request.RequestID(ctx)
	}
	return request.WithRequestID(ctx, id)
}

// invocation is the per-call frame shared by both handlers: it answers
// preflights, enforces startup configuration and recovers panics.
type invocation struct {
	name      string
	configErr error
	logger    *zap.Logger
	// errPrefix is prepended to unclassified error messages
	errPrefix string
}

type serveFunc func(ctx context.Context, payload json.RawMessage) (any, error)

func (inv invocation) handle(ctx context.Context, raw json.RawMessage, serve serveFunc) (resp gateway.Response, err error) {
	evt, parseErr := gateway.ParseEvent(raw)
	ctx = withRequestID(ctx, evt)
	log := inv.logger.With(zap.String("request_id", request.RequestID(ctx)))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("handler_panic",
				zap.String("handler", inv.name),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
			resp = classify(fmt.Errorf("%v", rec), inv.errPrefix).Response()
			err = nil
		}
		metrics.ObserveInvocation(inv.name, resp.StatusCode)
	}()

	if parseErr == nil && evt.IsPreflight() {
		return gateway.Preflight(), nil
	}

	if inv.configErr != nil {
		log.Error("handler_misconfigured", zap.String("handler", inv.name), zap.Error(inv.configErr))
		return classify(inv.configErr, "").Response(), nil
	}

	if parseErr != nil {
		log.Warn("invalid_event", zap.String("handler", inv.name), zap.Error(parseErr))
		return classify(parseErr, "").Response(), nil
	}

	result, err := serve(ctx, evt.Payload)
	if err != nil {
		herr := classify(err, inv.errPrefix)
		fields := []zap.Field{
			zap.String("handler", inv.name),
			zap.String("kind", herr.Kind.String()),
			zap.Int("status", herr.Status()),
			zap.String("error", logger.SanitizeError(err)),
		}
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			fields = append(fields,
				zap.Int("upstream_status", upstream.StatusCode),
				zap.String("upstream_body", logger.SanitizeUpstreamBody(upstream.Body)),
			)
		}
		if herr.Status() >= http.StatusInternalServerError {
			log.Error("handler_failed", fields...)
		} else {
			log.Warn("handler_rejected", fields...)
		}
		return herr.Response(), nil
	}

	if r, ok := result.(gateway.Response); ok {
		return r, nil
	}
	return gateway.JSON(http.StatusOK, result), nil
}
