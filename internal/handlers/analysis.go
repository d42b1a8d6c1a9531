package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/models"
	"github.com/benvon/board-insights/internal/request"
	"github.com/benvon/board-insights/internal/services/ai"
	"github.com/benvon/board-insights/internal/validation"
	"go.uber.org/zap"
)

const msgFiltersUnparsable = "Failed to parse extracted filters"

// FiltersResponse is the success body of a query_parser task
type FiltersResponse struct {
	Filters     json.RawMessage `json:"filters"`
	RawResponse json.RawMessage `json:"raw_response"`
}

// AnalysisResponse is the success body of an analysis task
type AnalysisResponse struct {
	Analysis    json.RawMessage `json:"analysis"`
	RawResponse json.RawMessage `json:"raw_response"`
}

// AnalysisHandler runs the life-coach analysis and the query parser
type AnalysisHandler struct {
	cfg    *config.Config
	llm    ai.CompletionService
	logger *zap.Logger
	now    func() time.Time
	inv    invocation
}

// NewAnalysisHandler creates an analysis handler. When cfg lacks the completion
// API key every invocation is answered with a configuration error.
func NewAnalysisHandler(cfg *config.Config, llm ai.CompletionService, log *zap.Logger) *AnalysisHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisHandler{
		cfg:    cfg,
		llm:    llm,
		logger: log,
		now:    time.Now,
		inv: invocation{
			name:      handlerAnalysis,
			configErr: cfg.RequireAnalysis(),
			logger:    log,
			errPrefix: "Analysis failed: ",
		},
	}
}

// Handle processes one raw invocation event
func (h *AnalysisHandler) Handle(ctx context.Context, event json.RawMessage) (gateway.Response, error) {
	return h.inv.handle(ctx, event, h.serve)
}

func (h *AnalysisHandler) serve(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := DecodeAnalysisPayload(payload, h.now())
	if err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case *QueryParseRequest:
		return h.ParseQuery(ctx, r)
	case *AnalysisRequest:
		return h.Analyze(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported task %q", req.Task())
	}
}

// ParseQuery extracts search filters from a natural-language query. Output
// that is not JSON is a parse error.
func (h *AnalysisHandler) ParseQuery(ctx context.Context, req *QueryParseRequest) (*FiltersResponse, error) {
	log := h.logger.With(zap.String("request_id", request.RequestID(ctx)))
	log.Info("query_parse_started",
		zap.String("current_date", req.CurrentDate),
		zap.Int("query_length", len(req.Query)),
	)

	completion, err := h.llm.Complete(ctx, ai.QueryParserPrompt(req.Query, req.CurrentDate), ai.QueryParserParams(h.cfg.AnalysisTimeout))
	if err != nil {
		return nil, err
	}

	parsed, ok := compactJSON(completion.Text)
	if !ok {
		log.Warn("query_parse_unparsable", zap.Int("response_length", len(completion.Text)))
		if h.cfg.DebugMode {
			log.Debug("query_parse_raw", zap.String("content", logger.SanitizeDebugContent(completion.Text)))
		}
		return nil, newError(KindParse, msgFiltersUnparsable, nil)
	}

	var filter models.QueryFilter
	h.checkShape(log, ai.OperationQueryParser, parsed, &filter)
	log.Info("query_parse_completed", zap.Bool("empty_filter", filter.IsEmpty()))

	return &FiltersResponse{Filters: parsed, RawResponse: completion.Raw}, nil
}

// Analyze summarizes a batch of boards. Output that is not JSON is returned as
// the narrative of a fallback result.
func (h *AnalysisHandler) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error) {
	log := h.logger.With(zap.String("request_id", request.RequestID(ctx)))
	log.Info("analysis_started",
		zap.Int("boards_count", len(req.Boards)),
		zap.Bool("has_history", req.History != ""),
	)

	boardsJSON, err := models.IndentBoards(req.Boards)
	if err != nil {
		return nil, err
	}

	completion, err := h.llm.Complete(ctx, ai.AnalysisPrompt(boardsJSON, req.History), ai.AnalysisParams(h.cfg.AnalysisTimeout))
	if err != nil {
		return nil, err
	}

	parsed, ok := compactJSON(completion.Text)
	if !ok {
		log.Warn("analysis_unparsable", zap.Int("response_length", len(completion.Text)))
		if h.cfg.DebugMode {
			log.Debug("analysis_raw", zap.String("content", logger.SanitizeDebugContent(completion.Text)))
		}
		fallback, err := json.Marshal(models.FallbackAnalysis(completion.Text))
		if err != nil {
			return nil, err
		}
		return &AnalysisResponse{Analysis: fallback, RawResponse: completion.Raw}, nil
	}

	var result models.AnalysisResult
	h.checkShape(log, ai.OperationAnalysis, parsed, &result)

	return &AnalysisResponse{Analysis: parsed, RawResponse: completion.Raw}, nil
}

// checkShape decodes parsed into the typed model and logs any drift. It never
// changes the response.
func (h *AnalysisHandler) checkShape(log *zap.Logger, operation string, parsed json.RawMessage, target any) {
	if err := json.Unmarshal(parsed, target); err != nil {
		log.Warn("completion_schema_drift",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return
	}
	if err := validation.Validate.Struct(target); err != nil {
		log.Warn("completion_schema_drift",
			zap.String("operation", operation),
			zap.Strings("fields", validation.FailedFields(err)),
		)
	}
}

// compactJSON reports whether text is a JSON document and returns it compacted
func compactJSON(text string) (json.RawMessage, bool) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, false
	}
	if buf.Len() == 0 {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}
