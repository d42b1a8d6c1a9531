package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/board-insights/internal/metrics"
	"github.com/benvon/board-insights/internal/request"
	"github.com/benvon/board-insights/internal/telemetry"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the default chat model
	DefaultModel = "deepseek-chat"
	// DefaultBaseURL is the default OpenAI-compatible endpoint
	DefaultBaseURL = "https://api.deepseek.com"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
)

// OpenAIProvider implements CompletionService on any OpenAI-compatible chat
// completions endpoint. SDK retries are disabled: one failure is one error.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a provider for the given endpoint and model
func NewOpenAIProvider(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool, opts ...option.RequestOption) *OpenAIProvider {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}, opts...)

	if debugMode {
		logger.Debug("llm_provider_configured",
			zap.String("base_url", baseURL),
			zap.String("model", model),
			zap.String("api_key", SanitizeAPIKey(apiKey)),
		)
	}

	return &OpenAIProvider{
		client:    openai.NewClient(clientOpts...),
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Model returns the configured chat model
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends one chat completion and returns its first choice
func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt, params Params) (completion *Completion, err error) {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "completion",
		attribute.String("completion.operation", params.Operation),
		attribute.String("completion.model", p.model),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	req, reqOpts := p.buildRequest(prompt, params)
	requestID := request.RequestID(ctx)
	userID := ""
	if id, ok := request.UserID(ctx); ok {
		userID = id.String()
	}

	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", params.Operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt.System)+len(prompt.User)),
			zap.String("system_preview", SanitizePrompt(prompt.System, false)),
			zap.String("prompt_preview", SanitizePrompt(prompt.User, true)),
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req, reqOpts...)
	latency := time.Since(start)
	metrics.ObserveCompletion(params.Operation, err, latency)

	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", params.Operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userID),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if upstream := ExtractUpstreamError(err); upstream != nil {
			return nil, upstream
		}
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoicesInResponse
	}

	completion = &Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Raw: json.RawMessage(resp.RawJSON()),
	}
	metrics.ObserveTokens(params.Operation, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	span.SetAttributes(attribute.Int64("completion.total_tokens", completion.Usage.TotalTokens))

	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", params.Operation),
			zap.String("model", completion.Model),
			zap.Int("response_length", len(completion.Text)),
			zap.String("response_preview", SanitizeResponse(completion.Text, true)),
			zap.Int64("total_tokens", completion.Usage.TotalTokens),
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return completion, nil
}

func (p *OpenAIProvider) buildRequest(prompt Prompt, params Params) (openai.ChatCompletionNewParams, []option.RequestOption) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(params.Temperature),
	}
	if params.TopP != nil {
		req.TopP = openai.Float(*params.TopP)
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(params.MaxTokens)
	}
	if params.JSONObject {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	var opts []option.RequestOption
	if params.DisableThinking {
		opts = append(opts, option.WithJSONSet("thinking", map[string]string{"type": "disabled"}))
	}
	return req, opts
}

// Ping verifies the endpoint accepts the API key by listing models
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		if upstream := ExtractUpstreamError(err); upstream != nil {
			return upstream
		}
		return fmt.Errorf("completion endpoint unreachable: %w", err)
	}
	return nil
}
