package ai

import (
	"context"
	"encoding/json"
	"time"
)

// Operation names label logs, spans and metrics for each completion use
const (
	OperationMerge       = "merge"
	OperationAnalysis    = "analysis"
	OperationQueryParser = "query_parser"
)

// CompletionService generates text from a system and user prompt pair
type CompletionService interface {
	Complete(ctx context.Context, prompt Prompt, params Params) (*Completion, error)
}

// Prompt is the message pair sent to the completion service
type Prompt struct {
	System string
	User   string
}

// Params controls sampling and request shape for one completion
type Params struct {
	Operation   string
	Temperature float64
	// TopP is omitted from the request when nil
	TopP *float64
	// MaxTokens is omitted from the request when zero
	MaxTokens int64
	// JSONObject requests strict JSON-object output
	JSONObject bool
	// DisableThinking asks reasoning-capable models to answer directly
	DisableThinking bool
	// Timeout bounds the whole call; zero uses DefaultTimeout
	Timeout time.Duration
}

// Usage is the token accounting reported by the completion service
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Completion is the first choice of a completion response
type Completion struct {
	Text  string
	Model string
	Usage Usage
	// Raw is the full upstream response payload
	Raw json.RawMessage
}

// Float is a helper for optional sampling parameters
func Float(v float64) *float64 {
	return &v
}
