package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/benvon/board-insights/internal/models"
	"github.com/benvon/board-insights/internal/validation"
)

// Task names accepted by the analysis handler
const (
	TaskAnalysis    = "analysis"
	TaskQueryParser = "query_parser"
)

// Request is one decoded invocation payload. The set of implementations is
// closed: MergeRequest, AnalysisRequest and QueryParseRequest.
type Request interface {
	// Task names the work the request asks for
	Task() string
	request()
}

// MergeRequest asks for new boards to be folded into the compressed history
type MergeRequest struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Boards       []models.Board `json:"boards"`
}

// AnalysisRequest asks for a life-coach summary of a batch of boards
type AnalysisRequest struct {
	Boards  []models.Board `json:"boards"`
	History string         `json:"history"`
}

// QueryParseRequest asks for a natural-language query to be turned into filters
type QueryParseRequest struct {
	Query       string `json:"query"`
	CurrentDate string `json:"current_date"`
}

func (MergeRequest) Task() string      { return "compress" }
func (AnalysisRequest) Task() string   { return TaskAnalysis }
func (QueryParseRequest) Task() string { return TaskQueryParser }

func (MergeRequest) request()      {}
func (AnalysisRequest) request()   {}
func (QueryParseRequest) request() {}

const (
	msgInvalidBody       = "Invalid request body"
	msgMissingMergeInput = "Missing access_token, refresh_token, or boards"
	msgNoBoards          = "No boards data provided"
)

// DecodeMergeRequest decodes a compression payload. Every field is required.
func DecodeMergeRequest(payload json.RawMessage) (*MergeRequest, error) {
	var req MergeRequest
	if err := decodeObject(payload, &req); err != nil {
		return nil, err
	}
	if req.AccessToken == "" || req.RefreshToken == "" || len(req.Boards) == 0 {
		return nil, newError(KindValidation, msgMissingMergeInput, nil)
	}
	return &req, nil
}

// DecodeAnalysisPayload resolves the task named in payload and decodes the
// matching request. An absent or unknown task means analysis.
func DecodeAnalysisPayload(payload json.RawMessage, now time.Time) (Request, error) {
	var envelope struct {
		Task string `json:"task"`
	}
	if err := decodeObject(payload, &envelope); err != nil {
		return nil, err
	}

	if envelope.Task == TaskQueryParser {
		var req QueryParseRequest
		if err := decodeObject(payload, &req); err != nil {
			return nil, err
		}
		req.Query = validation.SanitizeText(req.Query)
		if req.CurrentDate == "" {
			req.CurrentDate = now.UTC().Format(validation.ISODateLayout)
		}
		return &req, nil
	}

	var req AnalysisRequest
	if err := decodeObject(payload, &req); err != nil {
		return nil, err
	}
	if len(req.Boards) == 0 {
		return nil, newError(KindValidation, msgNoBoards, nil)
	}
	return &req, nil
}

// decodeObject unmarshals a JSON object into v. Anything else is an invalid body.
func decodeObject(payload json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return newError(KindValidation, msgInvalidBody, nil)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return newError(KindValidation, msgInvalidBody, err)
	}
	return nil
}
