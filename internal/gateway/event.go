package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidBody is returned when the event or its body is not decodable JSON
var ErrInvalidBody = errors.New("invalid request body")

// Event is the part of an invocation event the handlers consume
type Event struct {
	Method    string
	RequestID string
	// Payload is the JSON request document: the decoded body string, the body
	// object, or the event itself for direct invocations.
	Payload json.RawMessage
}

// IsPreflight reports whether the event is a CORS preflight
func (e *Event) IsPreflight() bool {
	return strings.EqualFold(e.Method, http.MethodOptions)
}

// ParseEvent extracts the method, request ID and payload from a raw event.
// Both REST (httpMethod) and HTTP API (requestContext.http.method) shapes are
// understood, as are direct invocations that carry the payload at the top level.
func ParseEvent(raw []byte) (*Event, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil, ErrInvalidBody
	}

	root := gjson.ParseBytes(raw)
	evt := &Event{
		Method:    root.Get("httpMethod").String(),
		RequestID: root.Get("requestContext.requestId").String(),
	}
	if evt.Method == "" {
		evt.Method = root.Get("requestContext.http.method").String()
	}

	// Preflights are answered before the body is looked at
	if evt.IsPreflight() {
		return evt, nil
	}

	body := root.Get("body")
	switch {
	case body.Type == gjson.String:
		text := body.String()
		if root.Get("isBase64Encoded").Bool() {
			decoded, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, ErrInvalidBody
			}
			text = string(decoded)
		}
		if !gjson.Valid(text) {
			return nil, ErrInvalidBody
		}
		evt.Payload = json.RawMessage(text)
	case body.IsObject():
		evt.Payload = json.RawMessage(body.Raw)
	default:
		evt.Payload = json.RawMessage(raw)
	}

	return evt, nil
}
