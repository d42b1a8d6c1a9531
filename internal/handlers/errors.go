package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/benvon/board-insights/internal/services/ai"
	"github.com/benvon/board-insights/internal/services/session"
)

// ErrorKind classifies a handler failure and fixes its status code
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindConfiguration
	KindValidation
	KindUnauthorized
	KindUpstream
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream"
	case KindParse:
		return "parse"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified handler failure. Message is what the caller sees.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Response renders the error as an {"error": message} envelope
func (e *Error) Response() gateway.Response {
	return gateway.Error(e.Status(), e.Message)
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// classify converts any error into a handler Error. Unclassified errors become
// internal errors whose message is prefix followed by the error text.
func classify(err error, prefix string) *Error {
	var herr *Error
	if errors.As(err, &herr) {
		return herr
	}

	var missing *config.MissingError
	switch {
	case errors.As(err, &missing):
		return newError(KindConfiguration, missing.Error(), err)
	case errors.Is(err, session.ErrUnauthorized):
		return newError(KindUnauthorized, "Unauthorized", err)
	case ai.IsUpstreamError(err):
		return newError(KindUpstream, prefix+err.Error(), err)
	case errors.Is(err, gateway.ErrInvalidBody):
		return newError(KindValidation, "Invalid request body", err)
	default:
		return newError(KindInternal, prefix+err.Error(), err)
	}
}
