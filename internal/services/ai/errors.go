package ai

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"
)

// ErrNoChoicesInResponse is returned when the API response has no choices
var ErrNoChoicesInResponse = errors.New("no choices in response")

// UpstreamError is a non-success HTTP response from the completion service
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion API error %d: %s", e.StatusCode, e.Body)
}

// IsUpstreamError reports whether err carries an upstream HTTP failure
func IsUpstreamError(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}

// ExtractUpstreamError converts an SDK API error into an UpstreamError carrying
// the response body as the service sent it. Other errors return nil.
func ExtractUpstreamError(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return nil
	}

	upstream := &UpstreamError{StatusCode: apiErr.StatusCode}
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if body, readErr := io.ReadAll(apiErr.Response.Body); readErr == nil {
			upstream.Body = strings.TrimSpace(string(body))
		}
	}
	if upstream.Body == "" {
		upstream.Body = apiErr.RawJSON()
	}
	if upstream.Body == "" {
		upstream.Body = apiErr.Message
	}
	return upstream
}
