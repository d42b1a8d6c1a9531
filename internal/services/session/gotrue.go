package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/board-insights/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DefaultAuthTimeout bounds each call to the auth service
const DefaultAuthTimeout = 10 * time.Second

// GoTrueClient talks to the hosted auth service (GoTrue) of a Supabase project
type GoTrueClient struct {
	client *resty.Client
}

// AuthError is a non-success response from the auth service
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Message)
}

// TokenPair is a refreshed session
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
}

// gotrueError covers both error shapes the auth service emits
type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// NewGoTrueClient creates a client for {projectURL}/auth/v1 authenticated with the project key
func NewGoTrueClient(projectURL, apiKey string, timeout time.Duration) *GoTrueClient {
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(projectURL, "/")+"/auth/v1").
		SetHeader("apikey", apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &GoTrueClient{client: c}
}

// GetUser resolves the user that owns accessToken
func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("auth user request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, authError(resp)
	}

	var u models.User
	if err := json.Unmarshal(resp.Body(), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == uuid.Nil {
		return nil, fmt.Errorf("auth service returned a user without id")
	}
	return &u, nil
}

// Refresh exchanges a refresh token for a new session
func (c *GoTrueClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("auth refresh request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, authError(resp)
	}

	var pair TokenPair
	if err := json.Unmarshal(resp.Body(), &pair); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("auth refresh returned no access token")
	}
	return &pair, nil
}

// Health checks that the auth service is reachable
func (c *GoTrueClient) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("auth health request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return authError(resp)
	}
	return nil
}

func authError(resp *resty.Response) error {
	var body gotrueError
	msg := ""
	if json.Unmarshal(resp.Body(), &body) == nil {
		msg = body.text()
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	return &AuthError{StatusCode: resp.StatusCode(), Message: msg}
}
