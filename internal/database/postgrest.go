package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/board-insights/internal/models"
	"github.com/go-resty/resty/v2"
)

// DefaultStoreTimeout bounds each call to the REST data API
const DefaultStoreTimeout = 10 * time.Second

// PostgRESTStore stores compressed history through the project's REST data
// API. Requests carry the caller's access token so row-level security applies.
type PostgRESTStore struct {
	client *resty.Client
	table  string
	apiKey string
}

// StoreError is a non-success response from the REST data API
type StoreError struct {
	StatusCode int
	Message    string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("data API returned %d: %s", e.StatusCode, e.Message)
}

type historyRow struct {
	UserID         string  `json:"user_id,omitempty"`
	CompressedData *string `json:"compressed_data"`
}

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewPostgRESTStore creates a store for {projectURL}/rest/v1/{table}
func NewPostgRESTStore(projectURL, apiKey, table string, timeout time.Duration) (*PostgRESTStore, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(projectURL, "/")+"/rest/v1").
		SetHeader("apikey", apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &PostgRESTStore{client: c, table: table, apiKey: apiKey}, nil
}

func (s *PostgRESTStore) request(ctx context.Context, identity models.Identity) *resty.Request {
	token := identity.AccessToken
	if token == "" {
		token = s.apiKey
	}
	return s.client.R().SetContext(ctx).SetAuthToken(token)
}

// Get retrieves the compressed history for an identity
func (s *PostgRESTStore) Get(ctx context.Context, identity models.Identity) (string, error) {
	resp, err := s.request(ctx, identity).
		SetQueryParam("select", "compressed_data").
		SetQueryParam("user_id", "eq."+identity.UserID.String()).
		Get("/" + s.table)
	if err != nil {
		return "", fmt.Errorf("failed to get compressed history: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("failed to get compressed history: %w", storeError(resp))
	}

	var rows []historyRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return "", fmt.Errorf("decode compressed history: %w", err)
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	if rows[0].CompressedData == nil {
		return "", nil
	}
	return *rows[0].CompressedData, nil
}

// Upsert creates or replaces the compressed history for an identity
func (s *PostgRESTStore) Upsert(ctx context.Context, identity models.Identity, text string) error {
	resp, err := s.request(ctx, identity).
		SetQueryParam("on_conflict", "user_id").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(historyRow{UserID: identity.UserID.String(), CompressedData: &text}).
		Post("/" + s.table)
	if err != nil {
		return fmt.Errorf("failed to upsert compressed history: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("failed to upsert compressed history: %w", storeError(resp))
	}
}

// Ping verifies the data API is reachable with the project key
func (s *PostgRESTStore) Ping(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).SetAuthToken(s.apiKey).Get("/")
	if err != nil {
		return fmt.Errorf("data API unreachable: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return storeError(resp)
	}
	return nil
}

func storeError(resp *resty.Response) error {
	var body postgrestError
	msg := ""
	if json.Unmarshal(resp.Body(), &body) == nil && body.Message != "" {
		msg = body.Message
		if body.Code != "" {
			msg = body.Code + ": " + msg
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	return &StoreError{StatusCode: resp.StatusCode(), Message: msg}
}
