package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/database"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/benvon/board-insights/internal/models"
	"github.com/benvon/board-insights/internal/services/ai"
	"github.com/benvon/board-insights/internal/services/session"
	"github.com/google/uuid"
)

var testUserID = uuid.MustParse("7b0d7c0e-3f1a-4f8e-9a55-0c2d1f9e6a11")

func testConfig() *config.Config {
	return &config.Config{
		SupabaseURL:        "https://project.supabase.co",
		SupabaseKey:        "anon-key",
		CompletionAPIKey:   "sk-test",
		AnalysisTimeout:    30 * time.Second,
		CompressionTimeout: 120 * time.Second,
	}
}

// fakeSessions accepts the token pair t1/t2
type fakeSessions struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeSessions) Establish(_ context.Context, creds session.Credentials) (*session.Session, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if creds.AccessToken != "t1" || creds.RefreshToken != "t2" {
		return nil, fmt.Errorf("%w: invalid token", session.ErrUnauthorized)
	}
	return &session.Session{
		User:         models.User{ID: testUserID, Email: "runner@example.com", Role: "authenticated"},
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}, nil
}

func (f *fakeSessions) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStore is an in-memory summary store
type fakeStore struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]string
	getErr   error
	upserts  []string
	upsertTo []models.Identity
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]string)}
}

func (s *fakeStore) Get(_ context.Context, identity models.Identity) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	text, ok := s.rows[identity.UserID]
	if !ok {
		return "", database.ErrNotFound
	}
	return text, nil
}

func (s *fakeStore) Upsert(_ context.Context, identity models.Identity, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[identity.UserID] = text
	s.upserts = append(s.upserts, text)
	s.upsertTo = append(s.upsertTo, identity)
	return nil
}

// fakeCompletions returns a canned completion and records prompts
type fakeCompletions struct {
	mu      sync.Mutex
	text    string
	raw     json.RawMessage
	err     error
	prompts []ai.Prompt
	params  []ai.Params
}

func (f *fakeCompletions) Complete(_ context.Context, prompt ai.Prompt, params ai.Params) (*ai.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	raw := f.raw
	if raw == nil {
		raw = json.RawMessage(`{"id":"cmpl-1","object":"chat.completion","model":"deepseek-chat","choices":[{"index":0,"message":{"role":"assistant","content":` + mustQuote(f.text) + `}}]}`)
	}
	return &ai.Completion{Text: f.text, Model: "deepseek-chat", Raw: raw}, nil
}

func (f *fakeCompletions) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// proxyEvent wraps body as a REST API gateway event
func proxyEvent(t *testing.T, method string, body any) json.RawMessage {
	t.Helper()

	text := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		text = string(b)
	}
	evt, err := json.Marshal(map[string]any{
		"httpMethod":     method,
		"requestContext": map[string]any{"requestId": "req-1"},
		"body":           text,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return evt
}

// decodeBody unmarshals a response body into a generic map
func decodeBody(t *testing.T, resp gateway.Response) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("response body is not JSON: %v (%q)", err, resp.Body)
	}
	return body
}

func assertCORS(t *testing.T, resp gateway.Response) {
	t.Helper()

	for name, want := range gateway.Headers() {
		if got := resp.Headers[name]; got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}
}

var errBoom = errors.New("boom")
