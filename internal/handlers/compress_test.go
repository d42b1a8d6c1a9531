package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/services/ai"
)

func TestCompressHandler_MergeScenario(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{}
	store := newFakeStore()
	summary := "2024-01-01: Ran a 5k. First recorded run; establishes running as a recurring habit."
	llm := &fakeCompletions{text: summary}
	h := NewCompressHandler(testConfig(), sessions, store, llm, nil)

	resp, err := h.Handle(context.Background(), proxyEvent(t, http.MethodPost, map[string]any{
		"access_token":  "t1",
		"refresh_token": "t2",
		"boards":        []map[string]string{{"date": "2024-01-01", "text": "ran 5k"}},
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200 (%s)", resp.StatusCode, resp.Body)
	}
	assertCORS(t, resp)

	if sessions.Calls() != 1 {
		t.Errorf("session establish calls = %d, want 1", sessions.Calls())
	}
	if len(store.upserts) != 1 || store.upserts[0] == "" {
		t.Fatalf("upserts = %v, want one non-empty write", store.upserts)
	}
	if store.upsertTo[0].UserID != testUserID || store.upsertTo[0].AccessToken != "t1" {
		t.Errorf("upsert identity = %+v", store.upsertTo[0])
	}

	var body CompressResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "Compression successful" {
		t.Errorf("message = %q", body.Message)
	}
	if body.NewSummaryLength != utf8.RuneCountInString(summary) {
		t.Errorf("new_summary_length = %d, want %d", body.NewSummaryLength, utf8.RuneCountInString(summary))
	}
	if !strings.HasPrefix(summary, strings.TrimSuffix(body.Preview, "...")) {
		t.Errorf("preview %q is not a prefix of the summary", body.Preview)
	}

	// First compression sees the empty-archive marker and the indented boards
	prompt := llm.prompts[0]
	if !strings.Contains(prompt.User, ai.EmptyHistoryMarker) {
		t.Error("expected empty history marker in merge prompt")
	}
	if !strings.Contains(prompt.User, "\n    \"date\": \"2024-01-01\"") {
		t.Errorf("expected two-space indented boards in prompt, got %q", prompt.User)
	}
	params := llm.params[0]
	if params.Temperature != 0.5 || params.MaxTokens != 4000 || params.Operation != ai.OperationMerge {
		t.Errorf("merge params = %+v", params)
	}
}

func TestCompressHandler_UsesStoredHistory(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.rows[testUserID] = "2023: Started journaling."
	llm := &fakeCompletions{text: "2023: Started journaling. 2024: Ran a 5k."}
	h := NewCompressHandler(testConfig(), &fakeSessions{}, store, llm, nil)

	resp, err := h.Handle(context.Background(), json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[{"text":"ran 5k"}]}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d (%s)", resp.StatusCode, resp.Body)
	}
	if !strings.Contains(llm.prompts[0].User, "2023: Started journaling.") {
		t.Error("expected stored history verbatim in merge prompt")
	}
	if got := store.rows[testUserID]; got != "2023: Started journaling. 2024: Ran a 5k." {
		t.Errorf("stored history = %q, want replaced summary", got)
	}
}

func TestCompressHandler_RejectsBeforeNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   json.RawMessage
		wantMsg string
	}{
		{
			name:    "missing access token",
			event:   proxyEvent(t, http.MethodPost, map[string]any{"refresh_token": "t2", "boards": []int{1}}),
			wantMsg: "Missing access_token, refresh_token, or boards",
		},
		{
			name:    "missing refresh token",
			event:   proxyEvent(t, http.MethodPost, map[string]any{"access_token": "t1", "boards": []int{1}}),
			wantMsg: "Missing access_token, refresh_token, or boards",
		},
		{
			name:    "missing boards",
			event:   proxyEvent(t, http.MethodPost, map[string]any{"access_token": "t1", "refresh_token": "t2"}),
			wantMsg: "Missing access_token, refresh_token, or boards",
		},
		{
			name:    "empty boards",
			event:   json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[]}`),
			wantMsg: "Missing access_token, refresh_token, or boards",
		},
		{
			name:    "body is not json",
			event:   json.RawMessage(`{"httpMethod":"POST","body":"access_token=t1"}`),
			wantMsg: "Invalid request body",
		},
		{
			name:    "body is an array",
			event:   json.RawMessage(`{"httpMethod":"POST","body":"[1,2]"}`),
			wantMsg: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sessions := &fakeSessions{}
			store := newFakeStore()
			llm := &fakeCompletions{text: "unused"}
			h := NewCompressHandler(testConfig(), sessions, store, llm, nil)

			resp, err := h.Handle(context.Background(), tt.event)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("StatusCode = %d, want 400", resp.StatusCode)
			}
			if got := decodeBody(t, resp)["error"]; got != tt.wantMsg {
				t.Errorf("error = %q, want %q", got, tt.wantMsg)
			}
			assertCORS(t, resp)
			if sessions.Calls() != 0 || llm.Calls() != 0 || len(store.upserts) != 0 {
				t.Error("expected no network calls for an invalid request")
			}
		})
	}
}

func TestCompressHandler_Unauthorized(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	llm := &fakeCompletions{text: "unused"}
	h := NewCompressHandler(testConfig(), &fakeSessions{}, store, llm, nil)

	resp, err := h.Handle(context.Background(), json.RawMessage(`{"access_token":"expired","refresh_token":"revoked","boards":[{}]}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["error"]; got != "Unauthorized" {
		t.Errorf("error = %q, want Unauthorized", got)
	}
	if llm.Calls() != 0 || len(store.upserts) != 0 {
		t.Error("expected no completion or write after a failed session")
	}
}

func TestCompressHandler_UpstreamFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.rows[testUserID] = "keep me"
	llm := &fakeCompletions{err: &ai.UpstreamError{StatusCode: 402, Body: `{"error":{"message":"Insufficient Balance"}}`}}
	h := NewCompressHandler(testConfig(), &fakeSessions{}, store, llm, nil)

	resp, err := h.Handle(context.Background(), json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[{}]}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	msg, _ := decodeBody(t, resp)["error"].(string)
	if !strings.Contains(msg, "402") || !strings.Contains(msg, "Insufficient Balance") {
		t.Errorf("error = %q, want upstream status and body", msg)
	}
	if len(store.upserts) != 0 || store.rows[testUserID] != "keep me" {
		t.Error("expected stored history untouched after upstream failure")
	}
}

func TestCompressHandler_InternalFailures(t *testing.T) {
	t.Parallel()

	t.Run("store read", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		store.getErr = errBoom
		llm := &fakeCompletions{text: "unused"}
		h := NewCompressHandler(testConfig(), &fakeSessions{}, store, llm, nil)

		resp, _ := h.Handle(context.Background(), json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[{}]}`))
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
		}
		if got := decodeBody(t, resp)["error"]; got != "boom" {
			t.Errorf("error = %q, want boom", got)
		}
		if llm.Calls() != 0 {
			t.Error("expected no completion after a failed read")
		}
	})

	t.Run("empty summary", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		h := NewCompressHandler(testConfig(), &fakeSessions{}, store, &fakeCompletions{text: "  \n"}, nil)

		resp, _ := h.Handle(context.Background(), json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[{}]}`))
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
		}
		if len(store.upserts) != 0 {
			t.Error("expected an empty summary never to be written")
		}
	})
}

func TestCompressHandler_Misconfigured(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SupabaseKey = ""
	cfg.CompletionAPIKey = ""
	h := NewCompressHandler(cfg, nil, nil, nil, nil)

	resp, err := h.Handle(context.Background(), json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[{}]}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["error"]; got != "Missing environment variables: SUPABASE_KEY, COMPLETION_API_KEY" {
		t.Errorf("error = %q", got)
	}

	// Preflights are still answered
	resp, _ = h.Handle(context.Background(), json.RawMessage(`{"httpMethod":"OPTIONS"}`))
	if resp.StatusCode != http.StatusOK || resp.Body != "" {
		t.Errorf("preflight = %d %q, want 200 with empty body", resp.StatusCode, resp.Body)
	}
}

func TestCompressHandler_RecoversPanic(t *testing.T) {
	t.Parallel()

	// A nil store panics after the session is established
	h := NewCompressHandler(testConfig(), &fakeSessions{}, nil, &fakeCompletions{text: "x"}, nil)

	resp, err := h.Handle(context.Background(), json.RawMessage(`{"access_token":"t1","refresh_token":"t2","boards":[{}]}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	assertCORS(t, resp)
	if _, ok := decodeBody(t, resp)["error"]; !ok {
		t.Error("expected error envelope")
	}
}

func TestPreviewOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short", input: "ran 5k", want: "ran 5k..."},
		{name: "exactly limit", input: strings.Repeat("a", PreviewLength), want: strings.Repeat("a", PreviewLength) + "..."},
		{name: "truncated", input: strings.Repeat("b", PreviewLength+20), want: strings.Repeat("b", PreviewLength) + "..."},
		{name: "multibyte", input: strings.Repeat("달", PreviewLength+1), want: strings.Repeat("달", PreviewLength) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := previewOf(tt.input); got != tt.want {
				t.Errorf("previewOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompressHandler_MissingErrorIsConfiguration(t *testing.T) {
	t.Parallel()

	herr := classify(&config.MissingError{Vars: []string{"SUPABASE_URL"}}, "")
	if herr.Kind != KindConfiguration || herr.Status() != http.StatusInternalServerError {
		t.Errorf("classify() = %+v", herr)
	}
}
