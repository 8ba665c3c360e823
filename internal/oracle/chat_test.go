package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewChatClient_Validation(t *testing.T) {
	if _, err := NewChatClient(ChatConfig{Model: "m"}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := NewChatClient(ChatConfig{APIKey: "k"}); err == nil {
		t.Error("expected error without model")
	}

	c, err := NewChatClient(ChatConfig{APIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}
	if c.cfg.Endpoint != DefaultChatEndpoint {
		t.Errorf("Endpoint = %q, want default", c.cfg.Endpoint)
	}
	if c.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestChatClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}

		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "gpt-test" {
			t.Errorf("model = %q", body.Model)
		}
		if body.Temperature != 0.3 {
			t.Errorf("temperature = %v, want 0.3", body.Temperature)
		}
		if body.MaxTokens != 2000 {
			t.Errorf("max_tokens = %d, want 2000", body.MaxTokens)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != RoleSystem || body.Messages[1].Role != RoleUser {
			t.Errorf("unexpected messages %+v", body.Messages)
		}

		w.Write([]byte(`{
			"model": "gpt-test",
			"choices": [{"message": {"role": "assistant", "content": "first"}}, {"message": {"role": "assistant", "content": "second"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5}
		}`))
	}))
	defer srv.Close()

	client, err := NewChatClient(ChatConfig{
		Endpoint:    srv.URL,
		APIKey:      "sk-test",
		Model:       "gpt-test",
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{System("be terse"), User("hello")},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "first" {
		t.Errorf("Content = %q, want first choice", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 5 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}

	in, out := client.Tracker().Total()
	if in != 12 || out != 5 || client.Tracker().Calls() != 1 {
		t.Errorf("tracker = %d/%d calls=%d", in, out, client.Tracker().Calls())
	}
}

func TestChatClient_RequestOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Temperature != 0.9 || body.MaxTokens != 50 {
			t.Errorf("overrides not applied: %+v", body)
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	client, _ := NewChatClient(ChatConfig{Endpoint: srv.URL, APIKey: "k", Model: "m", Temperature: 0.3, MaxTokens: 2000})
	if _, err := client.Complete(context.Background(), Request{Messages: []Message{User("x")}, Temperature: 0.9, MaxTokens: 50}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestChatClient_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	client, _ := NewChatClient(ChatConfig{Endpoint: srv.URL, APIKey: "k", Model: "m"})
	_, err := client.Complete(context.Background(), Request{Messages: []Message{User("x")}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if client.Tracker().Calls() != 0 {
		t.Error("failed calls should not be tracked")
	}
}

func TestChatClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client, _ := NewChatClient(ChatConfig{Endpoint: srv.URL, APIKey: "k", Model: "m"})
	_, err := client.Complete(context.Background(), Request{Messages: []Message{User("x")}})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAPIError_TruncatesBody(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	err := &APIError{StatusCode: 500, Body: string(long)}
	if len(err.Error()) > 600 {
		t.Errorf("error message not truncated: %d bytes", len(err.Error()))
	}
}
