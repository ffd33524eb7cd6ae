package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMockProviderResponse(t *testing.T) {
	p := &MockProvider{Response: "hello"}
	resp, err := p.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("expected hello, got %q", resp.Content)
	}
}

func TestScriptedMockProviderSequence(t *testing.T) {
	p := NewScriptedMockProvider("first", "second")

	resp, err := p.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "first" {
		t.Errorf("expected first, got %q", resp.Content)
	}

	resp, _ = p.Chat(context.Background(), ChatRequest{})
	if resp.Content != "second" {
		t.Errorf("expected second, got %q", resp.Content)
	}

	if _, err := p.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error when responses are exhausted")
	}
	if p.CallCount != 3 {
		t.Errorf("expected 3 calls, got %d", p.CallCount)
	}
}

func TestFailingMockProvider(t *testing.T) {
	want := errors.New("agent offline")
	p := &FailingMockProvider{Err: want}
	if _, err := p.Chat(context.Background(), ChatRequest{}); !errors.Is(err, want) {
		t.Errorf("expected configured error, got %v", err)
	}
}

func TestOllamaChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":{"role":"assistant","content":"plan ready"},"done":true,"eval_count":5,"prompt_eval_count":7}`))
	}))
	defer srv.Close()

	p := NewOllama(srv.URL)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:    "test-model",
		Messages: []Message{{Role: RoleUser, Content: "hola"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "plan ready" {
		t.Errorf("expected content, got %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("expected 12 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllama(srv.URL)
	if _, err := p.Chat(context.Background(), ChatRequest{Model: "missing"}); err == nil {
		t.Error("expected error for non-200 response")
	}
}
