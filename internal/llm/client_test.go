package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, reply string, check func(ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if check != nil {
			check(req)
		}

		resp := ChatCompletionResponse{Model: req.Model}
		resp.Choices = []struct {
			Index        int         `json:"index"`
			Message      ChatMessage `json:"message"`
			FinishReason string      `json:"finish_reason"`
		}{
			{Message: ChatMessage{Role: "assistant", Content: reply}, FinishReason: "stop"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChat(t *testing.T) {
	server := chatServer(t, "a cat on a roof", func(req ChatCompletionRequest) {
		if req.Model != "test-model" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if req.Stream {
			t.Error("expected a non-streaming request")
		}
		if req.MaxTokens != 256 || req.Temperature != 0.7 {
			t.Errorf("unexpected sampling parameters: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
	})
	defer server.Close()

	client := NewClient(server.URL, "", "test-model", 256, 0.7)
	resp, err := client.Chat(context.Background(), []ChatMessage{
		{Role: "system", Content: "you are terse"},
		{Role: "user", Content: "describe a cat"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(resp.Choices))
	}
	if resp.Choices[0].Message.Content != "a cat on a roof" {
		t.Errorf("unexpected content: %s", resp.Choices[0].Message.Content)
	}
}

func TestChat_TrimsV1Suffix(t *testing.T) {
	server := chatServer(t, "ok", nil)
	defer server.Close()

	client := NewClient(server.URL+"/v1", "", "test-model", 64, 0)
	if _, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model", 64, 0)
	if _, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("expected error for API failure")
	}
}
