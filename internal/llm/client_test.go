package llm

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientEmbed(t *testing.T) {
	t.Parallel()

	t.Run("returns the embedding vector", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotAuth string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5]}],"model":"text-embedding-3-small"}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		got, err := client.Embed(context.Background(), "gopher habitats")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) != 2 || got[0] != 0.25 || got[1] != -0.5 {
			t.Errorf("expected [0.25 -0.5], got %v", got)
		}
		if gotPath != "/v1/embeddings" {
			t.Errorf("expected path /v1/embeddings, got %s", gotPath)
		}
		if gotAuth != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %s", gotAuth)
		}
		if gotBody["model"] != "text-embedding-3-small" {
			t.Errorf("expected default embedding model, got %v", gotBody["model"])
		}
	})

	t.Run("server error surfaces as error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		if _, err := client.Embed(context.Background(), "anything"); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("empty vector list is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[],"model":"text-embedding-3-small"}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		if _, err := client.Embed(context.Background(), "anything"); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestClientSummarize(t *testing.T) {
	t.Parallel()

	t.Run("returns the trimmed reply", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"\n- point one\n- point two\n"},"finish_reason":"stop"}]}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		got, err := client.Summarize(context.Background(), "documents here", "summarize the documents")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got != "- point one\n- point two" {
			t.Errorf("expected trimmed reply, got %q", got)
		}
		if gotPath != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got %s", gotPath)
		}
		if gotBody["model"] != "gpt-3.5-turbo" {
			t.Errorf("expected default chat model, got %v", gotBody["model"])
		}
		if temp, ok := gotBody["temperature"].(float64); !ok || math.Abs(temp-0.3) > 1e-6 {
			t.Errorf("expected temperature 0.3, got %v", gotBody["temperature"])
		}
		if tokens, ok := gotBody["max_tokens"].(float64); !ok || tokens != 500 {
			t.Errorf("expected max_tokens 500, got %v", gotBody["max_tokens"])
		}

		messages, ok := gotBody["messages"].([]any)
		if !ok || len(messages) != 2 {
			t.Fatalf("expected 2 messages, got %v", gotBody["messages"])
		}
		system := messages[0].(map[string]any)
		user := messages[1].(map[string]any)
		if system["role"] != "system" || system["content"] != "summarize the documents" {
			t.Errorf("unexpected system message: %v", system)
		}
		if user["role"] != "user" || user["content"] != "documents here" {
			t.Errorf("unexpected user message: %v", user)
		}
	})

	t.Run("options override the defaults", func(t *testing.T) {
		t.Parallel()

		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient("test-key",
			WithBaseURL(server.URL+"/v1"),
			WithChatModel("gpt-4o"),
			WithTemperature(0.7),
			WithMaxTokens(200),
		)
		if _, err := client.Summarize(context.Background(), "content", "guidance"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotBody["model"] != "gpt-4o" {
			t.Errorf("expected model gpt-4o, got %v", gotBody["model"])
		}
		if temp, ok := gotBody["temperature"].(float64); !ok || math.Abs(temp-0.7) > 1e-6 {
			t.Errorf("expected temperature 0.7, got %v", gotBody["temperature"])
		}
		if tokens, ok := gotBody["max_tokens"].(float64); !ok || tokens != 200 {
			t.Errorf("expected max_tokens 200, got %v", gotBody["max_tokens"])
		}
	})

	t.Run("empty choice list is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo","choices":[]}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		if _, err := client.Summarize(context.Background(), "content", "guidance"); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestClientPing(t *testing.T) {
	t.Parallel()

	t.Run("reachable endpoint", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/models" {
				t.Errorf("expected path /v1/models, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-3.5-turbo","object":"model","created":1,"owned_by":"openai"}]}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		if err := client.Ping(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL+"/v1"))
		if err := client.Ping(context.Background()); err == nil {
			t.Error("expected error, got nil")
		}
	})
}
