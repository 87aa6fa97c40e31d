package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestClientFetch verifies outcome classification against live test servers.
func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("successful fetch returns body and final URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>hello research</body></html>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClient(WithTimeout(5 * time.Second))
		result, err := client.Fetch(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !result.OK() {
			t.Fatalf("expected success, got %s", result.Outcome)
		}
		if result.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", result.StatusCode)
		}
		if !strings.Contains(result.Body, "hello research") {
			t.Errorf("body missing expected content: %q", result.Body)
		}
		if !strings.Contains(result.ContentType, "text/html") {
			t.Errorf("unexpected content type %q", result.ContentType)
		}
		if result.FinalURL != server.URL+"/" {
			t.Errorf("expected final URL %q, got %q", server.URL+"/", result.FinalURL)
		}
		if result.Reason() != "" {
			t.Errorf("success must have empty reason, got %q", result.Reason())
		}
	})

	t.Run("non-2xx status classifies as http error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient()
		result, err := client.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Outcome != OutcomeHTTPError {
			t.Fatalf("expected http error outcome, got %s", result.Outcome)
		}
		if result.StatusCode != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", result.StatusCode)
		}
		if result.Reason() != "http error: 403" {
			t.Errorf("unexpected reason %q", result.Reason())
		}
	})

	t.Run("redirects are followed to the final URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/end", http.StatusFound)
		})
		mux.HandleFunc("/end", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("arrived"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClient()
		result, err := client.Fetch(context.Background(), server.URL+"/start")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !result.OK() {
			t.Fatalf("expected success, got %s", result.Outcome)
		}
		if result.FinalURL != server.URL+"/end" {
			t.Errorf("expected final URL %q, got %q", server.URL+"/end", result.FinalURL)
		}
	})

	t.Run("slow server classifies as timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		client := NewClient(WithTimeout(20 * time.Millisecond))
		result, err := client.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Outcome != OutcomeTimeout {
			t.Errorf("expected timeout outcome, got %s", result.Outcome)
		}
		if result.Reason() != "timeout" {
			t.Errorf("unexpected reason %q", result.Reason())
		}
	})

	t.Run("refused connection classifies as network error", func(t *testing.T) {
		t.Parallel()

		// Grab a URL, then shut the server down so the port refuses.
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		client := NewClient(WithTimeout(2 * time.Second))
		result, err := client.Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Outcome != OutcomeNetworkError {
			t.Errorf("expected network error outcome, got %s", result.Outcome)
		}
		if !strings.HasPrefix(result.Reason(), "network error") {
			t.Errorf("unexpected reason %q", result.Reason())
		}
	})

	t.Run("untrusted certificate classifies as tls error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("secret"))
		}))
		defer server.Close()

		// The default client does not trust httptest's self-signed cert.
		client := NewClient(WithTimeout(2 * time.Second))
		result, err := client.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Outcome != OutcomeTLSError {
			t.Errorf("expected tls error outcome, got %s", result.Outcome)
		}
	})

	t.Run("body is capped at the configured size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		}))
		defer server.Close()

		client := NewClient(WithMaxBodySize(128))
		result, err := client.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(result.Body) != 128 {
			t.Errorf("expected body capped at 128 bytes, got %d", len(result.Body))
		}
	})

	t.Run("canceled context returns an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(time.Second)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient()
		if _, err := client.Fetch(ctx, server.URL); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("malformed URL returns an error", func(t *testing.T) {
		t.Parallel()

		client := NewClient()
		if _, err := client.Fetch(context.Background(), "http://bad url with spaces"); err == nil {
			t.Error("expected error for malformed URL")
		}
	})
}

// TestOutcomeString documents the outcome names used in error records.
func TestOutcomeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeHTTPError, "http error"},
		{OutcomeTimeout, "timeout"},
		{OutcomeNetworkError, "network error"},
		{OutcomeTLSError, "tls error"},
		{Outcome(99), "outcome(99)"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(tt.outcome), got, tt.want)
		}
	}
}
