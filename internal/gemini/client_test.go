package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.BaseURL = server.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	return NewClient(cfg), server
}

func TestGenerateSendsContentsAndReturnsText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}`))
	}, Config{Model: "gemini-test", MaxOutputTokens: 512, Temperature: 0.4})

	result, err := client.Generate(context.Background(), "plan a trip")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Text != "Hello" {
		t.Fatalf("expected text Hello, got %q", result.Text)
	}
	if result.Attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", result.Attempts)
	}
	if len(result.Raw) == 0 {
		t.Fatalf("expected raw body to be kept")
	}
	if gotPath != "/v1beta/models/gemini-test:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}

	contents, ok := gotBody["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("expected one content entry, got %v", gotBody["contents"])
	}
	parts := contents[0].(map[string]any)["parts"].([]any)
	if parts[0].(map[string]any)["text"] != "plan a trip" {
		t.Fatalf("expected prompt in parts, got %v", parts)
	}
	cfg, ok := gotBody["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig in body")
	}
	if cfg["maxOutputTokens"] != float64(512) || cfg["temperature"] != 0.4 {
		t.Fatalf("unexpected generation config %v", cfg)
	}
}

func TestGenerateNotConfiguredMakesNoCall(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no upstream calls, got %d", calls)
	}

	var nilClient *Client
	if _, err := nilClient.Generate(context.Background(), "prompt"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured from nil client, got %v", err)
	}
}

func TestGenerateNoCandidatesIsEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}, Config{})

	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateUpstreamErrorKeepsBody(t *testing.T) {
	const body = `{"error":{"code":400,"message":"API key not valid"}}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	}, Config{MaxRetries: 2})

	_, err := client.Generate(context.Background(), "prompt")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", upstream.Status)
	}
	if upstream.Details != body {
		t.Fatalf("expected verbatim details, got %q", upstream.Details)
	}
}

func TestGenerateDoesNotRetryByDefault(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Config{})

	_, err := client.Generate(context.Background(), "prompt")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 UpstreamError, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestGenerateRetriesTemporaryFailures(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"second try"}]}}]}`))
	}, Config{MaxRetries: 2})

	result, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Text != "second try" || result.Attempts != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestGenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: url})
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Config{Timeout: 20 * time.Millisecond})
	defer close(release)

	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed on timeout, got %v", err)
	}
}

func TestGenerateInvalidJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}, Config{})

	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateReadsLegacyShapeFromRawBody(t *testing.T) {
	const body = `{"candidates":[{"output":"legacy text"}]}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}, Config{})

	result, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Text != "legacy text" || result.Shape != "candidates.output" {
		t.Fatalf("unexpected result %+v", result)
	}
	if string(result.Raw) != body {
		t.Fatalf("expected verbatim raw body, got %s", result.Raw)
	}
}

func TestGenerateUpstreamStatusComesFromResponse(t *testing.T) {
	const body = `{"error":{"code":400,"message":"overloaded","status":"UNAVAILABLE"}}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(body))
	}, Config{})

	_, err := client.Generate(context.Background(), "prompt")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusServiceUnavailable || upstream.Details != body {
		t.Fatalf("unexpected upstream error %+v", upstream)
	}
	if !upstream.Temporary() {
		t.Fatalf("expected 503 to be temporary")
	}
}

func TestRetryDelayDoublesAndCaps(t *testing.T) {
	cases := []struct {
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{time.Second, 1, time.Second},
		{time.Second, 2, 2 * time.Second},
		{time.Second, 4, 8 * time.Second},
		{time.Second, 64, maxRetryBackoff},
		{time.Second, 1 << 20, maxRetryBackoff},
		{time.Duration(1<<62), 3, maxRetryBackoff},
	}
	for _, tc := range cases {
		if got := retryDelay(tc.base, tc.attempt); got != tc.want {
			t.Fatalf("retryDelay(%v, %d) = %v, want %v", tc.base, tc.attempt, got, tc.want)
		}
	}
}
